// Package entity defines the domain entities of the checkout feature.
package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order. TotalAmount is always computed on the server.
type Order struct {
	ID              uint            `gorm:"primaryKey"`
	UserID          uint            `gorm:"not null;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ShippingAddress string          `gorm:"type:text;not null"`
	CreatedAt       time.Time
	Items           []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one line of an order.
//
// PriceAtTime is the unit price the buyer was shown, as submitted by the client.
// CatalogPrice is the catalog price the total was computed from; it is null
// when the product could not be resolved at checkout.
type OrderItem struct {
	ID           uint                `gorm:"primaryKey"`
	OrderID      uint                `gorm:"not null;index"`
	ProductID    uint                `gorm:"not null;index"`
	Quantity     int                 `gorm:"not null"`
	PriceAtTime  decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	CatalogPrice decimal.NullDecimal `gorm:"type:decimal(10,2)"`
}

// Subtotal returns the server-side line amount, or zero for an unresolved line.
func (i OrderItem) Subtotal() decimal.Decimal {
	if !i.CatalogPrice.Valid {
		return decimal.Zero
	}
	return i.CatalogPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartLine is one untrusted line of the client cart.
type CartLine struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
	CartID    string
}

// ShippingInfo is the delivery address submitted at checkout.
type ShippingInfo struct {
	Address string
	City    string
	ZipCode string
}

// String formats the address the way it is stored on the order.
func (s ShippingInfo) String() string {
	return fmt.Sprintf("%s, %s %s", s.Address, s.City, s.ZipCode)
}
