package dto

import (
	"storefront/internal/feature/checkout/domain/entity"

	"github.com/shopspring/decimal"
)

// CartLineReq is one line of the cart kept in browser storage.
// Other product fields sent by the client are ignored.
type CartLineReq struct {
	ID       uint            `json:"id" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,gt=0"`
	Price    decimal.Decimal `json:"price"`
	CartID   string          `json:"cartId"`
}

// ShippingReq is the shipping form of the checkout page.
// Required fields are checked after the empty cart check.
type ShippingReq struct {
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

// CheckoutReq is the body of POST /api/checkout.
// An empty cart passes binding so that it can be answered with its own message.
type CheckoutReq struct {
	Cart     []CartLineReq `json:"cart" binding:"dive"`
	Shipping ShippingReq   `json:"shipping"`
}

// Lines converts the request cart to domain cart lines.
func (r CheckoutReq) Lines() []entity.CartLine {
	lines := make([]entity.CartLine, 0, len(r.Cart))
	for _, l := range r.Cart {
		lines = append(lines, entity.CartLine{
			ProductID: l.ID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			CartID:    l.CartID,
		})
	}
	return lines
}

// ShippingInfo converts the shipping form to its domain value.
func (r CheckoutReq) ShippingInfo() entity.ShippingInfo {
	return entity.ShippingInfo{
		Address: r.Shipping.Address,
		City:    r.Shipping.City,
		ZipCode: r.Shipping.ZipCode,
	}
}
