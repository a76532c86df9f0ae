package usecase

import (
	"context"

	"storefront/internal/feature/checkout/domain/entity"

	"github.com/shopspring/decimal"
)

// OrderRepository runs order placement inside a single transaction.
type OrderRepository interface {
	// WithinTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back on any error, including a panic.
	WithinTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// OrderTx is the set of statements available inside an order transaction.
type OrderTx interface {
	// CatalogPrices returns the current price of each product id that exists.
	// Ids with no matching product are absent from the map.
	CatalogPrices(ctx context.Context, productIDs []uint) (map[uint]decimal.Decimal, error)

	// InsertOrder inserts the order row and sets its ID.
	InsertOrder(ctx context.Context, order *entity.Order) error

	// InsertItems inserts the order items. OrderID must already be set.
	InsertItems(ctx context.Context, items []entity.OrderItem) error
}
