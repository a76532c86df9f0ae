package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"storefront/internal/feature/checkout/domain/entity"

	"github.com/shopspring/decimal"
)

// UnresolvedPolicy decides what happens to a cart line whose product no longer exists.
type UnresolvedPolicy string

const (
	// UnresolvedSkip keeps the line as an order item but leaves it out of the total.
	UnresolvedSkip UnresolvedPolicy = "skip"
	// UnresolvedReject fails the whole order.
	UnresolvedReject UnresolvedPolicy = "reject"
)

// DefaultShippingCost is the flat shipping fee added to every order.
var DefaultShippingCost = decimal.RequireFromString("9.99")

// ParseUnresolvedPolicy maps a configuration value to a policy. Empty means skip.
func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch p := UnresolvedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return UnresolvedSkip, nil
	case UnresolvedSkip, UnresolvedReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown unresolved line policy %q", s)
	}
}

// Config holds the checkout tunables.
type Config struct {
	// ShippingCost is added to every order. Nil means DefaultShippingCost; zero is free shipping.
	ShippingCost *decimal.Decimal
	// Unresolved is the policy for lines whose product cannot be found.
	Unresolved UnresolvedPolicy
}

// OrderUsecase places orders.
type OrderUsecase struct {
	repo       OrderRepository
	shipping   decimal.Decimal
	unresolved UnresolvedPolicy
}

// NewOrderUsecase creates an OrderUsecase.
func NewOrderUsecase(repo OrderRepository, cfg Config) *OrderUsecase {
	u := &OrderUsecase{repo: repo, shipping: DefaultShippingCost, unresolved: cfg.Unresolved}
	if cfg.ShippingCost != nil {
		u.shipping = *cfg.ShippingCost
	}
	if u.unresolved == "" {
		u.unresolved = UnresolvedSkip
	}
	return u
}

func validateLines(lines []entity.CartLine) error {
	for i, l := range lines {
		switch {
		case l.ProductID == 0:
			return fmt.Errorf("%w: line %d has no product id", ErrInvalidCart, i)
		case l.Quantity <= 0:
			return fmt.Errorf("%w: line %d has quantity %d", ErrInvalidCart, i, l.Quantity)
		case l.Price.IsNegative():
			return fmt.Errorf("%w: line %d has a negative price", ErrInvalidCart, i)
		}
	}
	return nil
}

func validateShipping(s entity.ShippingInfo) error {
	if strings.TrimSpace(s.Address) == "" || strings.TrimSpace(s.City) == "" || strings.TrimSpace(s.ZipCode) == "" {
		return fmt.Errorf("%w: address, city and zip code are required", ErrInvalidShipping)
	}
	return nil
}

// PlaceOrder validates the cart, prices it against the catalog and persists the
// order with its items in one transaction.
//
// The total is shipping plus the catalog price of every resolved line. Each
// item keeps the client-submitted price as PriceAtTime next to the catalog price.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID uint, lines []entity.CartLine, shipping entity.ShippingInfo) (*entity.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if err := validateShipping(shipping); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			ids = append(ids, l.ProductID)
		}
	}

	var order *entity.Order
	err := u.repo.WithinTx(ctx, func(tx OrderTx) error {
		prices, err := tx.CatalogPrices(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load catalog prices: %w", err)
		}

		items := make([]entity.OrderItem, 0, len(lines))
		total := u.shipping
		for _, l := range lines {
			item := entity.OrderItem{
				ProductID:   l.ProductID,
				Quantity:    l.Quantity,
				PriceAtTime: l.Price,
			}
			if price, ok := prices[l.ProductID]; ok {
				item.CatalogPrice = decimal.NewNullDecimal(price)
			} else {
				if u.unresolved == UnresolvedReject {
					return fmt.Errorf("%w: product %d", ErrUnknownProduct, l.ProductID)
				}
				slog.Warn("cart line product not found; excluded from order total",
					"user_id", userID,
					"product_id", l.ProductID,
					"cart_id", l.CartID,
					"quantity", l.Quantity,
					"submitted_price", l.Price.String(),
				)
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		o := &entity.Order{
			UserID:          userID,
			TotalAmount:     total.Round(2),
			ShippingAddress: shipping.String(),
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.InsertItems(ctx, items); err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
		o.Items = items
		order = o
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	slog.Info("order placed", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount.StringFixed(2), "items", len(order.Items))
	return order, nil
}
