// Package handler はcheckoutフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/feature/checkout/domain/entity"
	"storefront/internal/feature/checkout/transport/http/dto"
	"storefront/internal/feature/checkout/usecase"
	"storefront/internal/platform/metrics"
	"storefront/internal/shared/identity"
)

// OrderUsecase は注文確定のユースケースを定義します。
type OrderUsecase interface {
	PlaceOrder(ctx context.Context, userID uint, lines []entity.CartLine, shipping entity.ShippingInfo) (*entity.Order, error)
}

// CheckoutHandler は注文確定のHTTPリクエストを処理します。
type CheckoutHandler struct {
	orders OrderUsecase
}

// NewCheckoutHandler はCheckoutHandlerの新しいインスタンスを生成します。
func NewCheckoutHandler(orders OrderUsecase) *CheckoutHandler {
	return &CheckoutHandler{orders: orders}
}

// Checkout places an order for the session user.
// - セッションなしは401
// - 空のカートや不正な入力は400
// - トランザクション失敗は500（内部エラーはログのみ）
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		metrics.CheckoutFailed("unauthorized")
		c.JSON(http.StatusUnauthorized, api.Fail("You must log in to complete the order."))
		return
	}

	var req dto.CheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("checkout validation failed", "error", err, "user_id", id.UserID)
		metrics.CheckoutFailed("invalid")
		c.JSON(http.StatusBadRequest, api.Fail("Invalid order data."))
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), id.UserID, req.Lines(), req.ShippingInfo())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthorized):
			metrics.CheckoutFailed("unauthorized")
			c.JSON(http.StatusUnauthorized, api.Fail("You must log in to complete the order."))
		case errors.Is(err, usecase.ErrEmptyCart):
			metrics.CheckoutFailed("empty_cart")
			c.JSON(http.StatusBadRequest, api.Fail("Your cart is empty."))
		case errors.Is(err, usecase.ErrInvalidCart), errors.Is(err, usecase.ErrInvalidShipping):
			metrics.CheckoutFailed("invalid")
			c.JSON(http.StatusBadRequest, api.Fail("Invalid order data."))
		case errors.Is(err, usecase.ErrUnknownProduct):
			metrics.CheckoutFailed("unknown_product")
			c.JSON(http.StatusBadRequest, api.Fail("Some products in your cart are no longer available."))
		default:
			slog.Error("checkout failed", "error", err, "user_id", id.UserID)
			metrics.CheckoutFailed("transaction")
			c.JSON(http.StatusInternalServerError, api.Fail("An error occurred while processing the order."))
		}
		return
	}

	metrics.OrderPlaced()
	c.JSON(http.StatusOK, api.OK(fmt.Sprintf("Order #%d completed successfully!", order.ID)))
}
