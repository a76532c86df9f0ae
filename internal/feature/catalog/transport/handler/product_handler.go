// Package handler はcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/transport/http/dto"
)

// CatalogUsecase は商品一覧に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type CatalogUsecase interface {
	List(ctx context.Context) ([]entity.Product, error)
}

// ProductHandler は商品一覧に関するHTTPリクエストを処理します。
type ProductHandler struct {
	uc CatalogUsecase
}

// NewProductHandler は新しい ProductHandler を作成します。
func NewProductHandler(uc CatalogUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List は全商品の一覧をJSON配列で返します。
// Usecaseでエラーが発生した場合は500を返し、内部エラーは公開しません。
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.uc.List(c.Request.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err)
		c.JSON(http.StatusInternalServerError, api.Fail("Unable to load products."))
		return
	}
	out := make([]dto.ProductItem, 0, len(products))
	for i := range products {
		out = append(out, dto.ProductItemFromEntity(&products[i]))
	}
	c.JSON(http.StatusOK, out)
}
