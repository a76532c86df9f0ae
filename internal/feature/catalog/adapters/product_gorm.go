// Package adapters はcatalogフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"

	"gorm.io/gorm"
)

// importBatchSize bounds the number of rows per INSERT during import.
const importBatchSize = 100

// productGorm はProductRepositoryインターフェースのGORM実装です。
type productGorm struct {
	db *gorm.DB
}

var _ usecase.ProductRepository = (*productGorm)(nil)

// NewProductRepository は指定されたDB接続でproductGormリポジトリの新しいインスタンスを生成します。
func NewProductRepository(db *gorm.DB) *productGorm {
	return &productGorm{db: db}
}

// List はID順にすべての商品を画像付きで返します。画像は挿入順に並びます。
func (r *productGorm) List(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(q *gorm.DB) *gorm.DB {
			return q.Order("id ASC")
		}).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count は登録済みの商品数を返します。
func (r *productGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CreateAll は商品と画像を単一トランザクションで挿入します。失敗時はすべてロールバックされます。
func (r *productGorm) CreateAll(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&products, importBatchSize).Error
	})
}
