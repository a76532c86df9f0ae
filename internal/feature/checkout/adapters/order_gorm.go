// Package adapters はcheckoutフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"storefront/internal/feature/checkout/domain/entity"
	"storefront/internal/feature/checkout/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// catalogPrice is the slice of the products table that checkout reads.
type catalogPrice struct {
	ID    uint
	Price decimal.Decimal
}

// orderGorm はOrderRepositoryインターフェースのGORM実装です。
type orderGorm struct {
	db *gorm.DB
}

var _ usecase.OrderRepository = (*orderGorm)(nil)

// NewOrderRepository は指定されたDB接続でorderGormリポジトリの新しいインスタンスを生成します。
func NewOrderRepository(db *gorm.DB) *orderGorm {
	return &orderGorm{db: db}
}

// WithinTx はfnをトランザクション内で実行します。fnがエラーを返すとロールバックされます。
func (r *orderGorm) WithinTx(ctx context.Context, fn func(tx usecase.OrderTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderTx{db: tx})
	})
}

// orderTx binds the statements of one order transaction to its *gorm.DB.
type orderTx struct {
	db *gorm.DB
}

func (t *orderTx) CatalogPrices(ctx context.Context, productIDs []uint) (map[uint]decimal.Decimal, error) {
	prices := make(map[uint]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return prices, nil
	}

	var rows []catalogPrice
	if err := t.db.WithContext(ctx).
		Table("products").
		Select("id", "price").
		Where("id IN ?", productIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		prices[row.ID] = row.Price
	}
	return prices, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (t *orderTx) InsertItems(ctx context.Context, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Create(&items).Error
}
