package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalog "storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/checkout/domain/entity"
	"storefront/internal/feature/checkout/usecase"
)

var flatShipping = decimal.RequireFromString("9.99")

var shipping = entity.ShippingInfo{Address: "Via Roma 1", City: "Milano", ZipCode: "20100"}

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{}, &catalog.ProductImage{},
		&entity.Order{}, &entity.OrderItem{},
	), "failed to migrate tables")
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string) uint {
	t.Helper()
	p := catalog.Product{
		Name:     name,
		Category: catalog.CategoryElectronics,
		Price:    decimal.RequireFromString(price),
		Rating:   decimal.RequireFromString("4.0"),
	}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func countRows(t *testing.T, db *gorm.DB) (orders, items int64) {
	t.Helper()
	require.NoError(t, db.Model(&entity.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&entity.OrderItem{}).Count(&items).Error)
	return orders, items
}

func TestOrderGorm_CatalogPrices(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	id := seedProduct(t, db, "Mouse", "24.90")

	err := repo.WithinTx(context.Background(), func(tx usecase.OrderTx) error {
		prices, err := tx.CatalogPrices(context.Background(), []uint{id, 999})
		require.NoError(t, err)
		require.Len(t, prices, 1)
		assert.Equal(t, "24.90", prices[id].StringFixed(2))

		empty, err := tx.CatalogPrices(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
		return nil
	})
	require.NoError(t, err)
}

func TestPlaceOrder_PersistsOrderAndItems(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, "Cable", "10.00")
	uc := usecase.NewOrderUsecase(NewOrderRepository(db), usecase.Config{ShippingCost: &flatShipping})

	order, err := uc.PlaceOrder(context.Background(), 3, []entity.CartLine{
		{ProductID: id, Quantity: 2, Price: decimal.RequireFromString("10.00"), CartID: "cart-1"},
	}, shipping)
	require.NoError(t, err)
	assert.Equal(t, "29.99", order.TotalAmount.StringFixed(2))

	orders, items := countRows(t, db)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), items)

	var stored entity.Order
	require.NoError(t, db.Preload("Items").First(&stored, order.ID).Error)
	assert.Equal(t, uint(3), stored.UserID)
	assert.Equal(t, "29.99", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, "Via Roma 1, Milano 20100", stored.ShippingAddress)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "10.00", stored.Items[0].PriceAtTime.StringFixed(2))
	assert.True(t, stored.Items[0].CatalogPrice.Valid)
}

func TestPlaceOrder_SnapshotsSubmittedPrice(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, "Lamp", "35.00")
	uc := usecase.NewOrderUsecase(NewOrderRepository(db), usecase.Config{})

	order, err := uc.PlaceOrder(context.Background(), 1, []entity.CartLine{
		{ProductID: id, Quantity: 1, Price: decimal.RequireFromString("30.00")},
		{ProductID: 4242, Quantity: 1, Price: decimal.RequireFromString("12.00")},
	}, shipping)
	require.NoError(t, err)
	assert.Equal(t, "44.99", order.TotalAmount.StringFixed(2))

	var items []entity.OrderItem
	require.NoError(t, db.Order("id").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "30.00", items[0].PriceAtTime.StringFixed(2))
	assert.Equal(t, "35.00", items[0].CatalogPrice.Decimal.StringFixed(2))
	assert.Equal(t, uint(4242), items[1].ProductID)
	assert.False(t, items[1].CatalogPrice.Valid, "unresolved line has no catalog price")
}

func TestPlaceOrder_EmptyCartCreatesNothing(t *testing.T) {
	db := setupTestDB(t)
	uc := usecase.NewOrderUsecase(NewOrderRepository(db), usecase.Config{})

	_, err := uc.PlaceOrder(context.Background(), 1, nil, shipping)
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)

	orders, items := countRows(t, db)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestPlaceOrder_RejectLeavesNoRows(t *testing.T) {
	db := setupTestDB(t)
	uc := usecase.NewOrderUsecase(NewOrderRepository(db), usecase.Config{Unresolved: usecase.UnresolvedReject})

	_, err := uc.PlaceOrder(context.Background(), 1, []entity.CartLine{
		{ProductID: 77, Quantity: 1, Price: decimal.RequireFromString("1.00")},
	}, shipping)
	assert.ErrorIs(t, err, usecase.ErrUnknownProduct)

	orders, items := countRows(t, db)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestPlaceOrder_ItemInsertFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, "Cable", "10.00")

	// order_itemsへの挿入だけを失敗させる
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(d *gorm.DB) {
		if d.Statement.Table == "order_items" {
			_ = d.AddError(errors.New("simulated item insert failure"))
		}
	}))

	uc := usecase.NewOrderUsecase(NewOrderRepository(db), usecase.Config{})
	_, err := uc.PlaceOrder(context.Background(), 1, []entity.CartLine{
		{ProductID: id, Quantity: 1, Price: decimal.RequireFromString("10.00")},
	}, shipping)
	assert.ErrorIs(t, err, usecase.ErrTransactionFailed)

	orders, items := countRows(t, db)
	assert.Zero(t, orders, "order row must be rolled back")
	assert.Zero(t, items)
}

func TestPlaceOrder_MySQLRollbackOnSecondInsert(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `products`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).AddRow(1, "10.00"))
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `order_items`").
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	uc := usecase.NewOrderUsecase(NewOrderRepository(db), usecase.Config{})
	order, err := uc.PlaceOrder(context.Background(), 1, []entity.CartLine{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")},
	}, shipping)

	assert.ErrorIs(t, err, usecase.ErrTransactionFailed)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet(), "transaction must be rolled back, never committed")
}
