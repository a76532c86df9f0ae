package usecase_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
)

// mockProductRepository はProductRepositoryインターフェースのモック実装です。
type mockProductRepository struct {
	ListFunc      func(ctx context.Context) ([]entity.Product, error)
	CountFunc     func(ctx context.Context) (int64, error)
	CreateAllFunc func(ctx context.Context, products []entity.Product) error
}

func (m *mockProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockProductRepository) CreateAll(ctx context.Context, products []entity.Product) error {
	if m.CreateAllFunc != nil {
		return m.CreateAllFunc(ctx, products)
	}
	return nil
}

func TestCatalogUsecase_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		list    func(ctx context.Context) ([]entity.Product, error)
		wantLen int
		wantErr bool
	}{
		{
			name: "success: returns products",
			list: func(ctx context.Context) ([]entity.Product, error) {
				return []entity.Product{{ID: 1, Name: "Mouse"}, {ID: 2, Name: "Lamp"}}, nil
			},
			wantLen: 2,
		},
		{
			name: "failure: repository error",
			list: func(ctx context.Context) ([]entity.Product, error) {
				return nil, errors.New("db down")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := usecase.NewCatalogUsecase(&mockProductRepository{ListFunc: tt.list})
			got, err := uc.List(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

const validImport = `[
  {"name":"Mouse","description":"Wireless","fullDetails":"2.4GHz","category":"Accessori","price":19.90,"rating":4.5,"reviews":120,"images":["m1.jpg","m2.jpg"]},
  {"name":"Lamp","description":"Desk lamp","fullDetails":"LED","category":"Casa & Ufficio","price":"35.00","rating":4,"reviews":8,"images":[]}
]`

func TestImportUsecase_ImportFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		count     int64
		file      string
		readErr   error
		createErr error
		wantN     int
		wantErr   error
		wantAny   bool
	}{
		{name: "success: imports all products", file: validImport, wantN: 2},
		{name: "failure: already imported", count: 3, file: validImport, wantErr: usecase.ErrAlreadyImported},
		{name: "failure: file missing", readErr: fs.ErrNotExist, wantErr: usecase.ErrImportFileNotFound},
		{name: "failure: malformed json", file: `{"name":`, wantErr: usecase.ErrInvalidImport},
		{name: "failure: unknown category", file: `[{"name":"X","category":"Garden","price":1,"rating":1}]`, wantErr: usecase.ErrInvalidImport},
		{name: "failure: negative price", file: `[{"name":"X","category":"Accessori","price":-1,"rating":1}]`, wantErr: usecase.ErrInvalidImport},
		{name: "failure: rating above five", file: `[{"name":"X","category":"Accessori","price":1,"rating":5.5}]`, wantErr: usecase.ErrInvalidImport},
		{name: "failure: missing name", file: `[{"category":"Accessori","price":1,"rating":1}]`, wantErr: usecase.ErrInvalidImport},
		{name: "failure: storage error", file: validImport, createErr: errors.New("deadlock"), wantAny: true},
		{name: "success: empty file imports nothing", file: `[]`, wantN: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var created []entity.Product
			repo := &mockProductRepository{
				CountFunc: func(ctx context.Context) (int64, error) { return tt.count, nil },
				CreateAllFunc: func(ctx context.Context, products []entity.Product) error {
					if tt.createErr != nil {
						return tt.createErr
					}
					created = products
					return nil
				},
			}
			uc := usecase.NewImportUsecaseWithReader(repo, func(string) ([]byte, error) {
				if tt.readErr != nil {
					return nil, tt.readErr
				}
				return []byte(tt.file), nil
			})

			n, err := uc.ImportFile(context.Background(), "products.json")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, created, "nothing is written on failure")
			case tt.wantAny:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantN, n)
				assert.Len(t, created, tt.wantN)
			}
		})
	}
}

func TestImportUsecase_MapsRecords(t *testing.T) {
	t.Parallel()

	var created []entity.Product
	repo := &mockProductRepository{CreateAllFunc: func(ctx context.Context, products []entity.Product) error {
		created = products
		return nil
	}}
	uc := usecase.NewImportUsecaseWithReader(repo, func(string) ([]byte, error) { return []byte(validImport), nil })

	_, err := uc.ImportFile(context.Background(), "products.json")
	require.NoError(t, err)
	require.Len(t, created, 2)

	mouse := created[0]
	assert.Equal(t, entity.CategoryAccessories, mouse.Category)
	assert.True(t, decimal.RequireFromString("19.90").Equal(mouse.Price))
	assert.Equal(t, 120, mouse.ReviewsCount)
	assert.Equal(t, []string{"m1.jpg", "m2.jpg"}, mouse.ImageURLs())

	lamp := created[1]
	assert.True(t, decimal.RequireFromString("35").Equal(lamp.Price), "string prices are accepted")
	assert.Empty(t, lamp.Images)
}
