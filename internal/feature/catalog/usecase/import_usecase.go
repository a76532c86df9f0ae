package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/feature/catalog/domain/entity"
)

// ImportRecord is one product in the import file.
type ImportRecord struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	FullDetails string          `json:"fullDetails"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Rating      decimal.Decimal `json:"rating"`
	Reviews     int             `json:"reviews"`
	Images      []string        `json:"images"`
}

// validate checks one record; i is its position in the file.
func (r ImportRecord) validate(i int) error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: record %d: name is required", ErrInvalidImport, i)
	case !entity.Category(r.Category).Valid():
		return fmt.Errorf("%w: record %d: unknown category %q", ErrInvalidImport, i, r.Category)
	case r.Price.IsNegative():
		return fmt.Errorf("%w: record %d: negative price", ErrInvalidImport, i)
	case r.Rating.IsNegative() || r.Rating.GreaterThan(entity.MaxRating):
		return fmt.Errorf("%w: record %d: rating out of range", ErrInvalidImport, i)
	case r.Reviews < 0:
		return fmt.Errorf("%w: record %d: negative review count", ErrInvalidImport, i)
	}
	return nil
}

func (r ImportRecord) toEntity() entity.Product {
	images := make([]entity.ProductImage, 0, len(r.Images))
	for _, url := range r.Images {
		images = append(images, entity.ProductImage{URL: url})
	}
	return entity.Product{
		Name:         r.Name,
		Description:  r.Description,
		FullDetails:  r.FullDetails,
		Category:     entity.Category(r.Category),
		Price:        r.Price,
		Rating:       r.Rating,
		ReviewsCount: r.Reviews,
		Images:       images,
	}
}

// ImportUsecase loads the catalog from a JSON file. It is run out of band.
type ImportUsecase struct {
	repo     ProductRepository
	readFile func(name string) ([]byte, error)
}

// NewImportUsecase creates a new ImportUsecase.
func NewImportUsecase(r ProductRepository) *ImportUsecase {
	return &ImportUsecase{repo: r, readFile: os.ReadFile}
}

// NewImportUsecaseWithReader creates an ImportUsecase reading files through readFile.
func NewImportUsecaseWithReader(r ProductRepository, readFile func(name string) ([]byte, error)) *ImportUsecase {
	return &ImportUsecase{repo: r, readFile: readFile}
}

// ImportFile imports every product of the file at path. The import is
// refused when products already exist and is all-or-nothing otherwise.
// It returns the number of imported products.
func (u *ImportUsecase) ImportFile(ctx context.Context, path string) (int, error) {
	count, err := u.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return 0, ErrAlreadyImported
	}

	raw, err := u.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrImportFileNotFound, path)
		}
		return 0, fmt.Errorf("failed to read import file: %w", err)
	}

	var records []ImportRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	products := make([]entity.Product, 0, len(records))
	for i, rec := range records {
		if err := rec.validate(i); err != nil {
			return 0, err
		}
		products = append(products, rec.toEntity())
	}
	if len(products) == 0 {
		return 0, nil
	}

	if err := u.repo.CreateAll(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to import products: %w", err)
	}
	slog.Info("catalog imported", "products", len(products), "file", path)
	return len(products), nil
}
