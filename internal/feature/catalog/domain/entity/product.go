// Package entity defines the domain entities for the catalog feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed product categories.
type Category string

const (
	CategoryElectronics Category = "Elettronica"
	CategoryAccessories Category = "Accessori"
	CategoryHomeOffice  Category = "Casa & Ufficio"
)

// Categories lists every valid category.
var Categories = []Category{CategoryElectronics, CategoryAccessories, CategoryHomeOffice}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MaxRating is the upper bound of a product rating.
var MaxRating = decimal.NewFromInt(5)

// Product is a read-only catalog entry. Only the importer creates products.
type Product struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:255;not null"`
	Description  string          `gorm:"type:text"`
	FullDetails  string          `gorm:"type:text"`
	Category     Category        `gorm:"size:50;not null;index"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Rating       decimal.Decimal `gorm:"type:decimal(2,1);not null;default:0"`
	ReviewsCount int             `gorm:"not null;default:0"`
	Images       []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

// ProductImage is one image URL of a product. Images keep insertion order.
type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"index;not null"`
	URL       string `gorm:"column:image_url;size:512;not null"`
}

// ImageURLs returns the image URLs in order. It never returns nil.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}
