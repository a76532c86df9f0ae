// Package dto defines data transfer objects for the catalog feature's HTTP transport layer.
package dto

import "storefront/internal/feature/catalog/domain/entity"

// ProductItem is one product of the listing.
// Price and rating are floats and images is never null, as the browser client expects.
type ProductItem struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	FullDetails string   `json:"full_details"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Images      []string `json:"images"`
}

// ProductItemFromEntity converts a product into its listing item.
func ProductItemFromEntity(p *entity.Product) ProductItem {
	return ProductItem{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		FullDetails: p.FullDetails,
		Category:    string(p.Category),
		Price:       p.Price.InexactFloat64(),
		Rating:      p.Rating.InexactFloat64(),
		Reviews:     p.ReviewsCount,
		Images:      p.ImageURLs(),
	}
}
