// ABOUTME: Inventory endpoint wrappers over the shared API client
// ABOUTME: Product listing and lookup; 401s recover transparently via the auth layer

package inventory

import (
	"context"
	"fmt"

	"github.com/stockpilot/stockpilot-go/client"
)

// Service wraps the product endpoints. All calls go through the shared
// client, so an expired access token is refreshed and retried without the
// caller noticing.
type Service struct {
	client *client.Client
}

// New creates an inventory service over the shared client.
func New(c *client.Client) *Service {
	return &Service{client: c}
}

// Variant is a sellable variation of a product
type Variant struct {
	ID    int64   `json:"id"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Product represents a catalog entry with aggregated stock
type Product struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	Category string    `json:"category,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	Stock    int       `json:"stock"`
	Variants []Variant `json:"variants,omitempty"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ProductList is the paginated response of GET /api/products
type ProductList struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListProducts calls GET /api/products with page/limit parameters.
func (s *Service) ListProducts(ctx context.Context, page, limit int) (*ProductList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var list ProductList
	path := fmt.Sprintf("/api/products/?page=%d&limit=%d", page, limit)
	if err := s.client.Get(ctx, path, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

// GetProduct calls GET /api/products/{id}.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := s.client.Get(ctx, fmt.Sprintf("/api/products/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
