// Package store holds the product catalog: the sole authority over product
// records and their available quantity.
package store

import (
	"context"

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// SortOrder selects the price ordering of List.
type SortOrder int

const (
	// Natural keeps storage order.
	Natural SortOrder = iota
	PriceAsc
	PriceDesc
)

// ParseSortOrder maps the order query value; anything unknown is Natural.
func ParseSortOrder(s string) SortOrder {
	switch s {
	case "asc":
		return PriceAsc
	case "desc":
		return PriceDesc
	}
	return Natural
}

// ListOptions filters and orders List results.
type ListOptions struct {
	MinQuantity *int64
	Order       SortOrder
}

// Catalog is implemented by every product backend.
//
// AdjustQuantity applies quantidade += delta only when the result stays
// non-negative; otherwise it returns model.ErrInsufficientStock without
// writing. Every call is an independent unit of work.
type Catalog interface {
	Create(ctx context.Context, name string, price float64, quantity int64) (model.Product, error)
	List(ctx context.Context, opts ListOptions) ([]model.Product, error)
	Get(ctx context.Context, id int64) (model.Product, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, id int64, name string, price float64) (model.Product, error)
	Delete(ctx context.Context, id int64) error
	AdjustQuantity(ctx context.Context, id int64, delta int64) (model.Product, error)
	Ping(ctx context.Context) error
}
