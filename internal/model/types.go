// Package model defines domain types used by the service.
package model

// Product represents a catalog record. Quantidade is the available
// (unreserved) stock.
type Product struct {
	ID         int64   `json:"id"`
	Nome       string  `json:"nome"`
	Preco      float64 `json:"preco"`
	Quantidade int64   `json:"quantidade"`
}

// CartEntry is a reservation of stock for a single product.
type CartEntry struct {
	ProdutoID  int64 `json:"produto_id"`
	Quantidade int64 `json:"quantidade"`
}

// NewProduct is the body of a product creation request.
type NewProduct struct {
	Nome       string   `json:"nome"`
	Preco      *float64 `json:"preco"`
	Quantidade *int64   `json:"quantidade,omitempty"`
}

// ProductEdit is the body of a product update request.
type ProductEdit struct {
	Nome  string   `json:"nome"`
	Preco *float64 `json:"preco"`
}

// EditedProduct echoes the fields touched by a product update.
type EditedProduct struct {
	ID    int64   `json:"id"`
	Nome  string  `json:"nome"`
	Preco float64 `json:"preco"`
}

// CartAdd is the body of an add-to-cart request.
type CartAdd struct {
	ProdutoID  int64 `json:"produto_id"`
	Quantidade int64 `json:"quantidade"`
}

// CartEdit is the body of a cart quantity update.
type CartEdit struct {
	Quantidade int64 `json:"quantidade"`
}
