package model

import "github.com/go-faster/errors"

// Error kinds shared by the catalog and the cart. Callers wrap them with
// context and the HTTP layer classifies with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
