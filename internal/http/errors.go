// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps an error from the catalog or the cart onto a status.
// Anything unclassified is a storage failure, reported as a client error.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrInsufficientStock):
		WriteJSONError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
	default:
		obs.Logger.Error("storage_error",
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		WriteJSONError(w, http.StatusBadRequest, "storage_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
