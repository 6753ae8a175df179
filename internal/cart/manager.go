// Package cart keeps the process-wide reservation ledger. Every entry holds
// stock that has been moved out of the catalog's available quantity.
package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
	"github.com/fairyhunter13/inventory-cart-service/internal/store"
)

// Options tunes Manager behaviour.
type Options struct {
	// ReconcileUpdates makes Update move the quantity difference through the
	// catalog. When false Update overwrites the entry and leaves stock alone.
	ReconcileUpdates bool
}

// Manager owns the cart entries. The mutex is held for the whole of each
// operation so lookups and mutations of an entry never interleave.
type Manager struct {
	catalog store.Catalog
	opts    Options

	mu      sync.Mutex
	entries []model.CartEntry
}

// NewManager returns an empty cart backed by catalog.
func NewManager(catalog store.Catalog, opts Options) *Manager {
	return &Manager{catalog: catalog, opts: opts}
}

// Add reserves quantity units of productID and returns the cart.
//
// Stock is taken from the catalog before the entry is touched, so a storage
// failure leaves the cart as it was. Availability is decided by the
// conditional AdjustQuantity, never by a possibly cached Get.
func (m *Manager) Add(ctx context.Context, productID, quantity int64) ([]model.CartEntry, error) {
	if quantity <= 0 {
		return nil, errors.Wrap(model.ErrValidation, "quantidade must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	after, err := m.catalog.AdjustQuantity(ctx, productID, -quantity)
	if err != nil {
		return nil, err
	}

	if i := m.find(productID); i >= 0 {
		m.entries[i].Quantidade += quantity
	} else {
		m.entries = append(m.entries, model.CartEntry{ProdutoID: productID, Quantidade: quantity})
	}
	obs.Logger.Info("cart_add", "product_id", productID, "quantity", quantity, "available", after.Quantidade)
	return m.snapshot(), nil
}

// Update sets the reserved quantity of an existing entry.
func (m *Manager) Update(ctx context.Context, productID, quantity int64) ([]model.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(productID)
	if i < 0 {
		return nil, errors.Wrapf(model.ErrNotFound, "produto %d not in cart", productID)
	}
	if quantity <= 0 {
		return nil, errors.Wrap(model.ErrValidation, "quantidade must be positive")
	}
	if m.opts.ReconcileUpdates {
		// growing the entry takes stock, shrinking it gives stock back
		delta := m.entries[i].Quantidade - quantity
		if delta != 0 {
			if _, err := m.catalog.AdjustQuantity(ctx, productID, delta); err != nil {
				return nil, err
			}
		}
	}
	m.entries[i].Quantidade = quantity
	obs.Logger.Info("cart_update", "product_id", productID, "quantity", quantity, "reconciled", m.opts.ReconcileUpdates)
	return m.snapshot(), nil
}

// Remove drops the entry for productID and returns its reservation to the
// catalog. The entry is kept if the catalog write fails.
func (m *Manager) Remove(ctx context.Context, productID int64) ([]model.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(productID)
	if i < 0 {
		return nil, errors.Wrapf(model.ErrNotFound, "produto %d not in cart", productID)
	}
	reserved := m.entries[i].Quantidade
	after, err := m.catalog.AdjustQuantity(ctx, productID, reserved)
	if err != nil {
		return nil, err
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	obs.Logger.Info("cart_remove", "product_id", productID, "returned", reserved, "available", after.Quantidade)
	return m.snapshot(), nil
}

// Entries returns a copy of the cart.
func (m *Manager) Entries() []model.CartEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Stats reports the number of entries and the total reserved units.
func (m *Manager) Stats() (entries int, reserved int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		reserved += e.Quantidade
	}
	return len(m.entries), reserved
}

func (m *Manager) find(productID int64) int {
	for i, e := range m.entries {
		if e.ProdutoID == productID {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshot() []model.CartEntry {
	out := make([]model.CartEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
