package store

import (
	"context"
	"sort"
	"sync"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
)

// Memory is an in-process Catalog. It backs the service when no database is
// configured and is what most tests run against.
type Memory struct {
	mu  sync.RWMutex
	m   map[int64]model.Product
	ids Sequencer
}

// NewMemory returns an empty catalog.
func NewMemory() *Memory {
	return &Memory{m: make(map[int64]model.Product)}
}

func (s *Memory) Create(_ context.Context, name string, price float64, quantity int64) (model.Product, error) {
	p := model.Product{ID: s.ids.Next(), Nome: name, Preco: price, Quantidade: quantity}
	s.mu.Lock()
	s.m[p.ID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *Memory) Get(_ context.Context, id int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	return p, nil
}

func (s *Memory) List(_ context.Context, opts ListOptions) ([]model.Product, error) {
	out := s.filter(func(p model.Product) bool {
		return opts.MinQuantity == nil || p.Quantidade >= *opts.MinQuantity
	})
	switch opts.Order {
	case PriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Preco < out[j].Preco })
	case PriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Preco > out[j].Preco })
	}
	return out, nil
}

func (s *Memory) ListLowStock(_ context.Context) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.Quantidade < LowStockThreshold }), nil
}

// filter returns matching products in id order.
func (s *Memory) filter(keep func(model.Product) bool) []model.Product {
	s.mu.RLock()
	out := make([]model.Product, 0, len(s.m))
	for _, p := range s.m {
		if keep(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Memory) Update(_ context.Context, id int64, name string, price float64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	p.Nome = name
	p.Preco = price
	s.m[id] = p
	return p, nil
}

func (s *Memory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	delete(s.m, id)
	return nil
}

func (s *Memory) AdjustQuantity(_ context.Context, id int64, delta int64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, errors.Wrapf(model.ErrNotFound, "produto %d", id)
	}
	if p.Quantidade+delta < 0 {
		return model.Product{}, errors.Wrapf(model.ErrInsufficientStock, "produto %d has %d, delta %d", id, p.Quantidade, delta)
	}
	p.Quantidade += delta
	s.m[id] = p
	return p, nil
}

// Ping always succeeds.
func (s *Memory) Ping(context.Context) error { return nil }
