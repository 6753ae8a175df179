package store

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
)

func seed(t *testing.T, s Catalog) []model.Product {
	t.Helper()
	ctx := context.Background()
	var out []model.Product
	for _, p := range []model.Product{
		{Nome: "Caneta", Preco: 2.5, Quantidade: 5},
		{Nome: "Caderno", Preco: 15, Quantidade: 30},
		{Nome: "Lapis", Preco: 1, Quantidade: 10},
		{Nome: "Mochila", Preco: 120, Quantidade: 2},
	} {
		got, err := s.Create(ctx, p.Nome, p.Preco, p.Quantidade)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		out = append(out, got)
	}
	return out
}

func TestMemoryCreateGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	p, err := s.Create(ctx, "Caneta", 2.5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 1 {
		t.Fatalf("expected id 1, got %d", p.ID)
	}
	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Nome != "Caneta" || got.Preco != 2.5 || got.Quantidade != 5 {
		t.Fatalf("unexpected: %+v", got)
	}
	if _, err := s.Get(ctx, 99); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryIDsNeverReused(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a, _ := s.Create(ctx, "a", 1, 1)
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	b, _ := s.Create(ctx, "b", 1, 1)
	if b.ID <= a.ID {
		t.Fatalf("id reused: %d after %d", b.ID, a.ID)
	}
}

func TestMemoryListOrderAndFilter(t *testing.T) {
	s := NewMemory()
	seed(t, s)
	ctx := context.Background()

	all, _ := s.List(ctx, ListOptions{})
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("natural order broken: %+v", all)
		}
	}

	asc, _ := s.List(ctx, ListOptions{Order: PriceAsc})
	for i := 1; i < len(asc); i++ {
		if asc[i-1].Preco > asc[i].Preco {
			t.Fatalf("asc broken: %+v", asc)
		}
	}
	desc, _ := s.List(ctx, ListOptions{Order: PriceDesc})
	for i := 1; i < len(desc); i++ {
		if desc[i-1].Preco < desc[i].Preco {
			t.Fatalf("desc broken: %+v", desc)
		}
	}

	minQty := int64(10)
	filtered, _ := s.List(ctx, ListOptions{MinQuantity: &minQty})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 with quantidade >= 10, got %+v", filtered)
	}
	for _, p := range filtered {
		if p.Quantidade < minQty {
			t.Fatalf("filter broken: %+v", p)
		}
	}
}

func TestMemoryLowStock(t *testing.T) {
	s := NewMemory()
	seed(t, s)
	low, _ := s.ListLowStock(context.Background())
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock products, got %+v", low)
	}
	for _, p := range low {
		if p.Quantidade >= LowStockThreshold {
			t.Fatalf("not low stock: %+v", p)
		}
	}
}

func TestMemoryEmptyListIsNotNil(t *testing.T) {
	s := NewMemory()
	got, _ := s.List(context.Background(), ListOptions{})
	if got == nil {
		t.Fatalf("expected empty slice")
	}
}

func TestMemoryUpdateKeepsQuantity(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	p, _ := s.Create(ctx, "Caneta", 2.5, 5)
	got, err := s.Update(ctx, p.ID, "Caneta Azul", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got.Nome != "Caneta Azul" || got.Preco != 3 || got.Quantidade != 5 {
		t.Fatalf("unexpected: %+v", got)
	}
	if _, err := s.Update(ctx, 77, "x", 1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Delete(ctx, 77); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryAdjustQuantity(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	p, _ := s.Create(ctx, "Caneta", 2.5, 5)
	got, err := s.AdjustQuantity(ctx, p.ID, -5)
	if err != nil || got.Quantidade != 0 {
		t.Fatalf("expected 0, got %+v %v", got, err)
	}
	if _, err := s.AdjustQuantity(ctx, p.ID, -1); !errors.Is(err, model.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	got, _ = s.AdjustQuantity(ctx, p.ID, 4)
	if got.Quantidade != 4 {
		t.Fatalf("expected 4, got %d", got.Quantidade)
	}
	if _, err := s.AdjustQuantity(ctx, 99, 1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryConcurrentAdjust(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	p, _ := s.Create(ctx, "Lapis", 1, 40)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AdjustQuantity(ctx, p.ID, -1)
		}()
	}
	wg.Wait()
	got, _ := s.Get(ctx, p.ID)
	if got.Quantidade != 0 {
		t.Fatalf("expected 0, got %d", got.Quantidade)
	}
}

func TestParseSortOrder(t *testing.T) {
	if ParseSortOrder("asc") != PriceAsc || ParseSortOrder("desc") != PriceDesc || ParseSortOrder("") != Natural || ParseSortOrder("ASC") != Natural {
		t.Fatalf("unexpected sort parsing")
	}
}
