//go:build integration

// Black-box tests against a running server. Start the service, then:
//
//	BASE_URL=http://localhost:3000 go test -tags integration ./test/integration
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:3000"
}

type product struct {
	ID         int64   `json:"id"`
	Nome       string  `json:"nome"`
	Preco      float64 `json:"preco"`
	Quantidade int64   `json:"quantidade"`
}

type cartEntry struct {
	ProdutoID  int64 `json:"produto_id"`
	Quantidade int64 `json:"quantidade"`
}

type cartResp struct {
	Message  string      `json:"message"`
	Carrinho []cartEntry `json:"carrinho"`
}

func waitReady(t testing.TB) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL() + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("service not ready")
}

func call(t testing.TB, method, path, body string, out any) int {
	t.Helper()
	var r *http.Request
	var err error
	if body == "" {
		r, err = http.NewRequest(method, baseURL()+path, nil)
	} else {
		r, err = http.NewRequest(method, baseURL()+path, bytes.NewBufferString(body))
		if err == nil {
			r.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createProduct(t testing.TB, nome string, preco float64, qty int64) product {
	t.Helper()
	var p product
	body := fmt.Sprintf(`{"nome":%q,"preco":%v,"quantidade":%d}`, nome, preco, qty)
	if st := call(t, http.MethodPost, "/produtos", body, &p); st != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", st)
	}
	return p
}

func productQty(t testing.TB, id int64) int64 {
	t.Helper()
	var p product
	if st := call(t, http.MethodGet, fmt.Sprintf("/produtos/%d", id), "", &p); st != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", st)
	}
	return p.Quantidade
}

func TestIntegration_OpenAPIServed(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_CreateThenGet(t *testing.T) {
	waitReady(t)
	p := createProduct(t, "it-caneta", 2.5, 5)
	var got product
	if st := call(t, http.MethodGet, fmt.Sprintf("/produtos/%d", p.ID), "", &got); st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	if got != p {
		t.Fatalf("mismatch: %+v vs %+v", got, p)
	}
}

func TestIntegration_MissingProduct(t *testing.T) {
	waitReady(t)
	if st := call(t, http.MethodGet, "/produtos/999999999", "", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", st)
	}
}

func TestIntegration_LowStockNotShadowed(t *testing.T) {
	waitReady(t)
	p := createProduct(t, "it-low", 1, 3)
	var low []product
	if st := call(t, http.MethodGet, "/produtos/baixo-estoque", "", &low); st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	found := false
	for _, l := range low {
		if l.Quantidade >= 10 {
			t.Fatalf("not low stock: %+v", l)
		}
		found = found || l.ID == p.ID
	}
	if !found {
		t.Fatalf("product %d missing from low stock list", p.ID)
	}
}

func TestIntegration_CartScenario(t *testing.T) {
	waitReady(t)
	p := createProduct(t, "it-cart", 2.5, 5)
	var c cartResp
	if st := call(t, http.MethodPost, "/carrinho", fmt.Sprintf(`{"produto_id":%d,"quantidade":3}`, p.ID), &c); st != http.StatusCreated {
		t.Fatalf("expected 201, got %d", st)
	}
	if q := productQty(t, p.ID); q != 2 {
		t.Fatalf("expected 2, got %d", q)
	}
	if st := call(t, http.MethodPost, "/carrinho", fmt.Sprintf(`{"produto_id":%d,"quantidade":5}`, p.ID), nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", st)
	}
	if st := call(t, http.MethodDelete, fmt.Sprintf("/carrinho/%d", p.ID), "", &c); st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	for _, e := range c.Carrinho {
		if e.ProdutoID == p.ID {
			t.Fatalf("entry still in cart: %+v", c)
		}
	}
	if q := productQty(t, p.ID); q != 5 {
		t.Fatalf("expected 5, got %d", q)
	}
}

func TestIntegration_UnsupportedMediaType(t *testing.T) {
	waitReady(t)
	r, _ := http.NewRequest(http.MethodPost, baseURL()+"/produtos", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "text/plain")
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.StatusCode)
	}
}
