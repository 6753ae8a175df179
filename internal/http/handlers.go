package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/inventory-cart-service/internal/cart"
	"github.com/fairyhunter13/inventory-cart-service/internal/config"
	httpopenapi "github.com/fairyhunter13/inventory-cart-service/internal/http/openapi"
	"github.com/fairyhunter13/inventory-cart-service/internal/model"
	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
	"github.com/fairyhunter13/inventory-cart-service/internal/store"
)

type App struct {
	Cfg     config.Config
	Catalog store.Catalog
	Cart    *cart.Manager
	closing atomic.Bool
	started time.Time
}

type cartResponse struct {
	Message  string            `json:"message,omitempty"`
	Carrinho []model.CartEntry `json:"carrinho"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func NewApp(cfg config.Config, catalog store.Catalog, c *cart.Manager) *App {
	return &App{Cfg: cfg, Catalog: catalog, Cart: c, started: time.Now()}
}

// StartShutdown makes every write endpoint answer 503.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

// decodeBody enforces a JSON content type and rejects unknown fields. It
// writes the error response itself and reports whether decoding succeeded.
func (a *App) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return false
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// pathID parses a numeric path segment. Ids that cannot exist are reported
// as not found.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return 0, false
	}
	return id, true
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var in model.NewProduct
	if !a.decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Nome) == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "nome is required")
		return
	}
	if in.Preco == nil || *in.Preco < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "preco must be >= 0")
		return
	}
	var qty int64
	if in.Quantidade != nil {
		qty = *in.Quantidade
	}
	if qty < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantidade must be >= 0")
		return
	}
	p, err := a.Catalog.Create(r.Context(), in.Nome, *in.Preco, qty)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	obs.Logger.Info("product_created", "product_id", p.ID, "quantity", p.Quantidade)
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOptions{Order: store.ParseSortOrder(q.Get("order"))}
	if v := q.Get("quantidade"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantidade must be an integer")
			return
		}
		opts.MinQuantity = &n
	}
	ps, err := a.Catalog.List(r.Context(), opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.Catalog.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) lowStockHandler(w http.ResponseWriter, r *http.Request) {
	ps, err := a.Catalog.ListLowStock(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in model.ProductEdit
	if !a.decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Nome) == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "nome is required")
		return
	}
	if in.Preco == nil || *in.Preco < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "preco must be >= 0")
		return
	}
	p, err := a.Catalog.Update(r.Context(), id, in.Nome, *in.Preco)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.EditedProduct{ID: p.ID, Nome: p.Nome, Preco: p.Preco})
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.Catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	obs.Logger.Info("product_deleted", "product_id", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Produto deletado com sucesso"})
}

func (a *App) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	var in model.CartAdd
	if !a.decodeBody(w, r, &in) {
		return
	}
	entries, err := a.Cart.Add(r.Context(), in.ProdutoID, in.Quantidade)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cartResponse{Message: "Produto adicionado ao carrinho", Carrinho: entries})
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartResponse{Carrinho: a.Cart.Entries()})
}

func (a *App) updateCartHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "produto_id")
	if !ok {
		return
	}
	var in model.CartEdit
	if !a.decodeBody(w, r, &in) {
		return
	}
	entries, err := a.Cart.Update(r.Context(), id, in.Quantidade)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Quantidade atualizada no carrinho", Carrinho: entries})
}

func (a *App) removeFromCartHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	id, ok := pathID(w, r, "produto_id")
	if !ok {
		return
	}
	entries, err := a.Cart.Remove(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Produto removido do carrinho", Carrinho: entries})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.Ping(r.Context()); err != nil {
		obs.Logger.Warn("health_storage_down", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "storage": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": "up"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	entries, reserved := a.Cart.Stats()
	m := map[string]any{
		"cart_entries":        entries,
		"cart_reserved_units": reserved,
		"reconcile_updates":   a.Cfg.CartReconcileUpdates,
		"uptime_sec":          time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Inventory &amp; Cart API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
