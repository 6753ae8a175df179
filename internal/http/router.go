package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
// The literal /produtos/baixo-estoque pattern takes precedence over
// /produtos/{id}.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /produtos", app.createProductHandler)
	mux.HandleFunc("GET /produtos", app.listProductsHandler)
	mux.HandleFunc("GET /produtos/baixo-estoque", app.lowStockHandler)
	mux.HandleFunc("GET /produtos/{id}", app.getProductHandler)
	mux.HandleFunc("PUT /produtos/{id}", app.updateProductHandler)
	mux.HandleFunc("DELETE /produtos/{id}", app.deleteProductHandler)

	mux.HandleFunc("POST /carrinho", app.addToCartHandler)
	mux.HandleFunc("GET /carrinho", app.getCartHandler)
	mux.HandleFunc("PUT /carrinho/{produto_id}", app.updateCartHandler)
	mux.HandleFunc("DELETE /carrinho/{produto_id}", app.removeFromCartHandler)

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)
	return WithRequestID(WithLogging(WithRecover(mux)))
}
