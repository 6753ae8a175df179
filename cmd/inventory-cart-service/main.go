// Package main boots the inventory and cart HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/inventory-cart-service/internal/cache"
	"github.com/fairyhunter13/inventory-cart-service/internal/cart"
	"github.com/fairyhunter13/inventory-cart-service/internal/config"
	httpapi "github.com/fairyhunter13/inventory-cart-service/internal/http"
	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
	"github.com/fairyhunter13/inventory-cart-service/internal/store"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.SetLevel(cfg.LogLevel)
	obs.Logger.Info("service_starting")

	ctx := context.Background()
	var catalog store.Catalog
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, store.PostgresOptions{
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			Timeout:         cfg.DBTimeout,
		})
		if err != nil {
			obs.Logger.Error("storage_init_error", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		catalog = pg
	} else {
		obs.Logger.Warn("storage_in_memory", "reason", "DATABASE_URL not set")
		catalog = store.NewMemory()
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			obs.Logger.Warn("cache_disabled", "error", err)
		} else {
			defer rdb.Close()
			catalog = cache.New(catalog, rdb, cfg.RedisTTL)
		}
	}

	mgr := cart.NewManager(catalog, cart.Options{ReconcileUpdates: cfg.CartReconcileUpdates})
	app := httpapi.NewApp(cfg, catalog, mgr)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	entries, reserved := mgr.Stats()
	obs.Logger.Info("shutdown_begin", "cart_entries", entries, "cart_reserved_units", reserved)

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
