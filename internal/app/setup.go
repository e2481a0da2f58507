// Package app contains the application setup: the dependency graph is built
// here explicitly and handed to the HTTP server, never looked up globally.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	catalogservice "github.com/skmunene/dukahub/internal/catalog/service"
	catalogstore "github.com/skmunene/dukahub/internal/catalog/store"
	catalogrest "github.com/skmunene/dukahub/internal/catalog/transport/rest"
	"github.com/skmunene/dukahub/internal/config"
	orderservice "github.com/skmunene/dukahub/internal/order/service"
	orderstore "github.com/skmunene/dukahub/internal/order/store"
	orderrest "github.com/skmunene/dukahub/internal/order/transport/rest"
	userstore "github.com/skmunene/dukahub/internal/user/store"
	"github.com/skmunene/dukahub/pkg/auth"
	"github.com/skmunene/dukahub/pkg/messaging"
	"github.com/skmunene/dukahub/pkg/server"
	"github.com/skmunene/dukahub/pkg/web"
)

type Dependencies struct {
	OrderService   orderservice.OrderService
	ProductService catalogservice.ProductService
	Verifier       auth.Verifier
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, verifier auth.Verifier, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	oService := orderservice.NewService(
		orderstore.NewPgStore(dbPool),
		userstore.NewPgStore(dbPool),
		publisher,
	)
	pService := catalogservice.NewService(catalogstore.NewPgStore(dbPool))

	return &Dependencies{
		OrderService:   oService,
		ProductService: pService,
		Verifier:       verifier,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes and middleware.
// Used by tests to exercise the full router without a listening socket.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	authn := web.Auth(deps.Verifier)

	orderHandler := orderrest.NewHandler(deps.OrderService, deps.Logger)
	orderHandler.RegisterRoutes(mux, authn)

	productHandler := catalogrest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux, authn)
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
