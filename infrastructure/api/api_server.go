package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixml/gitsearch"
	apimiddleware "github.com/helixml/gitsearch/infrastructure/api/middleware"
	v1 "github.com/helixml/gitsearch/infrastructure/api/v1"
	"github.com/helixml/gitsearch/internal/config"
	mcpinternal "github.com/helixml/gitsearch/internal/mcp"
)

// APIServer provides an HTTP API backed by a gitsearch Client.
type APIServer struct {
	client         *gitsearch.Client
	auth           apimiddleware.AuthConfig
	corsOrigins    []string
	requestTimeout time.Duration
	version        string
	server         *Server
	router         chi.Router
	routerCalled   bool
	logger         *slog.Logger
}

// Option configures an APIServer.
type Option func(*APIServer)

// WithCORSAllowedOrigins sets the origins allowed to call the API from a browser.
func WithCORSAllowedOrigins(origins []string) Option {
	return func(a *APIServer) {
		a.corsOrigins = origins
	}
}

// WithRequestTimeout bounds the catalog endpoints. MCP is not affected.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *APIServer) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(version string) Option {
	return func(a *APIServer) {
		if version != "" {
			a.version = version
		}
	}
}

// NewAPIServer creates a new APIServer wired to the given gitsearch Client.
// Every endpoint except health, metrics and docs requires one of the
// client's API keys; with no keys configured those endpoints reject all
// requests.
func NewAPIServer(client *gitsearch.Client, opts ...Option) *APIServer {
	a := &APIServer{
		client:         client,
		auth:           apimiddleware.NewAuthConfigWithKeys(client.APIKeys()),
		corsOrigins:    config.NewAppConfig().CORSAllowedOrigins(),
		requestTimeout: config.DefaultRequestTimeout,
		version:        "dev",
		logger:         client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-KEY", apimiddleware.CorrelationHeader, "Mcp-Session-Id"},
		ExposedHeaders:   []string{apimiddleware.CorrelationHeader, "Mcp-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(a.logger))

	// Open routes.
	router.Get("/health", a.health)
	router.Get("/healthz", a.health)
	router.Handle("/metrics", promhttp.HandlerFor(c.Gatherer(), promhttp.HandlerOpts{}))
	router.Mount("/docs", NewDocsRouter("/docs/openapi.json").Routes())

	catalogRouter := v1.NewCatalogRouter(c)
	searchRouter := v1.NewSearchRouter(c)

	router.Group(func(r chi.Router) {
		r.Use(apimiddleware.RequireToken(a.auth))

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(a.requestTimeout))
			r.Post("/git-search", searchRouter.Search)
			catalogRouter.Register(r)
		})

		// MCP manages its own response headers for session state, which is
		// incompatible with chi's Timeout middleware.
		mcpSrv := mcpinternal.NewServer(c.Catalog, c.Ingestion, a.version, a.logger)
		r.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
	})
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if a.client.Closed() {
		status = "shutting down"
		code = http.StatusServiceUnavailable
	}
	apimiddleware.WriteJSON(w, code, map[string]string{"status": status})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	srv := NewServer(addr, a.logger, WithWriteTimeout(a.requestTimeout+30*time.Second))
	a.server = &srv

	if a.routerCalled && a.router != nil {
		srv.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(srv.Router())
	}

	return srv.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
