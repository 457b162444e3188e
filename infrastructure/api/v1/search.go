// Package v1 provides the catalog HTTP endpoints.
package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/gitsearch"
	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/infrastructure/api/middleware"
	"github.com/helixml/gitsearch/infrastructure/api/v1/dto"
)

// SearchRouter handles the git-search endpoint.
type SearchRouter struct {
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *gitsearch.Client) *SearchRouter {
	return &SearchRouter{
		logger: client.Logger(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Search)

	return router
}

// Search handles POST /git-search.
//
// The request is validated, but searching file contents is not provided by
// the catalog, so a valid request is answered with 501.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	var body dto.GitSearchRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if strings.TrimSpace(body.URL) == "" {
		middleware.WriteError(w, req, catalog.ValidationError("url is required"), r.logger)
		return
	}

	r.logger.DebugContext(req.Context(), "git search requested",
		slog.String("url", body.URL),
		slog.Int("limit", body.EffectiveLimit()),
	)
	middleware.WriteError(w, req, catalog.ErrNotImplemented, r.logger)
}
