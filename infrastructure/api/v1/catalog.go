package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/gitsearch"
	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/infrastructure/api/middleware"
	"github.com/helixml/gitsearch/infrastructure/api/v1/dto"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// CatalogRouter handles listing, ingestion, reset and the error log.
type CatalogRouter struct {
	catalog   *service.Catalog
	ingestion *service.Ingestion
	logger    *slog.Logger
}

// NewCatalogRouter creates a new CatalogRouter.
func NewCatalogRouter(client *gitsearch.Client) *CatalogRouter {
	return &CatalogRouter{
		catalog:   client.Catalog,
		ingestion: client.Ingestion,
		logger:    client.Logger(),
	}
}

// Routes returns the chi router for catalog endpoints.
func (r *CatalogRouter) Routes() chi.Router {
	router := chi.NewRouter()
	r.Register(router)
	return router
}

// Register adds the catalog endpoints to an existing router. The catalog
// paths sit at the server root, so they are registered rather than mounted.
func (r *CatalogRouter) Register(router chi.Router) {
	router.Post("/list", r.List)
	router.Post("/add", r.Add)
	router.Delete("/reset-db", r.Reset)
	router.Get("/errors", r.Errors)
}

// List handles POST /list.
func (r *CatalogRouter) List(w http.ResponseWriter, req *http.Request) {
	var body dto.ListRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	listing, err := r.catalog.List(req.Context(), body.WantFiles())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ListResponse{Results: listing.Rows()})
}

// Add handles POST /add.
func (r *CatalogRouter) Add(w http.ResponseWriter, req *http.Request) {
	var body dto.AddRequest
	if err := decodeBody(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if len(body.URLs) == 0 {
		middleware.WriteError(w, req, catalog.ValidationError("urls is required"), r.logger)
		return
	}

	result, err := r.ingestion.Add(req.Context(), body.Params())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewAddResponse(result))
}

// Reset handles DELETE /reset-db.
func (r *CatalogRouter) Reset(w http.ResponseWriter, req *http.Request) {
	ok := r.catalog.Reset(req.Context())
	middleware.WriteJSON(w, http.StatusOK, dto.ResetResponse{Success: ok})
}

// Errors handles GET /errors.
func (r *CatalogRouter) Errors(w http.ResponseWriter, req *http.Request) {
	failures, err := r.catalog.Errors(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewErrorsResponse(failures))
}

// decodeBody decodes a JSON request body into v. An absent body leaves v at
// its zero value so the handler reports the missing fields. A body that is
// not valid JSON for v is a structural failure and maps to 500.
func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	err := json.NewDecoder(req.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return nil
	default:
		return middleware.NewAPIError(http.StatusInternalServerError, "malformed request body", err)
	}
}
