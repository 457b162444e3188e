package dto

import (
	"encoding/json"

	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/infrastructure/api/jsonapi"
)

// ListRequest represents a POST /list request.
type ListRequest struct {
	IncludeFiles *bool `json:"include_files,omitempty"`
}

// WantFiles reports whether file names were requested.
func (r ListRequest) WantFiles() bool {
	return r.IncludeFiles != nil && *r.IncludeFiles
}

// ListResponse represents a POST /list response. Results holds repository
// URLs, or [url, file name] pairs when files were requested.
type ListResponse struct {
	Results any `json:"results"`
}

// URLList accepts either a single URL string or a list of URL strings.
// An empty string decodes to an empty list.
type URLList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *URLList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || raw == "" {
		*l = nil
		return nil
	}
	urls, err := service.NormalizeURLs(raw)
	if err != nil {
		return err
	}
	*l = urls
	return nil
}

// AddRequest represents a POST /add request.
type AddRequest struct {
	URLs   URLList `json:"urls"`
	Filter *string `json:"filter,omitempty"`
}

// Params converts the request to ingestion parameters.
func (r AddRequest) Params() *service.AddParams {
	params := &service.AddParams{URLs: []string(r.URLs)}
	if r.Filter != nil {
		params.Filter = *r.Filter
	}
	return params
}

// AddResponse represents a POST /add response.
type AddResponse struct {
	TotalAdded int    `json:"total_added"`
	Failures   int    `json:"failures"`
	BatchID    string `json:"batch_id,omitempty"`
}

// NewAddResponse builds the response for an ingestion result.
func NewAddResponse(result service.AddResult) AddResponse {
	return AddResponse{
		TotalAdded: result.TotalAdded(),
		Failures:   result.Failures(),
		BatchID:    result.BatchID(),
	}
}

// ResetResponse represents a DELETE /reset-db response.
type ResetResponse struct {
	Success bool `json:"success"`
}

// IngestionError is one entry of the ingestion error log.
type IngestionError struct {
	URL        string           `json:"url"`
	Message    string           `json:"message"`
	Kind       string           `json:"kind"`
	BatchID    string           `json:"batch_id,omitempty"`
	OccurredAt jsonapi.DateTime `json:"occurred_at"`
}

// ErrorsResponse represents a GET /errors response.
type ErrorsResponse struct {
	Results []IngestionError `json:"results"`
}

// NewErrorsResponse builds the response for the ingestion error log.
func NewErrorsResponse(failures []catalog.IngestionError) ErrorsResponse {
	results := make([]IngestionError, len(failures))
	for i, f := range failures {
		results[i] = IngestionError{
			URL:        f.RepositoryURL(),
			Message:    f.Message(),
			Kind:       string(f.Kind()),
			BatchID:    f.BatchID(),
			OccurredAt: jsonapi.DateTime(f.OccurredAt()),
		}
	}
	return ErrorsResponse{Results: results}
}
