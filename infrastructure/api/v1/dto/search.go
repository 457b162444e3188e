// Package dto holds the request and response bodies of the HTTP API.
package dto

// DefaultSearchLimit is the number of results requested when limit is absent.
const DefaultSearchLimit = 10

// GitSearchRequest represents a POST /git-search request.
type GitSearchRequest struct {
	URL   string  `json:"url"`
	Query *string `json:"query,omitempty"`
	Limit *int    `json:"limit,omitempty"`
}

// EffectiveLimit returns the requested limit or DefaultSearchLimit.
func (r GitSearchRequest) EffectiveLimit() int {
	if r.Limit == nil || *r.Limit <= 0 {
		return DefaultSearchLimit
	}
	return *r.Limit
}

// GitSearchResponse represents a POST /git-search response.
type GitSearchResponse struct {
	Results []string `json:"results"`
}
