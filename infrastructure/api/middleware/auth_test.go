package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireToken_BearerHeader(t *testing.T) {
	handler := RequireToken(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/add", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("valid bearer: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireToken_APIKeyHeader(t *testing.T) {
	handler := RequireToken(NewAuthConfigWithKeys([]string{"one", "two"}))(okHandler())

	req := httptest.NewRequest(http.MethodDelete, "/reset-db", nil)
	req.Header.Set("X-API-KEY", "two")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("valid X-API-KEY: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireToken_Rejected(t *testing.T) {
	handler := RequireToken(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"missing", "", ""},
		{"wrong bearer", "Authorization", "Bearer wrong"},
		{"wrong scheme", "Authorization", "Basic secret"},
		{"bare token", "Authorization", "secret"},
		{"wrong api key", "X-API-KEY", "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/list", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/vnd.api+json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestRequireToken_NoTokensRejectsAll(t *testing.T) {
	config := NewAuthConfigWithKeys([]string{"", "  "})
	if config.Enabled() {
		t.Fatal("blank tokens should not enable auth")
	}
	handler := RequireToken(config)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/list", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer  abc ")
	req.Header.Set("X-API-KEY", "ignored")

	if got := TokenFromRequest(req); got != "abc" {
		t.Errorf("TokenFromRequest() = %q, want %q", got, "abc")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-KEY", "key")
	if got := TokenFromRequest(req); got != "key" {
		t.Errorf("TokenFromRequest() = %q, want %q", got, "key")
	}
}
