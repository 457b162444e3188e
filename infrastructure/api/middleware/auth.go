package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthConfig holds the tokens accepted by the API.
type AuthConfig struct {
	tokens [][]byte
}

// NewAuthConfigWithKeys creates an AuthConfig from tokens. Blank tokens are
// ignored.
func NewAuthConfigWithKeys(tokens []string) AuthConfig {
	cfg := AuthConfig{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			cfg.tokens = append(cfg.tokens, []byte(t))
		}
	}
	return cfg
}

// Enabled returns true if at least one token is configured.
func (c AuthConfig) Enabled() bool { return len(c.tokens) > 0 }

// Valid reports whether token matches a configured token.
func (c AuthConfig) Valid(token string) bool {
	candidate := []byte(token)
	ok := false
	for _, t := range c.tokens {
		if subtle.ConstantTimeCompare(t, candidate) == 1 {
			ok = true
		}
	}
	return ok
}

// TokenFromRequest extracts the credential from an "Authorization: Bearer"
// header or, failing that, from X-API-KEY.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.Header.Get("X-API-KEY")
}

// RequireToken returns a middleware that rejects requests without a valid
// token. With no tokens configured every request is rejected.
func RequireToken(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" || !config.Valid(token) {
				WriteError(w, r, NewAuthenticationError("invalid or missing token"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
