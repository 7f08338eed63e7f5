package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// authService checks the static API token. An empty token disables auth.
type authService struct {
	tokenHash [sha256.Size]byte
	enabled   bool
}

func newAuthService(token string) *authService {
	if token == "" {
		return &authService{}
	}
	return &authService{tokenHash: sha256.Sum256([]byte(token)), enabled: true}
}

func (a *authService) validAuthorization(header string) bool {
	provided, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || provided == "" {
		return false
	}

	// Compare fixed-size digests.
	providedHash := sha256.Sum256([]byte(provided))
	return subtle.ConstantTimeCompare(providedHash[:], a.tokenHash[:]) == 1
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.enabled || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if !s.auth.validAuthorization(r.Header.Get("Authorization")) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="threedcost"`)
			writeError(w, http.StatusUnauthorized, "missing or invalid API token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
