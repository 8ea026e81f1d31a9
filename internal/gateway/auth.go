package gateway

import (
	"errors"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// exemptPaths are routes that bypass authentication.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// AuthConfig selects between no auth, a static API key allow-list, and
// HMAC-signed JWT bearer tokens. At most one of APIKeys or JWTSecret
// should be set.
type AuthConfig struct {
	APIKeys   []string
	JWTSecret []byte
}

// Middleware returns an auth middleware built from cfg. An empty cfg
// disables authentication (pass-through), matching a local/dev deployment.
func Middleware(cfg AuthConfig) func(http.Handler) http.Handler {
	if len(cfg.JWTSecret) > 0 {
		return jwtAuthMiddleware(cfg.JWTSecret)
	}
	return bearerAuthMiddleware(cfg.APIKeys)
}

// bearerAuthMiddleware validates a static Bearer token against an
// allow-list. If apiKeys is empty, authentication is disabled.
func bearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, classifyResponseDTO{Status: "error", ErrorMessage: "missing or malformed authorization header"})
				return
			}
			if _, ok := validKeys[token]; !ok {
				writeJSON(w, http.StatusUnauthorized, classifyResponseDTO{Status: "error", ErrorMessage: "invalid api key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// jwtAuthMiddleware validates an HMAC-signed Bearer JWT.
func jwtAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, classifyResponseDTO{Status: "error", ErrorMessage: "missing or malformed authorization header"})
				return
			}

			_, err := jwtlib.Parse(token, func(t *jwtlib.Token) (any, error) {
				if t.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
					return nil, errUnexpectedSigningMethod
				}
				return secret, nil
			})
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, classifyResponseDTO{Status: "error", ErrorMessage: "invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}
