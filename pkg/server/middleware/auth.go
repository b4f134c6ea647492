package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKeyHeader is the HTTP header carrying the client's API key.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware rejects requests whose X-API-Key header does not match one
// of the configured keys. An empty key list disables authentication
// entirely. Key comparison is constant time.
func AuthMiddleware(keys []string) func(http.Handler) http.Handler {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keySet) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if !keyMatches(keySet, presented) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"type":    "unauthorized",
						"message": "missing or invalid API key",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keyMatches checks the presented key against every configured key rather
// than probing the set, keeping the comparison constant time per key.
func keyMatches(keySet map[string]struct{}, presented string) bool {
	if presented == "" {
		return false
	}
	matched := false
	for key := range keySet {
		if subtle.ConstantTimeCompare([]byte(key), []byte(presented)) == 1 {
			matched = true
		}
	}
	return matched
}
