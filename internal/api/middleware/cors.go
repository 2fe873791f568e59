package middleware

import (
	"net/http"
	"slices"
	"strings"
)

var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = strings.Join([]string{
		"Accept", "Content-Type", "X-Request-ID", UserIDHeader,
	}, ", ")
)

// CORS allows the listed origins; "*" allows any
func CORS(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowAny := slices.Contains(allowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAny || slices.Contains(allowedOrigins, origin)) {
				h := w.Header()
				if allowAny {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
