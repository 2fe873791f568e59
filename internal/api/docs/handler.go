package docs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const specURL = "/docs/swagger.yaml"

// uiHandler serves Swagger UI pointed at the interview API spec
func uiHandler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL(specURL),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)
}

// RegisterRoutes mounts Swagger UI and the spec file under /docs.
// Nothing is mounted when specFile is empty.
func RegisterRoutes(r chi.Router, specFile string) {
	if specFile == "" {
		return
	}

	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})
	r.Get(specURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, specFile)
	})
	r.Get("/docs/*", uiHandler())
}
