package middlewarectx

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS разрешает запросы только с clientURL, вместе с cookie и заголовком Authorization.
func CORS(clientURL string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}
