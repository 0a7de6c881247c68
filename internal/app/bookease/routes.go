// Package bookease собирает HTTP API BookEase.
package bookease

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация Swagger-документации.
	_ "github.com/bookease/bookease-backend/docs"
	"github.com/bookease/bookease-backend/internal/http/handlers/auth/me"
	"github.com/bookease/bookease-backend/internal/http/handlers/auth/signin"
	"github.com/bookease/bookease-backend/internal/http/handlers/auth/signup"
	"github.com/bookease/bookease-backend/internal/http/handlers/payment/createorder"
	"github.com/bookease/bookease-backend/internal/http/handlers/payment/verify"
	"github.com/bookease/bookease-backend/internal/http/handlers/subscription/health"
	"github.com/bookease/bookease-backend/internal/http/handlers/subscription/status"
	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/metrics"
	authservice "github.com/bookease/bookease-backend/internal/services/auth"
	paymentservice "github.com/bookease/bookease-backend/internal/services/payment"
	subservice "github.com/bookease/bookease-backend/internal/services/subscription"
)

// Deps зависимости маршрутов.
type Deps struct {
	Logger              *slog.Logger
	AuthService         *authservice.AuthService
	PaymentService      *paymentservice.PaymentService
	SubscriptionService *subservice.SubscriptionService
	Metrics             *metrics.Metrics
	Gatherer            prometheus.Gatherer
	Limiter             *middlewarectx.IPLimiter
	DB                  health.Pinger
	ClientURL           string
	// Dashboard защищённый фронтенд; nil, если guard не настроен.
	Dashboard http.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.SecureHeaders,
		middlewarectx.CORS(d.ClientURL),
		middlewarectx.Metrics(d.Metrics),
	)

	r.Get("/health", health.New(logger, d.DB).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, d.Limiter))

		// Открытые конечные точки
		r.Post("/auth/signup", signup.New(logger, d.AuthService).ServeHTTP)
		r.Post("/auth/signin", signin.New(logger, d.AuthService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.AuthService, logger))

			statusHandler := status.New(logger, d.SubscriptionService)
			r.Get("/auth/me", me.New().ServeHTTP)
			r.Get("/auth/subscription", statusHandler.ServeHTTP)
			r.Get("/payment/subscription", statusHandler.ServeHTTP)
			r.Post("/payment/create-order", createorder.New(logger, d.PaymentService).ServeHTTP)
			r.Post("/payment/verify", verify.New(logger, d.PaymentService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	if d.Dashboard != nil {
		r.Handle("/dashboard", d.Dashboard)
		r.Handle("/dashboard/*", d.Dashboard)
	}
}
