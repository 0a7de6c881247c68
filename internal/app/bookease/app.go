package bookease

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/bookease/bookease-backend/internal/cache"
	"github.com/bookease/bookease-backend/internal/config"
	"github.com/bookease/bookease-backend/internal/http/guard"
	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/lib/jwt"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/metrics"
	"github.com/bookease/bookease-backend/internal/migrations"
	"github.com/bookease/bookease-backend/internal/paymentprovider"
	"github.com/bookease/bookease-backend/internal/rabbitmq"
	authservice "github.com/bookease/bookease-backend/internal/services/auth"
	paymentservice "github.com/bookease/bookease-backend/internal/services/payment"
	subservice "github.com/bookease/bookease-backend/internal/services/subscription"
	"github.com/bookease/bookease-backend/internal/storage/repository"
)

// App HTTP API со всеми ресурсами процесса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// Publisher публикует события подписки.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// New подключает хранилище, Redis и RabbitMQ (последние два необязательны)
// и собирает HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(ctx, db.DB, db.Driver()); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var throttle authservice.Throttle
	if cfg.RedisConnection.AddressRedis != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		throttle = cache.NewSignInThrottle(app.cache, cfg.MaxAttempts, cfg.Window)
	} else {
		logger.Warn("redis is not configured, sign-in throttle disabled")
	}

	var publisher Publisher = rabbitmq.NewLogPublisher(logger)
	if cfg.RabbitMQ.URL != "" {
		app.amqp, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(app.amqp, rabbitmq.NotificationQueues())
		if err != nil {
			app.close()
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch, rabbitmq.ExchangeNotifications)
	} else {
		logger.Warn("rabbitmq is not configured, events are only logged")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	jwtMaker, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	if err != nil {
		app.close()
		return nil, err
	}
	gateway := paymentprovider.NewClient(cfg.KeyID, cfg.KeySecret, cfg.APIURL, cfg.RequestTimeout)

	deps := Deps{
		Logger:              logger,
		AuthService:         authservice.NewAuthService(logger, db, jwtMaker, throttle, m),
		PaymentService:      paymentservice.New(logger, gateway, db, publisher, m),
		SubscriptionService: subservice.NewSubscriptionService(logger, db, publisher, m),
		Metrics:             m,
		Gatherer:            registry,
		Limiter:             middlewarectx.NewIPLimiter(cfg.RPS, cfg.Burst),
		DB:                  db.DB,
		ClientURL:           cfg.ClientURL,
	}
	if cfg.FrontendURL != "" {
		deps.Dashboard, err = guard.Handler(logger, cfg.Guard)
		if err != nil {
			app.close()
			return nil, err
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
