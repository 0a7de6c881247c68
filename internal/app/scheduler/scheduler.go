// Package scheduler собирает фоновый процесс, который завершает просроченные
// подписки и публикует события об их окончании.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/bookease/bookease-backend/internal/config"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/migrations"
	"github.com/bookease/bookease-backend/internal/rabbitmq"
	schedulerservice "github.com/bookease/bookease-backend/internal/services/scheduler"
	subservice "github.com/bookease/bookease-backend/internal/services/subscription"
	"github.com/bookease/bookease-backend/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	conn             *amqp.Connection
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика. Без RabbitMQ события
// только пишутся в лог.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(ctx, db.DB, db.Driver()); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{db: db, logger: logger}

	var publisher subservice.EventPublisher = rabbitmq.NewLogPublisher(logger)
	if cfg.RabbitMQ.URL != "" {
		app.conn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(app.conn, rabbitmq.NotificationQueues())
		if err != nil {
			app.close()
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch, rabbitmq.ExchangeNotifications)
	}

	status := subservice.NewSubscriptionService(logger, db, publisher, nil)
	app.schedulerService = schedulerservice.NewSchedulerService(logger, db, status, cfg.Scheduler.Interval)
	return app, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)
	a.logger.Info("shutting down scheduler service")
	a.close()
	return nil
}

func (a *App) close() {
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
