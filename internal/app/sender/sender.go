// Package sender собирает notification-sender: потребителей очередей
// событий подписки, которые отправляют письма через SMTP.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/bookease/bookease-backend/internal/config"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/lib/smtp"
	"github.com/bookease/bookease-backend/internal/rabbitmq"
	senderservice "github.com/bookease/bookease-backend/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

// Handlers сопоставляет очереди и обработчики.
func (a *App) Handlers() map[string]rabbitmq.Handler {
	return map[string]rabbitmq.Handler{
		rabbitmq.QueueSubscriptionActivated: a.senderService.SendActivationReceipt,
		rabbitmq.QueueSubscriptionExpired:   a.senderService.SendExpiryNotice,
	}
}

func (a *App) Run(ctx context.Context) error {
	for queue, handler := range a.Handlers() {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, queue, handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", queue), sl.Err(err))
			a.close()
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
