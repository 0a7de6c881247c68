// Package services вычисляет статус подписки аккаунта, попутно помечая
// истёкшие подписки.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/metrics"
	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/storage"
)

// MsgUserNotFound аккаунт из токена не существует.
const MsgUserNotFound = "User not found"

// AccountRepository атомарное обновление аккаунта.
type AccountRepository interface {
	UpdateAccount(ctx context.Context, accountID string, fn storage.UpdateFunc) (*models.Account, error)
}

// EventPublisher публикует события подписки.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SubscriptionService статус подписки с ленивым истечением.
type SubscriptionService struct {
	log       *slog.Logger
	accounts  AccountRepository
	publisher EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(log *slog.Logger, accounts AccountRepository, publisher EventPublisher, m *metrics.Metrics) *SubscriptionService {
	return &SubscriptionService{
		log:       log,
		accounts:  accounts,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// SetClock подменяет источник текущего времени.
func (s *SubscriptionService) SetClock(now func() time.Time) {
	s.now = now
}

// Status ответ о статусе подписки. ActivePlan nil, если активных подписок нет.
type Status struct {
	Subscribed bool
	ActivePlan *models.ActivePlan
}

// GetStatus помечает просроченные подписки как expired, пересчитывает флаг
// subscribed и возвращает текущий план. Изменения сохраняются в той же
// атомарной операции, и только если что-то действительно изменилось.
func (s *SubscriptionService) GetStatus(ctx context.Context, accountID string) (*Status, error) {
	const op = "services.SubscriptionService.GetStatus"
	log := s.log.With(slog.String("op", op), slog.String("account_id", accountID))

	now := s.now()
	var expired []models.Subscription
	account, err := s.accounts.UpdateAccount(ctx, accountID, func(a *models.Account) (bool, error) {
		expired = a.ExpireOverdue(now)
		flagChanged := a.RecomputeSubscribed()
		return len(expired) > 0 || flagChanged, nil
	})
	if errors.Is(err, storage.ErrAccountNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		log.Error("failed to evaluate subscription", sl.Err(err))
		return nil, apperr.Internal("internal server error", err)
	}

	if len(expired) > 0 {
		log.Info("subscriptions expired", slog.Int("count", len(expired)))
		s.metrics.SubscriptionsExpired(len(expired))
		for _, sub := range expired {
			event := models.NewSubscriptionEvent(account, sub)
			if err := s.publisher.Publish(ctx, models.EventSubscriptionExpired, event); err != nil {
				log.Error("failed to publish expiry event", sl.Err(err), slog.Int64("subscription_id", sub.ID))
			}
		}
	}

	status := &Status{Subscribed: account.Subscribed}
	if cur := account.CurrentSubscription(); cur != nil {
		status.ActivePlan = &models.ActivePlan{
			PackageType:  cur.PackageType,
			BillingCycle: cur.BillingCycle,
			EndDate:      cur.EndDate,
			DaysLeft:     cur.DaysLeft(now),
		}
	}
	return status, nil
}
