// Package services периодически завершает просроченные подписки, не дожидаясь
// запроса статуса от пользователя, чтобы письма об окончании уходили вовремя.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookease/bookease-backend/internal/lib/sl"
	subservice "github.com/bookease/bookease-backend/internal/services/subscription"
)

// DefaultInterval период обхода по умолчанию.
const DefaultInterval = time.Hour

// OverdueRepository поиск аккаунтов с просроченными активными подписками.
type OverdueRepository interface {
	OverdueAccounts(ctx context.Context, now time.Time) ([]string, error)
}

// StatusRefresher пересчитывает статус аккаунта: истекает просроченные
// подписки и публикует события.
type StatusRefresher interface {
	GetStatus(ctx context.Context, accountID string) (*subservice.Status, error)
}

// SchedulerService периодически истекает просроченные подписки.
type SchedulerService struct {
	repo     OverdueRepository
	status   StatusRefresher
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
// interval <= 0 заменяется на DefaultInterval.
func NewSchedulerService(log *slog.Logger, repo OverdueRepository, status StatusRefresher, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &SchedulerService{
		repo:     repo,
		status:   status,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run выполняет обход сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep обрабатывает все аккаунты с просроченными подписками и возвращает
// число успешно обработанных. Ошибка одного аккаунта не останавливает обход.
func (s *SchedulerService) Sweep(ctx context.Context) int {
	const op = "services.SchedulerService.Sweep"
	log := s.log.With(slog.String("op", op))

	ids, err := s.repo.OverdueAccounts(ctx, s.now())
	if err != nil {
		log.Error("failed to find overdue accounts", sl.Err(err))
		return 0
	}
	if len(ids) == 0 {
		log.Debug("no overdue subscriptions found")
		return 0
	}

	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.status.GetStatus(ctx, id); err != nil {
			log.Error("failed to expire subscriptions", slog.String("account_id", id), sl.Err(err))
			continue
		}
		done++
	}
	log.Info("overdue subscriptions processed", slog.Int("found", len(ids)), slog.Int("processed", done))
	return done
}
