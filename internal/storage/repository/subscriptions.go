package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/storage"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Storage) subscriptions(ctx context.Context, q querier, accountID string) ([]models.Subscription, error) {
	query := s.rebind(`SELECT id, account_id, package_type, package_price, billing_cycle, duration_days,
			      start_date, end_date, order_id, payment_id, status, created_at
			  FROM subscriptions
			  WHERE account_id = ?
			  ORDER BY id`)
	rows, err := q.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err = rows.Scan(&sub.ID, &sub.AccountID, &sub.PackageType, &sub.PackagePrice, &sub.BillingCycle,
			&sub.DurationDays, dbTime{&sub.StartDate}, dbTime{&sub.EndDate}, &sub.OrderID, &sub.PaymentID,
			&sub.Status, dbTime{&sub.CreatedAt}); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateAccount атомарно читает аккаунт с историей подписок, применяет fn и
// сохраняет результат. В PostgreSQL строка аккаунта блокируется (FOR UPDATE),
// поэтому параллельные обновления одного аккаунта выполняются по очереди.
//
// Сохраняются: новые подписки (ID == 0), смена статуса существующих и флаг
// subscribed. Если fn вернула changed == false, транзакция откатывается.
func (s *Storage) UpdateAccount(ctx context.Context, accountID string, fn storage.UpdateFunc) (*models.Account, error) {
	const op = "storage.UpdateAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	if s.driver == DriverPostgres {
		query += ` FOR UPDATE`
	}
	a, err := scanAccount(tx.QueryRowContext(ctx, s.rebind(query), accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Subscriptions, err = s.subscriptions(ctx, tx, accountID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	statuses := make(map[int64]models.SubscriptionStatus, len(a.Subscriptions))
	for _, sub := range a.Subscriptions {
		statuses[sub.ID] = sub.Status
	}
	subscribed := a.Subscribed

	changed, err := fn(a)
	if err != nil {
		return nil, err
	}
	if !changed {
		return a, nil
	}

	now := time.Now()
	for i := range a.Subscriptions {
		sub := &a.Subscriptions[i]
		if sub.ID == 0 {
			if err = s.insertSubscription(ctx, tx, a.ID, sub, now); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			continue
		}
		if prev, ok := statuses[sub.ID]; ok && prev != sub.Status {
			if _, err = tx.ExecContext(ctx, s.rebind(`UPDATE subscriptions SET status = ? WHERE id = ?`),
				string(sub.Status), sub.ID); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	if a.Subscribed != subscribed || len(a.Subscriptions) != len(statuses) {
		a.UpdatedAt = now.UTC()
		if _, err = tx.ExecContext(ctx, s.rebind(`UPDATE accounts SET subscribed = ?, updated_at = ? WHERE id = ?`),
			a.Subscribed, s.timeArg(now), a.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (s *Storage) insertSubscription(ctx context.Context, tx *sql.Tx, accountID string, sub *models.Subscription, now time.Time) error {
	query := s.rebind(`INSERT INTO subscriptions (account_id, package_type, package_price, billing_cycle,
			      duration_days, start_date, end_date, order_id, payment_id, status, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  RETURNING id`)
	err := tx.QueryRowContext(ctx, query,
		accountID, string(sub.PackageType), sub.PackagePrice, string(sub.BillingCycle), sub.DurationDays,
		s.timeArg(sub.StartDate), s.timeArg(sub.EndDate), sub.OrderID, sub.PaymentID, string(sub.Status),
		s.timeArg(now)).Scan(&sub.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrSubscriptionExists
		}
		return err
	}
	sub.AccountID = accountID
	sub.CreatedAt = now.UTC()
	return nil
}

// OverdueAccounts возвращает ID аккаунтов, у которых есть активная подписка
// с датой окончания раньше now. Даты сравниваются в Go: в SQLite они
// хранятся строками переменной длины.
func (s *Storage) OverdueAccounts(ctx context.Context, now time.Time) ([]string, error) {
	const op = "storage.OverdueAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(`SELECT account_id, end_date FROM subscriptions
			  WHERE status = ? ORDER BY account_id`), string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var (
			accountID string
			end       time.Time
		)
		if err = rows.Scan(&accountID, dbTime{&end}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !end.Before(now) {
			continue
		}
		if n := len(ids); n == 0 || ids[n-1] != accountID {
			ids = append(ids, accountID)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
