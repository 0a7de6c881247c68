package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/storage"
)

const accountColumns = `id, name, phone_country_code, phone_number, email, password_hash,
	organisation_name, location, subscribed, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Name, &a.PhoneCountryCode, &a.PhoneNumber, &a.Email, &a.PasswordHash,
		&a.OrganisationName, &a.Location, &a.Subscribed, dbTime{&a.CreatedAt}, dbTime{&a.UpdatedAt}); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount сохраняет новый аккаунт и возвращает его ID.
// Пустой ID заменяется на сгенерированный UUID.
func (s *Storage) CreateAccount(ctx context.Context, a models.Account) (string, error) {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.PhoneCountryCode == "" {
		a.PhoneCountryCode = models.DefaultPhoneCountryCode
	}
	now := time.Now()

	query := s.rebind(`INSERT INTO accounts (id, name, phone_country_code, phone_number, email, password_hash,
			      organisation_name, location, subscribed, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, query,
		a.ID, a.Name, a.PhoneCountryCode, a.PhoneNumber, a.Email, a.PasswordHash,
		a.OrganisationName, a.Location, a.Subscribed, s.timeArg(now), s.timeArg(now))
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrAccountExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return a.ID, nil
}

// AccountByEmail возвращает аккаунт без истории подписок.
func (s *Storage) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.AccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := s.rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`)
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// EmailExists сообщает, занят ли e-mail.
func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.EmailExists"
	var exists bool
	query := s.rebind(`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = ?)`)
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// Account возвращает аккаунт вместе с историей подписок.
func (s *Storage) Account(ctx context.Context, accountID string) (*models.Account, error) {
	const op = "storage.Account"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := s.rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`)
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Subscriptions, err = s.subscriptions(ctx, s.DB, accountID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}
