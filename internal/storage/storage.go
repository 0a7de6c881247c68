// Package storage объявляет ошибки уровня хранилища, общие для всех драйверов.
package storage

import (
	"errors"

	"github.com/bookease/bookease-backend/internal/models"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrSubscriptionExists = errors.New("subscription for this payment already exists")
)

// UpdateFunc изменяет аккаунт в памяти и сообщает, нужно ли сохранять изменения.
type UpdateFunc func(a *models.Account) (changed bool, err error)
