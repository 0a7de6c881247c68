// Package jwt выпускает и проверяет сессионные токены BookEase (HS256).
//
// Токен содержит идентификатор аккаунта и e-mail, срок жизни задаётся
// конфигурацией (по умолчанию 7 дней). Токены не хранятся на сервере.
package jwt

import (
	"errors"
	"time"
)

// DefaultTTL срок жизни токена по умолчанию.
const DefaultTTL = 7 * 24 * time.Hour

// ErrEmptySecret возвращается при попытке создать Maker без секрета.
var ErrEmptySecret = errors.New("jwt secret is empty")

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateToken(accountID, email string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует Maker с общим для процесса секретом.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl. Пустой секрет недопустим; ttl <= 0 заменяется на DefaultTTL.
func NewJWTMaker(secretKey string, ttl time.Duration) (*MakerImpl, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}, nil
}
