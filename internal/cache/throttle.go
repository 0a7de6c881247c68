package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const signInKeyPrefix = "signin_failures"

// SignInThrottle считает неудачные попытки входа по e-mail в окне window.
// Окно отсчитывается от первой неудачи.
type SignInThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewSignInThrottle создаёт ограничитель.
func NewSignInThrottle(c *Cache, maxAttempts int, window time.Duration) *SignInThrottle {
	return &SignInThrottle{
		client:      c.Db,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (t *SignInThrottle) key(email string) string {
	return fmt.Sprintf("%s:%s", signInKeyPrefix, email)
}

// Allowed сообщает, можно ли ещё пытаться войти.
func (t *SignInThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	const op = "cache.SignInThrottle.Allowed"
	n, err := t.client.Get(ctx, t.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("%s: %w", op, err)
	}
	return n < t.maxAttempts, nil
}

// RegisterFailure увеличивает счётчик неудач.
func (t *SignInThrottle) RegisterFailure(ctx context.Context, email string) error {
	const op = "cache.SignInThrottle.RegisterFailure"
	key := t.key(email)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (t *SignInThrottle) Reset(ctx context.Context, email string) error {
	const op = "cache.SignInThrottle.Reset"
	if err := t.client.Del(ctx, t.key(email)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
