// Package middlewarectx содержит HTTP middleware BookEase: проверку
// сессионного токена, ограничение частоты запросов, CORS, защитные
// заголовки и сбор метрик.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/bookease/bookease-backend/internal/http/response"
	"github.com/bookease/bookease-backend/internal/lib/jwt"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// AccountID ключ идентификатора аккаунта в контексте.
	AccountID Key = "accountId"
	// Email ключ e-mail аккаунта в контексте.
	Email Key = "email"
)

// TokenParser проверяет сессионный токен.
type TokenParser interface {
	Identity(token string) (*jwt.Claims, error)
}

// JWTMiddleware проверяет токен из заголовка Authorization: Bearer <token>
// и кладёт accountId и email в контекст. Иначе отвечает 401.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, err := parser.Identity(BearerToken(r))
			if err != nil {
				response.RenderError(w, r, log, err)
				return
			}
			ctx := context.WithValue(r.Context(), AccountID, claims.AccountID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken достаёт токен из заголовка Authorization. Пустая строка, если
// заголовка нет или схема не Bearer.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// AccountIDFrom возвращает идентификатор аккаунта, положенный JWTMiddleware.
func AccountIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountID).(string)
	return id, ok && id != ""
}

// EmailFrom возвращает e-mail аккаунта, положенный JWTMiddleware.
func EmailFrom(ctx context.Context) string {
	email, _ := ctx.Value(Email).(string)
	return email
}
