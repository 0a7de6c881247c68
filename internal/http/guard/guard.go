// Package guard закрывает раздел /dashboard от пользователей без активной
// подписки и проксирует остальные запросы во фронтенд.
package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/bookease/bookease-backend/internal/config"
	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/lib/sl"
)

const (
	// CookieName cookie с сессионным токеном, которую ставит фронтенд.
	CookieName = "bookease_token"

	SignInPath  = "/signin"
	ExpiredPath = "/?expired=true#pricing"
)

// Guard проверяет подписку через endpoint статуса.
type Guard struct {
	log       *slog.Logger
	client    *http.Client
	statusURL string
}

// New создает новый экземпляр Guard.
func New(log *slog.Logger, statusURL string, timeout time.Duration) *Guard {
	return &Guard{
		log:       log,
		client:    &http.Client{Timeout: timeout},
		statusURL: statusURL,
	}
}

// Handler собирает Guard и reverse proxy во фронтенд из конфигурации.
func Handler(log *slog.Logger, cfg config.Guard) (http.Handler, error) {
	const op = "guard.Handler"

	target, err := url.Parse(cfg.FrontendURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%s: invalid frontend url %q", op, cfg.FrontendURL)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("frontend proxy failed", slog.String("path", r.URL.Path), sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
	}

	return New(log, cfg.StatusURL, cfg.StatusTimeout).Middleware(proxy), nil
}

// Middleware пропускает запрос дальше только при активной подписке.
// Если статус узнать не удалось, запрос пропускается.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "guard.Middleware"
		log := g.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := tokenFrom(r)
		if token == "" {
			http.Redirect(w, r, SignInPath, http.StatusFound)
			return
		}

		subscribed, err := g.subscribed(r.Context(), token)
		if err != nil {
			log.Warn("status check failed, letting request through", sl.Err(err))
			next.ServeHTTP(w, r)
			return
		}
		if !subscribed {
			http.Redirect(w, r, ExpiredPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return middlewarectx.BearerToken(r)
}

type statusReply struct {
	OK         *bool `json:"ok"`
	Subscribed bool  `json:"subscribed"`
}

func (g *Guard) subscribed(ctx context.Context, token string) (bool, error) {
	const op = "guard.subscribed"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.statusURL, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var reply statusReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return false, fmt.Errorf("%s: decode status %d: %w", op, resp.StatusCode, err)
	}
	if reply.OK == nil {
		return false, fmt.Errorf("%s: status %d without ok field", op, resp.StatusCode)
	}
	return *reply.OK && reply.Subscribed, nil
}
