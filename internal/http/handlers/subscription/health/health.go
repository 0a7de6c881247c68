// Package health реализует проверку живости сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/bookease/bookease-backend/internal/http/response"
	"github.com/bookease/bookease-backend/internal/lib/sl"
)

// Response ответ проверки.
type Response struct {
	response.Response
	Status string `json:"status" example:"ok"`
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler обрабатывает GET /health.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создает новый экземпляр Handler. db может быть nil, тогда хранилище
// не проверяется.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{log: log, db: db}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Error("storage ping failed", sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, Response{Status: "unavailable"})
			return
		}
	}
	render.JSON(w, r, Response{Response: response.OK(), Status: "ok"})
}
