// Package status реализует HTTP-обработчик статуса подписки.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/http/response"
	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/models"
	services "github.com/bookease/bookease-backend/internal/services/subscription"
)

// Response статус подписки. ActivePlan равен null, если активной подписки нет.
type Response struct {
	response.Response
	Subscribed bool               `json:"subscribed"`
	ActivePlan *models.ActivePlan `json:"activePlan"`
}

// Service чтение статуса подписки.
type Service interface {
	GetStatus(ctx context.Context, accountID string) (*services.Status, error)
}

// Handler обрабатывает GET /api/auth/subscription и GET /api/payment/subscription.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Description Завершает просроченные подписки и возвращает текущий план.
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Нет токена или он недействителен"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/subscription [get]
// @Router /payment/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accountID, ok := middlewarectx.AccountIDFrom(r.Context())
	if !ok {
		response.RenderError(w, r, log, apperr.Auth("Invalid or expired token"))
		return
	}

	st, err := h.service.GetStatus(r.Context(), accountID)
	if err != nil {
		response.RenderError(w, r, log.With(slog.String("account_id", accountID)), err)
		return
	}

	render.JSON(w, r, Response{
		Response:   response.OK(),
		Subscribed: st.Subscribed,
		ActivePlan: st.ActivePlan,
	})
}
