// Package signin реализует HTTP-обработчик входа по e-mail и паролю.
package signin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/bookease/bookease-backend/internal/http/response"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/models"
	services "github.com/bookease/bookease-backend/internal/services/auth"
)

const maxBodyBytes = 1 << 16

// Request учётные данные.
type Request struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

// Response успешный вход.
type Response struct {
	response.Response
	Token string                `json:"token"`
	User  models.AccountSummary `json:"user"`
}

// Service вход в аккаунт.
type Service interface {
	Login(ctx context.Context, email, password string) (*services.Result, error)
}

// Handler обрабатывает POST /api/auth/signin.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет e-mail и пароль, возвращает новый сессионный токен.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учётные данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Не заполнены поля"
// @Failure 401 {object} response.ErrorResponse "Неверный e-mail или пароль"
// @Failure 429 {object} response.ErrorResponse "Слишком много неудачных попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/signin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signin"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		response.RenderError(w, r, log, err)
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("login success", slog.String("account_id", res.Account.ID))
	render.JSON(w, r, Response{
		Response: response.OK(),
		Token:    res.Token,
		User:     res.Account,
	})
}
