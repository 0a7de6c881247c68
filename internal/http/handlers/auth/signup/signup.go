// Package signup реализует HTTP-обработчик регистрации аккаунта.
package signup

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

const maxBodyBytes = 1 << 20

// Request форма регистрации. Обязательность полей и совпадение паролей
// проверяет сервис; здесь ограничивается только длина.
type Request struct {
	Name             string             `json:"name" validate:"max=100"`
	PhoneCountryCode string             `json:"phoneCountryCode" validate:"max=8"`
	PhoneNumber      models.PhoneNumber `json:"phoneNumber" validate:"max=20"`
	Email            string             `json:"email" validate:"max=254"`
	Password         string             `json:"password" validate:"max=72"`
	ConfirmPassword  string             `json:"confirmPassword" validate:"max=72"`
	OrganisationName string             `json:"organisationName" validate:"max=200"`
	Location         string             `json:"location" validate:"max=200"`
}

// Response успешная регистрация.
type Response struct {
	response.Response
	Token string                `json:"token"`
	User  models.AccountSummary `json:"user"`
}

// Service регистрация аккаунта.
type Service interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Result, error)
}

// Handler обрабатывает POST /api/auth/signup.
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
// @Summary Регистрация
// @Description Создаёт аккаунт и возвращает сессионный токен.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные аккаунта"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 409 {object} response.ErrorResponse "E-mail уже занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"
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

	res, err := h.service.Register(r.Context(), services.RegisterInput{
		Name:             req.Name,
		PhoneCountryCode: req.PhoneCountryCode,
		PhoneNumber:      string(req.PhoneNumber),
		Email:            req.Email,
		Password:         req.Password,
		ConfirmPassword:  req.ConfirmPassword,
		OrganisationName: req.OrganisationName,
		Location:         req.Location,
	})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("account created", slog.String("account_id", res.Account.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response: response.OK(),
		Token:    res.Token,
		User:     res.Account,
	})
}
