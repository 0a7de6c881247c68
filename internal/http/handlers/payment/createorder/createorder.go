// Package createorder реализует HTTP-обработчик создания заказа на оплату плана.
package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/http/response"
	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/lib/sl"
	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/services/payment"
)

// Request выбранный план.
type Request struct {
	PackageType  models.PackageType  `json:"packageType" validate:"max=32" example:"Growth"`
	BillingCycle models.BillingCycle `json:"billingCycle" validate:"max=32" example:"monthly"`
}

// Response параметры заказа для платёжного виджета.
type Response struct {
	response.Response
	OrderID      string              `json:"orderId" example:"order_Nx1"`
	Amount       int64               `json:"amount" example:"79900"`
	Currency     string              `json:"currency" example:"INR"`
	KeyID        string              `json:"keyId"`
	PackageType  models.PackageType  `json:"packageType"`
	BillingCycle models.BillingCycle `json:"billingCycle"`
}

// Service создание заказа.
type Service interface {
	CreateOrder(ctx context.Context, accountID string, p models.PackageType, c models.BillingCycle) (*payment.Order, error)
}

// Handler обрабатывает POST /api/payment/create-order.
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
// @Summary Создание заказа
// @Description Создаёт заказ в платёжном шлюзе на сумму выбранного плана.
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "План и период оплаты"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неизвестный план или период"
// @Failure 401 {object} response.ErrorResponse "Нет токена или он недействителен"
// @Failure 500 {object} response.ErrorResponse "Шлюз не создал заказ"
// @Router /payment/create-order [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.createorder"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accountID, ok := middlewarectx.AccountIDFrom(r.Context())
	if !ok {
		response.RenderError(w, r, log, apperr.Auth("Invalid or expired token"))
		return
	}
	log = log.With(slog.String("account_id", accountID))

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		response.RenderError(w, r, log, err)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), accountID, req.PackageType, req.BillingCycle)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("order created", slog.String("order_id", order.OrderID), slog.Int64("amount", order.Amount))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response:     response.OK(),
		OrderID:      order.OrderID,
		Amount:       order.Amount,
		Currency:     order.Currency,
		KeyID:        order.KeyID,
		PackageType:  order.PackageType,
		BillingCycle: order.BillingCycle,
	})
}
