// Package verify реализует HTTP-обработчик подтверждения оплаты.
package verify

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

// Request данные платежа. Поля razorpay_* принимаются как синонимы, их
// отдаёт платёжный виджет без переименования.
type Request struct {
	OrderID           string              `json:"orderId" validate:"max=64"`
	PaymentID         string              `json:"paymentId" validate:"max=64"`
	Signature         string              `json:"signature" validate:"max=128"`
	RazorpayOrderID   string              `json:"razorpay_order_id" validate:"max=64"`
	RazorpayPaymentID string              `json:"razorpay_payment_id" validate:"max=64"`
	RazorpaySignature string              `json:"razorpay_signature" validate:"max=128"`
	PackageType       models.PackageType  `json:"packageType" validate:"max=32"`
	BillingCycle      models.BillingCycle `json:"billingCycle" validate:"max=32"`
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Response активированная подписка.
type Response struct {
	response.Response
	Message      string                `json:"message" example:"Payment verified and subscription activated"`
	Subscription models.Subscription   `json:"subscription"`
	User         models.AccountSummary `json:"user"`
}

// Service проверка платежа.
type Service interface {
	Verify(ctx context.Context, in payment.VerifyInput) (*payment.Activation, error)
}

// Handler обрабатывает POST /api/payment/verify.
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
// @Summary Подтверждение оплаты
// @Description Проверяет подпись платежа и активирует подписку. Повторная отправка того же платежа возвращает уже созданную подписку.
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Данные платежа"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или план"
// @Failure 401 {object} response.ErrorResponse "Нет токена или он недействителен"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payment/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"
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

	act, err := h.service.Verify(r.Context(), payment.VerifyInput{
		AccountID:    accountID,
		OrderID:      firstNonEmpty(req.OrderID, req.RazorpayOrderID),
		PaymentID:    firstNonEmpty(req.PaymentID, req.RazorpayPaymentID),
		Signature:    firstNonEmpty(req.Signature, req.RazorpaySignature),
		PackageType:  req.PackageType,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, Response{
		Response:     response.OK(),
		Message:      payment.MsgActivated,
		Subscription: act.Subscription,
		User:         act.Account,
	})
}
