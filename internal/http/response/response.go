// Package response содержит общие JSON-ответы HTTP-обработчиков. Каждый ответ
// несёт поле ok; при ошибке добавляется поле error.
package response

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/bookease/bookease-backend/internal/lib/apperr"
	"github.com/bookease/bookease-backend/internal/lib/sl"
)

// MsgInternal ответ на любую непредвиденную ошибку.
const MsgInternal = "internal server error"

// Response базовая часть любого ответа.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ErrorResponse ответ с ошибкой, для Swagger-документации.
type ErrorResponse struct {
	OK    bool   `json:"ok" example:"false"`
	Error string `json:"error" example:"Invalid or expired token"`
}

// OK успешный ответ.
func OK() Response {
	return Response{OK: true}
}

// Error ответ с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{OK: false, Error: msg}
}

// ValidationError собирает нарушения валидации в одно сообщение.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(errsMsgs, ", "))
}

// RenderError выбирает код ответа по виду ошибки. Прикладные ошибки
// отдаются клиенту с их сообщением, остальные логируются и скрываются.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Error("unexpected error", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Error(MsgInternal))
		return
	}

	code := e.Kind.HTTPCode()
	if code >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("kind", e.Kind.String()), sl.Err(err))
	} else {
		log.Info("request rejected", slog.String("kind", e.Kind.String()), slog.String("reason", e.Message))
	}
	msg := e.Message
	if e.Kind == apperr.KindInternal {
		msg = MsgInternal
	}
	render.Status(r, code)
	render.JSON(w, r, Error(msg))
}
