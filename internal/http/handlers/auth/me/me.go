// Package me возвращает утверждения текущего сессионного токена.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
	"github.com/bookease/bookease-backend/internal/http/response"
)

// Identity данные из токена.
type Identity struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

// Response ответ GET /api/auth/me.
type Response struct {
	response.Response
	User Identity `json:"user"`
}

// Handler обрабатывает GET /api/auth/me. Работает за JWTMiddleware.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Нет токена или он недействителен"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, _ := middlewarectx.AccountIDFrom(r.Context())
	render.JSON(w, r, Response{
		Response: response.OK(),
		User: Identity{
			AccountID: id,
			Email:     middlewarectx.EmailFrom(r.Context()),
		},
	})
}
