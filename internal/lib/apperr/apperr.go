// Package apperr описывает прикладные ошибки BookEase. Каждая ошибка несёт
// вид (Kind), по которому HTTP-слой выбирает код ответа, и сообщение,
// безопасное для показа клиенту. Причина сохраняется со стеком через pkg/errors.
package apperr

import (
	stderrors "errors"
	"net/http"

	"github.com/pkg/errors"
)

// Kind вид прикладной ошибки.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindVerification
	KindRateLimit
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindVerification:
		return "verification"
	case KindRateLimit:
		return "rate_limit"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// HTTPCode код ответа для вида ошибки.
func (k Kind) HTTPCode() int {
	switch k {
	case KindValidation, KindVerification:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error прикладная ошибка.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, msg string, cause error) error {
	return errors.WithStack(&Error{Kind: kind, Message: msg, cause: cause})
}

// Validation ошибка входных данных (400).
func Validation(msg string) error { return newError(KindValidation, msg, nil) }

// Conflict нарушение уникальности (409).
func Conflict(msg string) error { return newError(KindConflict, msg, nil) }

// Auth ошибка аутентификации (401).
func Auth(msg string) error { return newError(KindAuth, msg, nil) }

// NotFound отсутствующая сущность (404).
func NotFound(msg string) error { return newError(KindNotFound, msg, nil) }

// Verification неподтверждённый платёж (400).
func Verification(msg string) error { return newError(KindVerification, msg, nil) }

// RateLimit превышен лимит попыток (429).
func RateLimit(msg string) error { return newError(KindRateLimit, msg, nil) }

// Upstream сбой внешней системы (500).
func Upstream(msg string, cause error) error { return newError(KindUpstream, msg, cause) }

// Internal непредвиденная ошибка (500).
func Internal(msg string, cause error) error { return newError(KindInternal, msg, cause) }

// As извлекает *Error из цепочки.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf возвращает вид ошибки; для чужих ошибок KindInternal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is сообщает, что err имеет вид kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
