// Package apperr описывает типизированные ошибки бизнес-логики и их отображение
// в HTTP-статусы. Обработчики не различают причины сами: они спрашивают Kind.
package apperr

import (
	"errors"
	"net/http"
)

// Kind — машинно-проверяемый вид ошибки, отдаётся клиенту в поле kind.
type Kind string

// Виды ошибок.
const (
	KindValidation         Kind = "ValidationError"
	KindAuthRequired       Kind = "AuthenticationRequired"
	KindAdminRequired      Kind = "AdminAccessRequired"
	KindForbidden          Kind = "Forbidden"
	KindNotFound           Kind = "NotFound"
	KindConflict           Kind = "Conflict"
	KindPreconditionFailed Kind = "PreconditionFailed"
	KindRateLimited        Kind = "RateLimited"
	KindInternal           Kind = "Internal"
)

// Error — ошибка с видом, сообщением для клиента и исходной причиной.
type Error struct {
	Kind           Kind
	Msg            string
	Err            error
	Code           string // уточнение вида, например DuplicateTransaction
	Status         int    // переопределяет HTTP-статус вида
	LockoutMinutes int    // только для KindRateLimited
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданного вида.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap создаёт ошибку заданного вида с причиной.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation — некорректный ввод.
func Validation(msg string) *Error { return New(KindValidation, msg) }

// AuthRequired — нет токена или он недействителен.
func AuthRequired(msg string) *Error { return New(KindAuthRequired, msg) }

// AdminRequired — токен валиден, но роль не admin.
func AdminRequired() *Error { return New(KindAdminRequired, "admin access required") }

// Forbidden — действие над чужим ресурсом.
func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

// NotFound — сущность не найдена.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// Conflict — нарушение уникальности.
func Conflict(msg string) *Error { return New(KindConflict, msg) }

// PreconditionFailed — переход недопустим из текущего состояния.
func PreconditionFailed(msg string) *Error { return New(KindPreconditionFailed, msg) }

// CodeDuplicateTransaction номер транзакции уже использован другим платежом.
const CodeDuplicateTransaction = "DuplicateTransaction"

// DuplicateTransaction — конфликт по номеру транзакции. Отдаётся как 400.
func DuplicateTransaction() *Error {
	return &Error{
		Kind:   KindConflict,
		Msg:    "transaction id has already been used",
		Code:   CodeDuplicateTransaction,
		Status: http.StatusBadRequest,
	}
}

// RateLimited — превышено число попыток входа.
func RateLimited(minutes int) *Error {
	return &Error{Kind: KindRateLimited, Msg: "too many login attempts", LockoutMinutes: minutes}
}

// Internal — непредвиденная ошибка хранилища или рантайма.
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal error", err)
}

// As извлекает *Error из цепочки.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf возвращает вид ошибки; всё, что не *Error, считается Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is сообщает, что ошибка относится к виду kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus отображает вид ошибки в HTTP-статус.
func HTTPStatus(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	switch KindOf(err) {
	case KindValidation, KindPreconditionFailed:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindAdminRequired, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage возвращает текст, который можно показать клиенту.
// Для внутренних ошибок причина скрывается.
func PublicMessage(err error) string {
	e, ok := As(err)
	if !ok || e.Kind == KindInternal {
		return "internal error"
	}
	return e.Msg
}
