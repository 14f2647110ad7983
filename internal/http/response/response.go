// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Ошибки бизнес-логики
// отдаются с машинно-проверяемым видом (kind) и текстом для человека.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Kind — вид ошибки (только при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status         string `json:"status"`
	Kind           string `json:"kind,omitempty"`
	Code           string `json:"code,omitempty"`
	Error          string `json:"error,omitempty"`
	LockoutMinutes int    `json:"lockoutMinutes,omitempty"`
	Data           any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Kind   string `json:"kind" example:"ValidationError"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой заданного вида.
func Error(kind apperr.Kind, msg string) Response {
	return Response{
		Status: StatusError,
		Kind:   string(kind),
		Error:  msg,
	}
}

// FromError строит Response по ошибке бизнес-логики.
// Текст внутренних ошибок наружу не попадает.
func FromError(err error) Response {
	resp := Error(apperr.KindOf(err), apperr.PublicMessage(err))
	if e, ok := apperr.As(err); ok {
		resp.Code = e.Code
		resp.LockoutMinutes = e.LockoutMinutes
	}
	return resp
}

// Fail пишет ошибку со статусом, соответствующим её виду.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, apperr.HTTPStatus(err))
	render.JSON(w, r, FromError(err))
}

// OK пишет успешный ответ с данными.
func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, StatusOKWithData(data))
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "gt", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is out of range", err.Field()))
		case "url":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid url", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Kind:   string(apperr.KindValidation),
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// Invalid пишет 400 с описанием ошибок валидации.
// Ошибки другого типа (например, неподдерживаемое поле) отдаются общим текстом.
func Invalid(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	if errs, ok := err.(validator.ValidationErrors); ok {
		render.JSON(w, r, ValidationError(errs))
		return
	}
	render.JSON(w, r, Error(apperr.KindValidation, "invalid request"))
}
