// Package query разбирает общие параметры строки запроса.
package query

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Pagination читает page и limit. Отсутствующие значения остаются нулями,
// значения по умолчанию подставляет сервис.
func Pagination(r *http.Request) (models.Pagination, error) {
	page, err := intParam(r, "page")
	if err != nil {
		return models.Pagination{}, err
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		return models.Pagination{}, err
	}
	return models.Pagination{Page: page, Limit: limit}, nil
}

// String возвращает параметр без пробелов по краям.
func String(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// Bool возвращает true для "1" и "true".
func Bool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(String(r, name))
	return err == nil && v
}

func intParam(r *http.Request, name string) (int, error) {
	raw := String(r, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Validation(name + " must be a non-negative integer")
	}
	return v, nil
}
