package models

// Значения пагинации по умолчанию.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Pagination номер страницы и её размер, как их прислал клиент.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize подставляет значения по умолчанию и ограничивает размер страницы.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset смещение первой записи страницы.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages число страниц для total записей.
func (p Pagination) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// UserPage страница пользователей для админки.
type UserPage struct {
	Users      []*User `json:"users"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// OrderPage страница заказов.
type OrderPage struct {
	Orders     []*Order `json:"orders"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
}
