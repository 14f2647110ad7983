// Package models содержит доменные структуры витрины: пользователей, товары,
// заказы, платежи и настройки сайта. Структуры используются и в бизнес‑логике,
// и в хранилище, и в JSON-ответах.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // Всегда в нижнем регистре
	PasswordHash string    `json:"-"`     // Хэш пароля пользователя
	Role         string    `json:"role"`  // admin или user
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin сообщает, что пользователь — администратор.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserFilter параметры выборки пользователей в админке.
type UserFilter struct {
	Search string
	Limit  int
	Offset int
}

// UserUpdate изменяемые администратором поля. nil — не менять.
type UserUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"isActive,omitempty"`
}
