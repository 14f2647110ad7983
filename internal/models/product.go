package models

import "time"

// Категории товаров.
const (
	CategoryPremium  = "Premium"
	CategoryStandard = "Standard"
)

// Product — позиция каталога (VPN-аккаунт определённого провайдера и срока).
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" validate:"required,max=200"`
	Provider      string    `json:"provider" validate:"required,max=100"`
	Duration      string    `json:"duration" validate:"required,max=50"` // Например "1 Month"
	Price         int64     `json:"price" validate:"required,gt=0"`
	OriginalPrice *int64    `json:"originalPrice,omitempty" validate:"omitempty,gt=0"` // Цена до скидки
	Features      []string  `json:"features"`
	Category      string    `json:"category" validate:"required,oneof=Premium Standard"`
	IsActive      bool      `json:"isActive"`
	Stock         int       `json:"stock" validate:"gte=0"`
	Logo          string    `json:"logo"`
	Rating        int       `json:"rating" validate:"required,min=1,max=5"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductFilter параметры поиска по каталогу.
type ProductFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductPage — страница каталога.
type ProductPage struct {
	Products   []*Product `json:"products"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}
