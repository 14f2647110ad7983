package models

import "time"

// OrderStatus — состояние заказа.
type OrderStatus string

// Состояния заказа. completed и cancelled — терминальные.
const (
	OrderPendingPayment   OrderStatus = "pending_payment"
	OrderPaymentSubmitted OrderStatus = "payment_submitted"
	OrderVerified         OrderStatus = "verified"
	OrderCompleted        OrderStatus = "completed"
	OrderCancelled        OrderStatus = "cancelled"
)

// Valid проверяет, что статус входит в известный набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPendingPayment, OrderPaymentSubmitted, OrderVerified, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal сообщает, что из статуса нет переходов по основному сценарию.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// OrderItem — строка заказа. Поля копируются из товара в момент оформления,
// поэтому последующие правки каталога не меняют историю заказов.
type OrderItem struct {
	ProductID string `json:"id" validate:"required"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Duration  string `json:"duration"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// VPNCredentials — выданные покупателю данные доступа.
type VPNCredentials struct {
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	ServerInfo  string     `json:"serverInfo,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	DeliveredAt time.Time  `json:"deliveredAt"`
	DeliveredBy string     `json:"deliveredBy"`
}

// Order — заказ покупателя.
type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Items          []OrderItem     `json:"items"`
	Total          int64           `json:"total"`
	Status         OrderStatus     `json:"status"`
	PaymentID      string          `json:"paymentId,omitempty"`
	OrderDate      time.Time       `json:"orderDate"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
	VPNCredentials *VPNCredentials `json:"vpnCredentials,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// HasPayment сообщает, что к заказу уже привязан платёж.
func (o *Order) HasPayment() bool {
	return o.PaymentID != ""
}

// ComputeTotal считает сумму по строкам заказа.
func ComputeTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// OrderFilter параметры выборки заказов.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Limit  int
	Offset int
}

// OrderDetails — заказ вместе с платежом для админки.
type OrderDetails struct {
	Order   *Order   `json:"order"`
	Payment *Payment `json:"payment,omitempty"`
}
