package models

import "time"

// DeliveryNotification — сообщение в очередь после выдачи VPN-доступа.
type DeliveryNotification struct {
	OrderID    string     `json:"orderId"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	ServerInfo string     `json:"serverInfo,omitempty"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	Items      []string   `json:"items"`
}
