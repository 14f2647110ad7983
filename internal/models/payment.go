package models

import "time"

// PaymentStatus — состояние проверки платежа.
type PaymentStatus string

// Состояния платежа. Подтверждённый платёж всегда verified.
const (
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentVerified            PaymentStatus = "verified"
	PaymentRejected            PaymentStatus = "rejected"
)

// Payment — заявка покупателя о ручном переводе, ожидающая проверки админом.
type Payment struct {
	ID              string        `json:"id"`
	OrderID         string        `json:"orderId"`
	UserID          string        `json:"userId"`
	PaymentMethod   string        `json:"paymentMethod"`
	TransactionID   string        `json:"transactionId"` // Уникален среди всех платежей
	SenderName      string        `json:"senderName"`
	SenderPhone     string        `json:"senderPhone"`
	Amount          int64         `json:"amount"`
	ProofImage      string        `json:"proofImage,omitempty"`
	Status          PaymentStatus `json:"status"`
	SubmittedAt     time.Time     `json:"submittedAt"`
	VerifiedAt      *time.Time    `json:"verifiedAt,omitempty"`
	VerifiedBy      string        `json:"verifiedBy,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// PaymentSubmission — данные, которые присылает покупатель.
type PaymentSubmission struct {
	OrderID       string `json:"orderId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,max=100"`
	TransactionID string `json:"transactionId" validate:"required,max=100"`
	SenderName    string `json:"senderName" validate:"required,max=100"`
	SenderPhone   string `json:"senderPhone" validate:"required,max=30"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	ProofImage    string `json:"proofImage,omitempty" validate:"omitempty,max=500"`
}

// PaymentDecision — итог проверки платежа администратором.
type PaymentDecision struct {
	OrderID       string
	PaymentID     string
	OrderStatus   OrderStatus
	PaymentStatus PaymentStatus
	AdminID       string
	Reason        string
	Notes         string
	At            time.Time
}
