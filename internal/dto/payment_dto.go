package dto

import (
	"time"

	"github.com/google/uuid"
)

type PaymentIntentCreateDTO struct {
	CourseID      uuid.UUID `json:"course_id" binding:"required"`
	PaymentMethod string    `json:"payment_method" binding:"required,max=50"`
	Currency      string    `json:"currency" binding:"omitempty,len=3,alpha"`
}

type PaymentResponseDTO struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	CourseID      uuid.UUID         `json:"course_id"`
	Course        *CourseSummaryDTO `json:"course,omitempty"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	TransactionID string            `json:"transaction_id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type PaymentIntentResponseDTO struct {
	Payment     PaymentResponseDTO `json:"payment"`
	ClientToken string             `json:"client_token"`
	RedirectURL string             `json:"redirect_url,omitempty"`
}

// PaymentNotificationDTO is the subset of the gateway callback we read. The
// status itself is always re-queried from the gateway.
type PaymentNotificationDTO struct {
	OrderID           string `json:"order_id" binding:"required"`
	TransactionStatus string `json:"transaction_status"`
}
