package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

type Payment struct {
	Base
	UserID        uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	User          *User          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CourseID      uuid.UUID      `json:"course_id" gorm:"type:uuid;not null;index"`
	Course        *Course        `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
	Amount        float64        `json:"amount" gorm:"not null;check:chk_payments_amount,amount >= 0"`
	Currency      string         `json:"currency" gorm:"not null;default:'USD'"`
	PaymentMethod string         `json:"payment_method" gorm:"not null"`
	Status        string         `json:"status" gorm:"not null;default:'pending';index"`
	TransactionID string         `json:"transaction_id" gorm:"uniqueIndex"` // gateway order id
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
}
