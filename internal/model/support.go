package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketOpen       = "open"
	TicketInProgress = "in-progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

type SupportTicket struct {
	Base
	UserID       uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	User         *User            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Subject      string           `json:"subject" gorm:"not null"`
	Message      string           `json:"message" gorm:"type:text;not null"`
	Status       string           `json:"status" gorm:"not null;default:'open';index"`
	Priority     string           `json:"priority" gorm:"not null;default:'medium'"`
	Category     string           `json:"category" gorm:"not null"`
	AssignedToID *uuid.UUID       `json:"assigned_to_id,omitempty" gorm:"type:uuid"`
	AssignedTo   *User            `json:"-" gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
	Responses    []TicketResponse `json:"responses,omitempty" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

type TicketResponse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID  uuid.UUID `json:"ticket_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *TicketResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
