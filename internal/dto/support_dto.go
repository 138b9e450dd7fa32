package dto

import (
	"time"

	"github.com/google/uuid"
)

type TicketCreateDTO struct {
	Subject  string `json:"subject" binding:"required,max=200"`
	Message  string `json:"message" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Category string `json:"category" binding:"required,oneof=technical billing content account other"`
}

type TicketRespondDTO struct {
	Message string `json:"message" binding:"required"`
}

type TicketUpdateDTO struct {
	Status       *string    `json:"status" binding:"omitempty,oneof=open in-progress resolved closed"`
	Priority     *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

type TicketListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=open in-progress resolved closed"`
}

type TicketReplyDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type SupportTicketResponseDTO struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Subject      string           `json:"subject"`
	Message      string           `json:"message"`
	Status       string           `json:"status"`
	Priority     string           `json:"priority"`
	Category     string           `json:"category"`
	AssignedToID *uuid.UUID       `json:"assigned_to_id,omitempty"`
	Responses    []TicketReplyDTO `json:"responses,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
