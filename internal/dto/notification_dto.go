package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationListQuery struct {
	Unread bool `form:"unread"`
}
