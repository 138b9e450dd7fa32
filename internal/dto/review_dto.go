package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReviewCreateDTO struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

type ReviewResponseDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	CourseID  uuid.UUID       `json:"course_id"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment,omitempty"`
	User      *UserSummaryDTO `json:"user,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
