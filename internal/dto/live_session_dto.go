package dto

import (
	"time"

	"github.com/google/uuid"
)

type LiveSessionCreateDTO struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description"`
	CourseID        uuid.UUID `json:"course_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	MeetingURL      string    `json:"meeting_url" binding:"omitempty,url"`
	MaxParticipants *int      `json:"max_participants" binding:"omitempty,min=1"`
}

type LiveSessionResponseDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	CourseID        uuid.UUID `json:"course_id"`
	InstructorID    uuid.UUID `json:"instructor_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type JoinLiveSessionResponseDTO struct {
	MeetingURL string                 `json:"meeting_url"`
	Session    LiveSessionResponseDTO `json:"session"`
}
