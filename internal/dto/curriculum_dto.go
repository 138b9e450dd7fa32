package dto

import (
	"time"

	"github.com/google/uuid"
)

type SectionResponseDTO struct {
	ID        uuid.UUID            `json:"id"`
	CourseID  uuid.UUID            `json:"course_id"`
	Title     string               `json:"title"`
	Order     int                  `json:"order"`
	Lectures  []LectureResponseDTO `json:"lectures"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type LectureResponseDTO struct {
	ID          uuid.UUID `json:"id"`
	SectionID   uuid.UUID `json:"section_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Content     string    `json:"content,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Preview     bool      `json:"preview"`
	Order       int       `json:"order"`
	Locked      bool      `json:"locked"` // content withheld from this viewer
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SectionCreateDTO struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	Title    string    `json:"title" binding:"required,max=200"`
	Order    *int      `json:"order" binding:"omitempty,min=1"` // appended after the last section when omitted
}

type SectionUpdateDTO struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=200"`
	Order *int    `json:"order" binding:"omitempty,min=1"`
}

type LectureCreateDTO struct {
	SectionID   uuid.UUID `json:"section_id" binding:"required"`
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Type        string    `json:"type" binding:"required,oneof=video quiz assignment text"`
	Content     string    `json:"content" binding:"required"`
	Duration    string    `json:"duration" binding:"max=50"`
	Preview     bool      `json:"preview"`
	Order       *int      `json:"order" binding:"omitempty,min=1"`
}

type LectureUpdateDTO struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Type        *string `json:"type" binding:"omitempty,oneof=video quiz assignment text"`
	Content     *string `json:"content" binding:"omitempty,min=1"`
	Duration    *string `json:"duration" binding:"omitempty,max=50"`
	Preview     *bool   `json:"preview"`
	Order       *int    `json:"order" binding:"omitempty,min=1"`
}
