package dto

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentCreateDTO struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"required"`
	CourseID    uuid.UUID  `json:"course_id" binding:"required"`
	LectureID   *uuid.UUID `json:"lecture_id"`
	DueDate     *time.Time `json:"due_date"`
	Points      int        `json:"points" binding:"omitempty,min=1"`
}

type AssignmentResponseDTO struct {
	ID            uuid.UUID                         `json:"id"`
	Title         string                            `json:"title"`
	Description   string                            `json:"description"`
	CourseID      uuid.UUID                         `json:"course_id"`
	LectureID     *uuid.UUID                        `json:"lecture_id,omitempty"`
	DueDate       *time.Time                        `json:"due_date,omitempty"`
	Points        int                               `json:"points"`
	MySubmissions []AssignmentSubmissionResponseDTO `json:"my_submissions,omitempty"`
}

type AssignmentSubmissionResponseDTO struct {
	ID           uuid.UUID  `json:"id"`
	AssignmentID uuid.UUID  `json:"assignment_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Content      string     `json:"content,omitempty"`
	FileURL      string     `json:"file_url,omitempty"`
	Grade        *float64   `json:"grade,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

type AssignmentGradeDTO struct {
	Grade    *float64 `json:"grade" binding:"required,gte=0"`
	Feedback string   `json:"feedback" binding:"max=5000"`
}

// AIFeedbackResponseDTO is a suggestion only; nothing is persisted.
type AIFeedbackResponseDTO struct {
	SubmissionID   uuid.UUID `json:"submission_id"`
	SuggestedGrade float64   `json:"suggested_grade"`
	MaxPoints      int       `json:"max_points"`
	Feedback       string    `json:"feedback"`
}

// AssignmentSubmitDTO is the text part of a multipart submission; the file
// arrives separately.
type AssignmentSubmitDTO struct {
	Content string `form:"content" binding:"max=20000"`
}
