package dto

import (
	"time"

	"github.com/google/uuid"
)

type EnrollDTO struct {
	CourseID uuid.UUID  `json:"course_id" binding:"required"`
	UserID   *uuid.UUID `json:"user_id"` // admins may enroll someone else
}

type EnrollmentResponseDTO struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	CourseID       uuid.UUID         `json:"course_id"`
	Course         *CourseSummaryDTO `json:"course,omitempty"`
	EnrollmentDate time.Time         `json:"enrollment_date"`
	CompletionDate *time.Time        `json:"completion_date,omitempty"`
	Progress       float64           `json:"progress"`
	Status         string            `json:"status"`
}

type ProgressItemDTO struct {
	LectureID      uuid.UUID  `json:"lecture_id"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

type ProgressResponseDTO struct {
	Enrollment        EnrollmentResponseDTO `json:"enrollment"`
	Items             []ProgressItemDTO     `json:"items"`
	CompletedLectures int64                 `json:"completed_lectures"`
	TotalLectures     int64                 `json:"total_lectures"`
}

type ProgressUpdateDTO struct {
	LectureID uuid.UUID `json:"lecture_id" binding:"required"`
	Completed *bool     `json:"completed" binding:"required"`
}
