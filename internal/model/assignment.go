package model

import (
	"time"

	"github.com/google/uuid"
)

type Assignment struct {
	Base
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	CourseID    uuid.UUID  `json:"course_id" gorm:"type:uuid;not null;index"`
	Course      *Course    `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	LectureID   *uuid.UUID `json:"lecture_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	Lecture     *Lecture   `json:"-" gorm:"foreignKey:LectureID;constraint:OnDelete:SET NULL"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Points      int        `json:"points" gorm:"not null;default:100"`
}

type AssignmentSubmission struct {
	Base
	AssignmentID uuid.UUID   `json:"assignment_id" gorm:"type:uuid;not null;index"`
	Assignment   *Assignment `json:"-" gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
	UserID       uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	User         *User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Content      string      `json:"content,omitempty" gorm:"type:text"`
	FileURL      string      `json:"file_url,omitempty"`
	Grade        *float64    `json:"grade,omitempty"`
	Feedback     string      `json:"feedback,omitempty" gorm:"type:text"`
	SubmittedAt  time.Time   `json:"submitted_at" gorm:"not null"`
	GradedAt     *time.Time  `json:"graded_at,omitempty"`
}
