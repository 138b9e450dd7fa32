package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentRefunded  = "refunded"
)

type Enrollment struct {
	Base
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course"`
	User           *User          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CourseID       uuid.UUID      `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course;index"`
	Course         *Course        `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
	EnrollmentDate time.Time      `json:"enrollment_date" gorm:"not null"`
	CompletionDate *time.Time     `json:"completion_date,omitempty"`
	Progress       float64        `json:"progress" gorm:"not null;default:0;check:chk_enrollments_progress,progress >= 0 AND progress <= 100"`
	Status         string         `json:"status" gorm:"not null;default:'active'"`
	ProgressItems  []ProgressItem `json:"-" gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE"`
}

// GrantsAccess reports whether the learner may still use the course content.
func (e *Enrollment) GrantsAccess() bool {
	return e.Status == EnrollmentActive || e.Status == EnrollmentCompleted
}

type ProgressItem struct {
	Base
	EnrollmentID   uuid.UUID  `json:"enrollment_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_enrollment_lecture"`
	LectureID      uuid.UUID  `json:"lecture_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_enrollment_lecture"`
	Lecture        *Lecture   `json:"-" gorm:"foreignKey:LectureID;constraint:OnDelete:CASCADE"`
	Completed      bool       `json:"completed" gorm:"not null;default:false"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}
