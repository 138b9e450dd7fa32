package dto

import (
	"time"

	"github.com/google/uuid"
)

type CertificateResponseDTO struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	CourseID         uuid.UUID `json:"course_id"`
	IssueDate        time.Time `json:"issue_date"`
	CertificateURL   string    `json:"certificate_url"`
	VerificationCode string    `json:"verification_code"`
}

type CertificateVerificationDTO struct {
	Valid       bool                   `json:"valid"`
	Certificate CertificateResponseDTO `json:"certificate"`
	LearnerName string                 `json:"learner_name"`
	CourseTitle string                 `json:"course_title"`
}
