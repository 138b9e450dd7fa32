package model

import (
	"time"

	"github.com/google/uuid"
)

type Certificate struct {
	Base
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course"`
	User             *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CourseID         uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course"`
	Course           *Course   `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
	IssueDate        time.Time `json:"issue_date" gorm:"not null"`
	CertificateURL   string    `json:"certificate_url"`
	VerificationCode string    `json:"verification_code" gorm:"not null;uniqueIndex"`
}
