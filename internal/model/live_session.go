package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	LiveSessionScheduled  = "scheduled"
	LiveSessionInProgress = "in-progress"
	LiveSessionCompleted  = "completed"
	LiveSessionCancelled  = "cancelled"
)

type LiveSession struct {
	Base
	Title           string    `json:"title" gorm:"not null"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	CourseID        uuid.UUID `json:"course_id" gorm:"type:uuid;not null;index"`
	Course          *Course   `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	InstructorID    uuid.UUID `json:"instructor_id" gorm:"type:uuid;not null"`
	Instructor      *User     `json:"-" gorm:"foreignKey:InstructorID;constraint:OnDelete:RESTRICT"`
	StartTime       time.Time `json:"start_time" gorm:"not null;index"`
	EndTime         time.Time `json:"end_time" gorm:"not null"`
	MeetingURL      string    `json:"meeting_url,omitempty"`
	Status          string    `json:"status" gorm:"not null;default:'scheduled'"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
}

// LiveSessionAttendee records that a user joined a session.
type LiveSessionAttendee struct {
	Base
	LiveSessionID uuid.UUID    `json:"live_session_id" gorm:"type:uuid;not null;uniqueIndex:idx_attendees_session_user"`
	LiveSession   *LiveSession `json:"-" gorm:"foreignKey:LiveSessionID;constraint:OnDelete:CASCADE"`
	UserID        uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_attendees_session_user"`
	User          *User        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	JoinedAt      time.Time    `json:"joined_at" gorm:"not null"`
}
