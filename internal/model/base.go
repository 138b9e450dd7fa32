package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the generated primary key and timestamps shared by most tables.
// IDs are assigned in Go so the same schema works on postgres and sqlite.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Section{},
		&Lecture{},
		&Enrollment{},
		&ProgressItem{},
		&Quiz{},
		&QuizQuestion{},
		&QuizOption{},
		&QuizSubmission{},
		&QuizAnswer{},
		&Assignment{},
		&AssignmentSubmission{},
		&Review{},
		&Payment{},
		&LiveSession{},
		&LiveSessionAttendee{},
		&Certificate{},
		&Notification{},
		&SupportTicket{},
		&TicketResponse{},
	}
}
