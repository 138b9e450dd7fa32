package dto

import (
	"time"

	"github.com/google/uuid"
)

type QuizOptionCreateDTO struct {
	Text      string `json:"text" binding:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

type QuizQuestionCreateDTO struct {
	Text    string                `json:"text" binding:"required"`
	Type    string                `json:"type" binding:"required,oneof=multiple-choice true-false matching"`
	Points  int                   `json:"points" binding:"omitempty,min=1"`
	Options []QuizOptionCreateDTO `json:"options" binding:"required,min=2,dive"`
}

type QuizCreateDTO struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description"`
	CourseID    uuid.UUID               `json:"course_id" binding:"required"`
	LectureID   *uuid.UUID              `json:"lecture_id"`
	TimeLimit   int                     `json:"time_limit" binding:"min=0"`
	PassScore   float64                 `json:"pass_score" binding:"gte=0,lte=100"`
	Attempts    int                     `json:"attempts" binding:"omitempty,min=1"`
	Questions   []QuizQuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

type QuizOptionDTO struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IsCorrect *bool     `json:"is_correct,omitempty"` // only shown to course staff
}

type QuizQuestionDTO struct {
	ID      uuid.UUID       `json:"id"`
	Text    string          `json:"text"`
	Type    string          `json:"type"`
	Points  int             `json:"points"`
	Order   int             `json:"order"`
	Options []QuizOptionDTO `json:"options"`
}

type QuizResponseDTO struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	CourseID     uuid.UUID         `json:"course_id"`
	LectureID    *uuid.UUID        `json:"lecture_id,omitempty"`
	TimeLimit    int               `json:"time_limit"`
	PassScore    float64           `json:"pass_score"`
	Attempts     int               `json:"attempts"`
	AttemptsUsed int64             `json:"attempts_used"`
	Questions    []QuizQuestionDTO `json:"questions"`
}

type QuizAnswerSubmitDTO struct {
	QuestionID       uuid.UUID  `json:"question_id" binding:"required"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
}

type QuizSubmitDTO struct {
	Answers   []QuizAnswerSubmitDTO `json:"answers" binding:"required,dive"`
	TimeSpent int                   `json:"time_spent" binding:"min=0"` // seconds
}

type QuizAnswerResultDTO struct {
	QuestionID       uuid.UUID  `json:"question_id"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id,omitempty"`
	IsCorrect        bool       `json:"is_correct"`
}

type QuizSubmissionResponseDTO struct {
	ID                uuid.UUID             `json:"id"`
	QuizID            uuid.UUID             `json:"quiz_id"`
	UserID            uuid.UUID             `json:"user_id"`
	Score             float64               `json:"score"`
	Passed            bool                  `json:"passed"`
	TimeSpent         int                   `json:"time_spent"`
	SubmittedAt       time.Time             `json:"submitted_at"`
	Answers           []QuizAnswerResultDTO `json:"answers,omitempty"`
	AttemptsRemaining int                   `json:"attempts_remaining"`
}
