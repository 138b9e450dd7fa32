package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionMatching       = "matching"
)

type Quiz struct {
	Base
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	CourseID    uuid.UUID      `json:"course_id" gorm:"type:uuid;not null;index"`
	Course      *Course        `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	LectureID   *uuid.UUID     `json:"lecture_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	Lecture     *Lecture       `json:"-" gorm:"foreignKey:LectureID;constraint:OnDelete:SET NULL"`
	TimeLimit   int            `json:"time_limit"` // minutes, 0 = unlimited
	PassScore   float64        `json:"pass_score" gorm:"not null;check:chk_quizzes_pass_score,pass_score >= 0 AND pass_score <= 100"`
	Attempts    int            `json:"attempts" gorm:"not null;default:1"`
	Questions   []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

type QuizQuestion struct {
	Base
	QuizID  uuid.UUID    `json:"quiz_id" gorm:"type:uuid;not null;index"`
	Text    string       `json:"text" gorm:"type:text;not null"`
	Type    string       `json:"type" gorm:"not null"` // multiple-choice, true-false, matching
	Points  int          `json:"points" gorm:"not null;default:1"`
	Order   int          `json:"order" gorm:"column:sort_order;not null"`
	Options []QuizOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type QuizOption struct {
	Base
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	Order      int       `json:"order" gorm:"column:sort_order;not null;default:0"`
}

type QuizSubmission struct {
	Base
	QuizID      uuid.UUID    `json:"quiz_id" gorm:"type:uuid;not null;index:idx_quiz_submissions_quiz_user"`
	Quiz        *Quiz        `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	UserID      uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index:idx_quiz_submissions_quiz_user"`
	User        *User        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Score       float64      `json:"score" gorm:"not null;check:chk_quiz_submissions_score,score >= 0 AND score <= 100"`
	Passed      bool         `json:"passed" gorm:"not null"`
	TimeSpent   int          `json:"time_spent"` // seconds
	SubmittedAt time.Time    `json:"submitted_at" gorm:"not null"`
	Answers     []QuizAnswer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

type QuizAnswer struct {
	Base
	SubmissionID     uuid.UUID     `json:"submission_id" gorm:"type:uuid;not null;index"`
	QuestionID       uuid.UUID     `json:"question_id" gorm:"type:uuid;not null"`
	Question         *QuizQuestion `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	SelectedOptionID *uuid.UUID    `json:"selected_option_id,omitempty" gorm:"type:uuid"`
	SelectedOption   *QuizOption   `json:"-" gorm:"foreignKey:SelectedOptionID;constraint:OnDelete:SET NULL"`
	IsCorrect        bool          `json:"is_correct" gorm:"not null"`
}
