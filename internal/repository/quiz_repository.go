package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
)

type QuizRepository interface {
	// Create stores the quiz together with its questions and options.
	Create(ctx context.Context, quiz *model.Quiz) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	LectureHasQuiz(ctx context.Context, lectureID uuid.UUID) (bool, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Omit("Course", "Lecture").Create(quiz).Error
}

func (r *quizRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.WithContext(ctx).First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *quizRepository) FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.sort_order ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_options.sort_order ASC")
		}).
		First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *quizRepository) LectureHasQuiz(ctx context.Context, lectureID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Quiz{}).Where("lecture_id = ?", lectureID).Count(&count).Error
	return count > 0, err
}

type QuizSubmissionRepository interface {
	WithTx(tx *gorm.DB) QuizSubmissionRepository
	// Create stores the submission and its answers.
	Create(ctx context.Context, submission *model.QuizSubmission) error
	CountByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) (int64, error)
	FindByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) ([]model.QuizSubmission, error)
}

type quizSubmissionRepository struct {
	db *gorm.DB
}

func NewQuizSubmissionRepository(db *gorm.DB) QuizSubmissionRepository {
	return &quizSubmissionRepository{db: db}
}

func (r *quizSubmissionRepository) WithTx(tx *gorm.DB) QuizSubmissionRepository {
	return &quizSubmissionRepository{db: tx}
}

func (r *quizSubmissionRepository) Create(ctx context.Context, submission *model.QuizSubmission) error {
	return r.db.WithContext(ctx).Omit("Quiz", "User").Create(submission).Error
}

func (r *quizSubmissionRepository) CountByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.QuizSubmission{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count, err
}

func (r *quizSubmissionRepository) FindByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) ([]model.QuizSubmission, error) {
	var submissions []model.QuizSubmission
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}
