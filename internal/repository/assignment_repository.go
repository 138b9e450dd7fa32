package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	LectureHasAssignment(ctx context.Context, lectureID uuid.UUID) (bool, error)
	CreateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error
	// FindSubmissionByID preloads the parent assignment.
	FindSubmissionByID(ctx context.Context, id uuid.UUID) (*model.AssignmentSubmission, error)
	FindSubmissionsByUser(ctx context.Context, assignmentID, userID uuid.UUID) ([]model.AssignmentSubmission, error)
	UpdateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error
	return &assignment, err
}

func (r *assignmentRepository) LectureHasAssignment(ctx context.Context, lectureID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Assignment{}).Where("lecture_id = ?", lectureID).Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) CreateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error
}

func (r *assignmentRepository) FindSubmissionByID(ctx context.Context, id uuid.UUID) (*model.AssignmentSubmission, error) {
	var submission model.AssignmentSubmission
	err := r.db.WithContext(ctx).Preload("Assignment").First(&submission, "id = ?", id).Error
	return &submission, err
}

func (r *assignmentRepository) FindSubmissionsByUser(ctx context.Context, assignmentID, userID uuid.UUID) ([]model.AssignmentSubmission, error) {
	var submissions []model.AssignmentSubmission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *assignmentRepository) UpdateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}
