package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CertificateRepository interface {
	Create(ctx context.Context, certificate *model.Certificate) error
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, error)
	// FindByVerificationCode preloads the learner and the course.
	FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, certificate *model.Certificate) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(certificate).Error
}

func (r *certificateRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&certificate).Error
	return &certificate, err
}

func (r *certificateRepository) FindByVerificationCode(ctx context.Context, code string) (*model.Certificate, error) {
	var certificate model.Certificate
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		First(&certificate, "verification_code = ?", code).Error
	return &certificate, err
}

func (r *certificateRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Certificate{}).Where("verification_code = ?", code).Count(&count).Error
	return count > 0, err
}
