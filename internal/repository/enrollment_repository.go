package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository interface {
	WithTx(tx *gorm.DB) EnrollmentRepository
	Create(ctx context.Context, enrollment *model.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	// LockByUserAndCourse reads the enrollment with a row lock, serialising the
	// learner's writes against the course. Use it inside a transaction.
	LockByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	// FindByUserID returns the user's enrollments with their course, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error)
	// FindGrantingByCourseID returns the course's active and completed enrollments.
	FindGrantingByCourseID(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error)
	Update(ctx context.Context, enrollment *model.Enrollment) error
	// HasAccess reports whether the user holds an active or completed enrollment.
	HasAccess(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) WithTx(tx *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: tx}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").First(&enrollment, "id = ?", id).Error
	return &enrollment, err
}

func (r *enrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *enrollmentRepository) LockByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *enrollmentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrollment_date DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) FindGrantingByCourseID(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND status IN ?", courseID,
			[]string{model.EnrollmentActive, model.EnrollmentCompleted}).
		Order("enrollment_date ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(enrollment).Error
}

func (r *enrollmentRepository) HasAccess(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status IN ?", userID, courseID,
			[]string{model.EnrollmentActive, model.EnrollmentCompleted}).
		Count(&count).Error
	return count > 0, err
}

type ProgressRepository interface {
	WithTx(tx *gorm.DB) ProgressRepository
	// Upsert keeps a single row per (enrollment, lecture).
	Upsert(ctx context.Context, item *model.ProgressItem) error
	FindByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) ([]model.ProgressItem, error)
	CountCompletedInCourse(ctx context.Context, enrollmentID, courseID uuid.UUID) (int64, error)
	// CountCompletedByCourse maps enrollment id to completed lectures still in the course.
	CountCompletedByCourse(ctx context.Context, courseID uuid.UUID) (map[uuid.UUID]int64, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) WithTx(tx *gorm.DB) ProgressRepository {
	return &progressRepository{db: tx}
}

func (r *progressRepository) Upsert(ctx context.Context, item *model.ProgressItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lecture_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completion_date", "updated_at"}),
	}).Create(item).Error
}

func (r *progressRepository) FindByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) ([]model.ProgressItem, error) {
	var items []model.ProgressItem
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CountCompletedInCourse ignores items whose lecture has since moved out of the course.
func (r *progressRepository) CountCompletedInCourse(ctx context.Context, enrollmentID, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProgressItem{}).
		Joins("JOIN lectures ON lectures.id = progress_items.lecture_id").
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("progress_items.enrollment_id = ? AND progress_items.completed = ? AND sections.course_id = ?",
			enrollmentID, true, courseID).
		Count(&count).Error
	return count, err
}

func (r *progressRepository) CountCompletedByCourse(ctx context.Context, courseID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		EnrollmentID uuid.UUID
		Completed    int64
	}
	err := r.db.WithContext(ctx).Model(&model.ProgressItem{}).
		Select("progress_items.enrollment_id AS enrollment_id, COUNT(*) AS completed").
		Joins("JOIN lectures ON lectures.id = progress_items.lecture_id").
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("progress_items.completed = ? AND sections.course_id = ?", true, courseID).
		Group("progress_items.enrollment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.EnrollmentID] = row.Completed
	}
	return counts, nil
}
