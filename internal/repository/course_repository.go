package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseFilter narrows the catalog listing. Zero values mean "no filter".
type CourseFilter struct {
	Category     string
	Level        string
	Search       string
	Status       string
	Featured     *bool
	InstructorID *uuid.UUID
	Offset       int
	Limit        int
}

type CourseRepository interface {
	WithTx(tx *gorm.DB) CourseRepository
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	FindBySlug(ctx context.Context, slug string) (*model.Course, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, int64, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasLearnerRecords(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementEnrollments(ctx context.Context, id uuid.UUID, delta int) error
	RefreshLecturesCount(ctx context.Context, id uuid.UUID) error
	RefreshRating(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) WithTx(tx *gorm.DB) CourseRepository {
	return &courseRepository{db: tx}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Preload("Instructor").First(&course, "id = ?", id).Error
	return &course, err
}

func (r *courseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Preload("Instructor").First(&course, "slug = ?", slug).Error
	return &course, err
}

func (r *courseRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Course{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) List(ctx context.Context, f CourseFilter) ([]model.Course, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Course{})
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.Level != "" {
			q = q.Where("level = ?", f.Level)
		}
		if f.Featured != nil {
			q = q.Where("featured = ?", *f.Featured)
		}
		if f.InstructorID != nil {
			q = q.Where("instructor_id = ?", *f.InstructorID)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where("LOWER(title) LIKE ? OR LOWER(short_description) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := filtered().
		Preload("Instructor").
		Order("featured DESC").
		Order("created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Course{}, "id = ?", id).Error
}

// HasLearnerRecords reports whether enrollments, payments or certificates
// reference the course. Those rows block deletion.
func (r *courseRepository) HasLearnerRecords(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	for _, m := range []interface{}{&model.Enrollment{}, &model.Payment{}, &model.Certificate{}} {
		var count int64
		if err := db.Model(m).Where("course_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *courseRepository) IncrementEnrollments(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).
		UpdateColumn("enrollments_count", gorm.Expr("enrollments_count + ?", delta)).Error
}

func (r *courseRepository) RefreshLecturesCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE courses SET lectures_count = (
			SELECT COUNT(*) FROM lectures JOIN sections ON sections.id = lectures.section_id
			WHERE sections.course_id = ?
		) WHERE id = ?`, id, id).Error
}

func (r *courseRepository) RefreshRating(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE courses SET rating = COALESCE((
			SELECT ROUND(AVG(rating), 2) FROM reviews WHERE course_id = ?
		), 0) WHERE id = ?`, id, id).Error
}
