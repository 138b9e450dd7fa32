package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SectionRepository interface {
	WithTx(tx *gorm.DB) SectionRepository
	Create(ctx context.Context, section *model.Section) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Section, error)
	// FindByCourseID returns sections ascending by order, each with its lectures ascending by order.
	FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]model.Section, error)
	Update(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id uuid.UUID) error
	OrderTaken(ctx context.Context, courseID uuid.UUID, order int, excludeID *uuid.UUID) (bool, error)
	MaxOrder(ctx context.Context, courseID uuid.UUID) (int, error)
}

type sectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) WithTx(tx *gorm.DB) SectionRepository {
	return &sectionRepository{db: tx}
}

func (r *sectionRepository) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(section).Error
}

func (r *sectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).First(&section, "id = ?", id).Error
	return &section, err
}

func (r *sectionRepository) FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("lectures.sort_order ASC")
		}).
		Where("course_id = ?", courseID).
		Order("sections.sort_order ASC").
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepository) Update(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(section).Error
}

func (r *sectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Section{}, "id = ?", id).Error
}

func (r *sectionRepository) OrderTaken(ctx context.Context, courseID uuid.UUID, order int, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Section{}).Where("course_id = ? AND sort_order = ?", courseID, order)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *sectionRepository) MaxOrder(ctx context.Context, courseID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Section{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

type LectureRepository interface {
	WithTx(tx *gorm.DB) LectureRepository
	Create(ctx context.Context, lecture *model.Lecture) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lecture, error)
	FindBySectionID(ctx context.Context, sectionID uuid.UUID) ([]model.Lecture, error)
	Update(ctx context.Context, lecture *model.Lecture) error
	Delete(ctx context.Context, id uuid.UUID) error
	OrderTaken(ctx context.Context, sectionID uuid.UUID, order int, excludeID *uuid.UUID) (bool, error)
	MaxOrder(ctx context.Context, sectionID uuid.UUID) (int, error)
	CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error)
	BelongsToCourse(ctx context.Context, lectureID, courseID uuid.UUID) (bool, error)
}

type lectureRepository struct {
	db *gorm.DB
}

func NewLectureRepository(db *gorm.DB) LectureRepository {
	return &lectureRepository{db: db}
}

func (r *lectureRepository) WithTx(tx *gorm.DB) LectureRepository {
	return &lectureRepository{db: tx}
}

func (r *lectureRepository) Create(ctx context.Context, lecture *model.Lecture) error {
	return r.db.WithContext(ctx).Create(lecture).Error
}

func (r *lectureRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Lecture, error) {
	var lecture model.Lecture
	err := r.db.WithContext(ctx).First(&lecture, "id = ?", id).Error
	return &lecture, err
}

func (r *lectureRepository) FindBySectionID(ctx context.Context, sectionID uuid.UUID) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("sort_order ASC").
		Find(&lectures).Error
	return lectures, err
}

func (r *lectureRepository) Update(ctx context.Context, lecture *model.Lecture) error {
	return r.db.WithContext(ctx).Save(lecture).Error
}

func (r *lectureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Lecture{}, "id = ?", id).Error
}

func (r *lectureRepository) OrderTaken(ctx context.Context, sectionID uuid.UUID, order int, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Lecture{}).Where("section_id = ? AND sort_order = ?", sectionID, order)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *lectureRepository) MaxOrder(ctx context.Context, sectionID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Lecture{}).
		Where("section_id = ?", sectionID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *lectureRepository) CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Lecture{}).
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("sections.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *lectureRepository) BelongsToCourse(ctx context.Context, lectureID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Lecture{}).
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("lectures.id = ? AND sections.course_id = ?", lectureID, courseID).
		Count(&count).Error
	return count > 0, err
}
