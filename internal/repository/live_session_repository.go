package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LiveSessionRepository interface {
	WithTx(tx *gorm.DB) LiveSessionRepository
	Create(ctx context.Context, session *model.LiveSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LiveSession, error)
	// LockByID re-reads the session with a row lock; use it inside a transaction.
	LockByID(ctx context.Context, id uuid.UUID) (*model.LiveSession, error)
	FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]model.LiveSession, error)
	// FindUpcomingForUser lists scheduled sessions starting after now in courses
	// the user is enrolled in or teaches.
	FindUpcomingForUser(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]model.LiveSession, error)
	CountAttendees(ctx context.Context, sessionID uuid.UUID) (int64, error)
	IsAttendee(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	AddAttendee(ctx context.Context, attendee *model.LiveSessionAttendee) error
}

type liveSessionRepository struct {
	db *gorm.DB
}

func NewLiveSessionRepository(db *gorm.DB) LiveSessionRepository {
	return &liveSessionRepository{db: db}
}

func (r *liveSessionRepository) WithTx(tx *gorm.DB) LiveSessionRepository {
	return &liveSessionRepository{db: tx}
}

func (r *liveSessionRepository) Create(ctx context.Context, session *model.LiveSession) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error
}

func (r *liveSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LiveSession, error) {
	var session model.LiveSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	return &session, err
}

func (r *liveSessionRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.LiveSession, error) {
	var session model.LiveSession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, "id = ?", id).Error
	return &session, err
}

func (r *liveSessionRepository) FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]model.LiveSession, error) {
	var sessions []model.LiveSession
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *liveSessionRepository) FindUpcomingForUser(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]model.LiveSession, error) {
	db := r.db.WithContext(ctx)
	enrolled := db.Model(&model.Enrollment{}).Select("course_id").
		Where("user_id = ? AND status IN ?", userID, []string{model.EnrollmentActive, model.EnrollmentCompleted})
	taught := db.Model(&model.Course{}).Select("id").Where("instructor_id = ?", userID)

	var sessions []model.LiveSession
	err := db.
		Where("start_time > ? AND status = ?", now, model.LiveSessionScheduled).
		Where(db.Where("course_id IN (?)", enrolled).Or("course_id IN (?)", taught)).
		Order("start_time ASC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *liveSessionRepository) CountAttendees(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LiveSessionAttendee{}).
		Where("live_session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *liveSessionRepository) IsAttendee(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LiveSessionAttendee{}).
		Where("live_session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *liveSessionRepository) AddAttendee(ctx context.Context, attendee *model.LiveSessionAttendee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(attendee).Error
}
