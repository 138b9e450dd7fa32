// Package testutil provides an isolated sqlite database and seed helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/database"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a fresh in-memory database with every table migrated and
// foreign keys enforced. The single connection keeps the memory database alive
// for the whole test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	cfg := database.GormConfig()
	cfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, role string) *model.User {
	tb.Helper()
	id := uuid.New()
	u := &model.User{
		Base:         model.Base{ID: id},
		Name:         "User " + id.String()[:8],
		Email:        id.String()[:8] + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// CourseOption tweaks a seeded course before insert.
type CourseOption func(*model.Course)

func WithPrice(price float64) CourseOption {
	return func(c *model.Course) { c.Price = price }
}

func WithStatus(status string) CourseOption {
	return func(c *model.Course) { c.Status = status }
}

func SeedCourse(tb testing.TB, db *gorm.DB, instructorID uuid.UUID, opts ...CourseOption) *model.Course {
	tb.Helper()
	id := uuid.New()
	c := &model.Course{
		Base:         model.Base{ID: id},
		Title:        "Course " + id.String()[:8],
		Slug:         "course-" + id.String()[:8],
		Description:  "A course",
		InstructorID: instructorID,
		Category:     "programming",
		Level:        "Beginner",
		Status:       model.CourseStatusPublished,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := db.Omit("Instructor", "Sections").Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, db *gorm.DB, courseID uuid.UUID, order int) *model.Section {
	tb.Helper()
	s := &model.Section{CourseID: courseID, Title: fmt.Sprintf("Section %d", order), Order: order}
	if err := db.Omit("Lectures").Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedLecture(tb testing.TB, db *gorm.DB, sectionID uuid.UUID, order int) *model.Lecture {
	tb.Helper()
	l := &model.Lecture{
		SectionID: sectionID,
		Title:     fmt.Sprintf("Lecture %d", order),
		Type:      model.LectureTypeText,
		Content:   "content",
		Order:     order,
	}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed lecture: %v", err)
	}
	return l
}

func SeedEnrollment(tb testing.TB, db *gorm.DB, userID, courseID uuid.UUID, status string) *model.Enrollment {
	tb.Helper()
	e := &model.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentDate: time.Now().UTC(),
		Status:         status,
	}
	if err := db.Omit("User", "Course", "ProgressItems").Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

// SeedQuiz creates a quiz with one question per entry in points. Option 0 of
// each question is the correct one, option 1 is wrong.
func SeedQuiz(tb testing.TB, db *gorm.DB, courseID uuid.UUID, passScore float64, attempts int, points ...int) *model.Quiz {
	tb.Helper()
	q := &model.Quiz{
		Title:     "Quiz",
		CourseID:  courseID,
		PassScore: passScore,
		Attempts:  attempts,
	}
	for i, p := range points {
		q.Questions = append(q.Questions, model.QuizQuestion{
			Text:   fmt.Sprintf("Question %d", i+1),
			Type:   model.QuestionMultipleChoice,
			Points: p,
			Order:  i + 1,
			Options: []model.QuizOption{
				{Text: "right", IsCorrect: true, Order: 1},
				{Text: "wrong", IsCorrect: false, Order: 2},
			},
		})
	}
	if err := db.Omit("Course", "Lecture").Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}
