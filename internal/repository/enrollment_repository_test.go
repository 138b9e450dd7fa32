package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentUniquePerUserAndCourse(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	instructor := testutil.SeedUser(t, db, model.RoleInstructor)
	learner := testutil.SeedUser(t, db, model.RoleStudent)
	course := testutil.SeedCourse(t, db, instructor.ID)
	testutil.SeedEnrollment(t, db, learner.ID, course.ID, model.EnrollmentActive)

	repo := NewEnrollmentRepository(db)
	err := repo.Create(ctx, &model.Enrollment{UserID: learner.ID, CourseID: course.ID, EnrollmentDate: time.Now()})
	require.Error(t, err)

	ok, err := repo.HasAccess(ctx, learner.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.FindByUserID(ctx, learner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Course)
	assert.Equal(t, course.Title, list[0].Course.Title)
}

func TestProgressUpsertKeepsSingleRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	instructor := testutil.SeedUser(t, db, model.RoleInstructor)
	learner := testutil.SeedUser(t, db, model.RoleStudent)
	course := testutil.SeedCourse(t, db, instructor.ID)
	lecture := testutil.SeedLecture(t, db, testutil.SeedSection(t, db, course.ID, 1).ID, 1)
	enrollment := testutil.SeedEnrollment(t, db, learner.ID, course.ID, model.EnrollmentActive)

	repo := NewProgressRepository(db)
	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &model.ProgressItem{EnrollmentID: enrollment.ID, LectureID: lecture.ID, Completed: true, CompletionDate: &now}))
	require.NoError(t, repo.Upsert(ctx, &model.ProgressItem{EnrollmentID: enrollment.ID, LectureID: lecture.ID, Completed: false}))

	items, err := repo.FindByEnrollmentID(ctx, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Completed)
	assert.Nil(t, items[0].CompletionDate)

	require.NoError(t, repo.Upsert(ctx, &model.ProgressItem{EnrollmentID: enrollment.ID, LectureID: lecture.ID, Completed: true, CompletionDate: &now}))
	count, err := repo.CountCompletedInCourse(ctx, enrollment.ID, course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
