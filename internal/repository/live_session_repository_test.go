package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUpcomingForUser(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	instructor := testutil.SeedUser(t, db, model.RoleInstructor)
	learner := testutil.SeedUser(t, db, model.RoleStudent)
	enrolled := testutil.SeedCourse(t, db, instructor.ID)
	other := testutil.SeedCourse(t, db, instructor.ID)
	testutil.SeedEnrollment(t, db, learner.ID, enrolled.ID, model.EnrollmentActive)

	now := time.Now().UTC()
	repo := NewLiveSessionRepository(db)
	mk := func(courseID uuid.UUID, start time.Time, status string) *model.LiveSession {
		s := &model.LiveSession{
			Title:        "Session",
			CourseID:     courseID,
			InstructorID: instructor.ID,
			StartTime:    start,
			EndTime:      start.Add(time.Hour),
			Status:       status,
		}
		require.NoError(t, repo.Create(ctx, s))
		return s
	}
	later := mk(enrolled.ID, now.Add(48*time.Hour), model.LiveSessionScheduled)
	sooner := mk(enrolled.ID, now.Add(2*time.Hour), model.LiveSessionScheduled)
	mk(enrolled.ID, now.Add(-2*time.Hour), model.LiveSessionScheduled)
	mk(enrolled.ID, now.Add(3*time.Hour), model.LiveSessionCancelled)
	mk(other.ID, now.Add(time.Hour), model.LiveSessionScheduled)

	sessions, err := repo.FindUpcomingForUser(ctx, learner.ID, now, 50)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, sooner.ID, sessions[0].ID)
	assert.Equal(t, later.ID, sessions[1].ID)

	// the instructor teaches both courses
	sessions, err = repo.FindUpcomingForUser(ctx, instructor.ID, now, 50)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}
