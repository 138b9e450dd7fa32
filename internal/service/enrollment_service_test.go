package service

import (
	"net/http"
	"testing"

	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestEnrollFreeCourse(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)

	enrollment, err := h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentActive, enrollment.Status)
	assert.Equal(t, 0.0, enrollment.Progress)

	_, err = h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: course.ID})
	requireAPIError(t, err, http.StatusConflict, "already_enrolled")

	stored, err := h.courses.FindByID(h.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EnrollmentsCount)
	assert.Equal(t, 1, h.notificationCount(learner.ID))
}

func TestEnrollRules(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	_, other := h.actor(model.RoleStudent)

	draft := testutil.SeedCourse(t, h.db, owner.ID, testutil.WithStatus(model.CourseStatusDraft))
	_, err := h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: draft.ID})
	requireAPIError(t, err, http.StatusBadRequest, "course_not_published")

	paid := testutil.SeedCourse(t, h.db, owner.ID, testutil.WithPrice(49))
	_, err = h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: paid.ID})
	requireAPIError(t, err, http.StatusPaymentRequired, "payment_required")

	free := testutil.SeedCourse(t, h.db, owner.ID)
	_, err = h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: free.ID, UserID: &other.ID})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")
}

func TestProgressCompletesEnrollment(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	section := testutil.SeedSection(t, h.db, course.ID, 1)
	first := testutil.SeedLecture(t, h.db, section.ID, 1)
	second := testutil.SeedLecture(t, h.db, section.ID, 2)
	third := testutil.SeedLecture(t, h.db, section.ID, 3)

	enrollment, err := h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: course.ID})
	require.NoError(t, err)

	progress, err := h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: first.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 33.33, progress.Enrollment.Progress)
	assert.Equal(t, int64(3), progress.TotalLectures)

	// marking the same lecture twice must not double count
	progress, err = h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: first.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), progress.CompletedLectures)

	_, err = h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: second.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	progress, err = h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: third.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, progress.Enrollment.Progress)
	assert.Equal(t, model.EnrollmentCompleted, progress.Enrollment.Status)
	require.NotNil(t, progress.Enrollment.CompletionDate)

	progress, err = h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: third.ID, Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, 66.67, progress.Enrollment.Progress)
	assert.Equal(t, model.EnrollmentActive, progress.Enrollment.Status)
	assert.Nil(t, progress.Enrollment.CompletionDate)
}

func TestProgressRejectsForeignLectureAndUser(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	intruder, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	otherCourse := testutil.SeedCourse(t, h.db, owner.ID)
	foreign := testutil.SeedLecture(t, h.db, testutil.SeedSection(t, h.db, otherCourse.ID, 1).ID, 1)
	own := testutil.SeedLecture(t, h.db, testutil.SeedSection(t, h.db, course.ID, 1).ID, 1)

	enrollment, err := h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: course.ID})
	require.NoError(t, err)

	_, err = h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: foreign.ID, Completed: boolPtr(true)})
	requireAPIError(t, err, http.StatusBadRequest, "lecture_not_in_course")

	_, err = h.enrollment.UpdateProgress(h.ctx, intruder, enrollment.ID, dto.ProgressUpdateDTO{LectureID: own.ID, Completed: boolPtr(true)})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	_, err = h.enrollment.GetProgress(h.ctx, intruder, enrollment.ID)
	requireAPIError(t, err, http.StatusForbidden, "forbidden")
}

func TestCurriculumChangesResyncProgress(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	section := testutil.SeedSection(t, h.db, course.ID, 1)
	first := testutil.SeedLecture(t, h.db, section.ID, 1)
	second := testutil.SeedLecture(t, h.db, section.ID, 2)

	enrollment, err := h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: course.ID})
	require.NoError(t, err)
	progress, err := h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: first.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.Enrollment.Progress)

	// dropping the only unfinished lecture completes the course
	require.NoError(t, h.curriculum.DeleteLecture(h.ctx, staff, second.ID))
	progress, err = h.enrollment.GetProgress(h.ctx, learner, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, progress.Enrollment.Progress)
	assert.Equal(t, model.EnrollmentCompleted, progress.Enrollment.Status)
	assert.NotNil(t, progress.Enrollment.CompletionDate)
	assert.Equal(t, int64(1), progress.TotalLectures)
	assert.Equal(t, 2, h.notificationCount(learner.ID))

	_, err = h.certificates.GetOrIssue(h.ctx, learner, course.ID)
	require.NoError(t, err)

	// a new lecture reopens the enrollment
	_, err = h.curriculum.CreateLecture(h.ctx, staff, dto.LectureCreateDTO{
		SectionID: section.ID,
		Title:     "Bonus",
		Type:      model.LectureTypeText,
		Content:   "more",
	})
	require.NoError(t, err)
	progress, err = h.enrollment.GetProgress(h.ctx, learner, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.Enrollment.Progress)
	assert.Equal(t, model.EnrollmentActive, progress.Enrollment.Status)
	assert.Nil(t, progress.Enrollment.CompletionDate)
	assert.Equal(t, int64(2), progress.TotalLectures)

	stored, err := h.courses.FindByID(h.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.LecturesCount)
}

func TestDeleteSectionResyncsProgress(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	kept := testutil.SeedSection(t, h.db, course.ID, 1)
	dropped := testutil.SeedSection(t, h.db, course.ID, 2)
	done := testutil.SeedLecture(t, h.db, kept.ID, 1)
	testutil.SeedLecture(t, h.db, kept.ID, 2)
	testutil.SeedLecture(t, h.db, dropped.ID, 1)

	enrollment, err := h.enrollment.Enroll(h.ctx, learner, dto.EnrollDTO{CourseID: course.ID})
	require.NoError(t, err)
	progress, err := h.enrollment.UpdateProgress(h.ctx, learner, enrollment.ID, dto.ProgressUpdateDTO{LectureID: done.ID, Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 33.33, progress.Enrollment.Progress)

	require.NoError(t, h.curriculum.DeleteSection(h.ctx, staff, dropped.ID))
	progress, err = h.enrollment.GetProgress(h.ctx, learner, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.Enrollment.Progress)
	assert.Equal(t, model.EnrollmentActive, progress.Enrollment.Status)
}
