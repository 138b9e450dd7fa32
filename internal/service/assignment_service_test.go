package service

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 { return &f }

func TestAssignmentSubmitAndGrade(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	outsider, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	assignment, err := h.assignment.CreateAssignment(h.ctx, staff, dto.AssignmentCreateDTO{Title: "Essay", Description: "Write about Go", CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, 100, assignment.Points)

	_, err = h.assignment.Submit(h.ctx, outsider, assignment.ID, dto.AssignmentSubmitDTO{Content: "hi"}, nil)
	requireAPIError(t, err, http.StatusForbidden, "not_enrolled")

	_, err = h.assignment.Submit(h.ctx, learner, assignment.ID, dto.AssignmentSubmitDTO{Content: "   "}, nil)
	requireAPIError(t, err, http.StatusBadRequest, "validation_failed")

	file := &dto.FileUpload{Filename: "essay.PDF", ContentType: "application/pdf", Size: 4, Body: bytes.NewReader([]byte("%PDF"))}
	sub, err := h.assignment.Submit(h.ctx, learner, assignment.ID, dto.AssignmentSubmitDTO{Content: "Go is fun"}, file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sub.FileURL, "/uploads/assignments/"+assignment.ID.String()+"/"+learner.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(sub.FileURL, ".pdf"))

	_, err = h.assignment.Grade(h.ctx, learner, sub.ID, dto.AssignmentGradeDTO{Grade: float64Ptr(90)})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")
	_, err = h.assignment.Grade(h.ctx, staff, sub.ID, dto.AssignmentGradeDTO{Grade: float64Ptr(101)})
	requireAPIError(t, err, http.StatusBadRequest, "validation_failed")

	graded, err := h.assignment.Grade(h.ctx, staff, sub.ID, dto.AssignmentGradeDTO{Grade: float64Ptr(88.5), Feedback: "Solid"})
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 88.5, *graded.Grade)
	require.NotNil(t, graded.GradedAt)
	assert.Equal(t, 1, h.notificationCount(learner.ID))

	view, err := h.assignment.GetAssignment(h.ctx, learner, assignment.ID)
	require.NoError(t, err)
	require.Len(t, view.MySubmissions, 1)
	assert.Equal(t, "Solid", view.MySubmissions[0].Feedback)
}

func TestAssignmentPastDueAndTooLarge(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	past := time.Now().Add(-time.Hour)
	late, err := h.assignment.CreateAssignment(h.ctx, staff, dto.AssignmentCreateDTO{Title: "Late", Description: "x", CourseID: course.ID, DueDate: &past})
	require.NoError(t, err)
	_, err = h.assignment.Submit(h.ctx, learner, late.ID, dto.AssignmentSubmitDTO{Content: "sorry"}, nil)
	requireAPIError(t, err, http.StatusConflict, "past_due")

	open, err := h.assignment.CreateAssignment(h.ctx, staff, dto.AssignmentCreateDTO{Title: "Open", Description: "x", CourseID: course.ID})
	require.NoError(t, err)
	big := &dto.FileUpload{Filename: "big.zip", Size: h.cfg.Media.MaxUploadBytes + 1, Body: bytes.NewReader(nil)}
	_, err = h.assignment.Submit(h.ctx, learner, open.ID, dto.AssignmentSubmitDTO{}, big)
	requireAPIError(t, err, http.StatusRequestEntityTooLarge, "file_too_large")
}

func TestSuggestFeedback(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	assignment, err := h.assignment.CreateAssignment(h.ctx, staff, dto.AssignmentCreateDTO{Title: "Essay", Description: "Explain goroutines", CourseID: course.ID, Points: 10})
	require.NoError(t, err)
	sub, err := h.assignment.Submit(h.ctx, learner, assignment.ID, dto.AssignmentSubmitDTO{Content: "Goroutines are lightweight threads"}, nil)
	require.NoError(t, err)

	h.reviewer.feedback, h.reviewer.score = "Good start", 7.456
	suggestion, err := h.assignment.SuggestFeedback(h.ctx, staff, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.46, suggestion.SuggestedGrade)
	assert.Equal(t, 10, suggestion.MaxPoints)
	assert.Equal(t, "Good start", suggestion.Feedback)

	h.reviewer.err = ErrReviewerUnavailable
	_, err = h.assignment.SuggestFeedback(h.ctx, staff, sub.ID)
	requireAPIError(t, err, http.StatusServiceUnavailable, "ai_unavailable")

	h.reviewer.err = errors.New("quota exceeded")
	_, err = h.assignment.SuggestFeedback(h.ctx, staff, sub.ID)
	requireAPIError(t, err, http.StatusBadGateway, "ai_failed")

	// suggestions never touch the stored grade
	view, err := h.assignment.GetAssignment(h.ctx, learner, assignment.ID)
	require.NoError(t, err)
	require.Len(t, view.MySubmissions, 1)
	assert.Nil(t, view.MySubmissions[0].Grade)
}
