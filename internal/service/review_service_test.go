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

func TestReviewsUpdateRating(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	first, _ := h.actor(model.RoleStudent)
	second, _ := h.actor(model.RoleStudent)
	outsider, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedEnrollment(t, h.db, first.ID, course.ID, model.EnrollmentActive)
	testutil.SeedEnrollment(t, h.db, second.ID, course.ID, model.EnrollmentCompleted)

	_, err := h.review.Create(h.ctx, outsider, course.ID, dto.ReviewCreateDTO{Rating: 5})
	requireAPIError(t, err, http.StatusForbidden, "not_enrolled")

	_, err = h.review.Create(h.ctx, first, course.ID, dto.ReviewCreateDTO{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	_, err = h.review.Create(h.ctx, first, course.ID, dto.ReviewCreateDTO{Rating: 1})
	requireAPIError(t, err, http.StatusConflict, "already_reviewed")
	_, err = h.review.Create(h.ctx, second, course.ID, dto.ReviewCreateDTO{Rating: 4})
	require.NoError(t, err)

	stored, err := h.courses.FindByID(h.ctx, course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, stored.Rating, 0.001)

	reviews, err := h.review.List(h.ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
