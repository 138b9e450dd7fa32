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

func TestUserProfileAccess(t *testing.T) {
	h := newHarness(t)
	self, user := h.actor(model.RoleStudent)
	other, otherUser := h.actor(model.RoleStudent)
	admin, _ := h.actor(model.RoleAdmin)

	_, err := h.user.GetUser(h.ctx, other, user.ID)
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	got, err := h.user.GetUser(h.ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	updated, err := h.user.UpdateUser(h.ctx, self, user.ID, dto.UserUpdateDTO{Name: strPtr("  New Name "), Bio: strPtr("Hi")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "Hi", updated.Bio)

	_, err = h.user.UpdateUser(h.ctx, self, user.ID, dto.UserUpdateDTO{Role: strPtr(model.RoleAdmin)})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	_, err = h.user.UpdateUser(h.ctx, self, user.ID, dto.UserUpdateDTO{Email: strPtr(otherUser.Email)})
	requireAPIError(t, err, http.StatusConflict, "email_taken")

	promoted, err := h.user.UpdateUser(h.ctx, admin, user.ID, dto.UserUpdateDTO{Role: strPtr(model.RoleInstructor), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleInstructor, promoted.Role)
	assert.False(t, promoted.IsActive)

	stored, err := h.users.FindByID(h.ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestListEnrollments(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	other, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	list, err := h.user.ListEnrollments(h.ctx, learner, learner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Course)
	assert.Equal(t, course.Title, list[0].Course.Title)

	_, err = h.user.ListEnrollments(h.ctx, other, learner.ID)
	requireAPIError(t, err, http.StatusForbidden, "forbidden")
}
