package service

import (
	"math"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseRequest(title string) dto.CourseCreateDTO {
	return dto.CourseCreateDTO{
		Title:       title,
		Description: "Learn things",
		Price:       0,
		Category:    "programming",
		Level:       "Beginner",
	}
}

func TestCreateCourseGeneratesUniqueSlugs(t *testing.T) {
	h := newHarness(t)
	instructor, _ := h.actor(model.RoleInstructor)

	first, err := h.course.Create(h.ctx, instructor, courseRequest("Go for Beginners"))
	require.NoError(t, err)
	assert.Equal(t, "go-for-beginners", first.Slug)
	assert.Equal(t, model.CourseStatusDraft, first.Status)
	require.NotNil(t, first.Instructor)
	assert.Equal(t, instructor.ID, first.Instructor.ID)

	second, err := h.course.Create(h.ctx, instructor, courseRequest("Go for Beginners!"))
	require.NoError(t, err)
	assert.Equal(t, "go-for-beginners-2", second.Slug)

	req := courseRequest("Another")
	req.Slug = "go-for-beginners"
	_, err = h.course.Create(h.ctx, instructor, req)
	requireAPIError(t, err, http.StatusConflict, "slug_taken")
}

func TestCreateCourseRules(t *testing.T) {
	h := newHarness(t)
	student, _ := h.actor(model.RoleStudent)
	instructor, _ := h.actor(model.RoleInstructor)

	_, err := h.course.Create(h.ctx, student, courseRequest("Nope"))
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	req := courseRequest("Discounted")
	req.Price = 50
	discount := 50.0
	req.DiscountPrice = &discount
	_, err = h.course.Create(h.ctx, instructor, req)
	requireAPIError(t, err, http.StatusBadRequest, "validation_failed")

	discount = 20
	created, err := h.course.Create(h.ctx, instructor, req)
	require.NoError(t, err)
	assert.Equal(t, 20.0, created.EffectivePrice)
}

func TestDraftCourseVisibility(t *testing.T) {
	h := newHarness(t)
	instructor, owner := h.actor(model.RoleInstructor)
	other, _ := h.actor(model.RoleInstructor)
	admin, _ := h.actor(model.RoleAdmin)
	draft := testutil.SeedCourse(t, h.db, owner.ID, testutil.WithStatus(model.CourseStatusDraft))

	_, err := h.course.Get(h.ctx, Actor{}, draft.ID)
	requireAPIError(t, err, http.StatusNotFound, "course_not_found")
	_, err = h.course.GetBySlug(h.ctx, other, draft.Slug)
	requireAPIError(t, err, http.StatusNotFound, "course_not_found")

	got, err := h.course.Get(h.ctx, instructor, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.Slug, got.Slug)
	_, err = h.course.GetBySlug(h.ctx, admin, draft.Slug)
	require.NoError(t, err)

	_, err = h.course.Get(h.ctx, Actor{}, uuid.New())
	requireAPIError(t, err, http.StatusNotFound, "course_not_found")
}

func TestListOnlyShowsPublished(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedCourse(t, h.db, owner.ID, testutil.WithStatus(model.CourseStatusDraft))

	page, err := h.course.List(h.ctx, dto.CourseListQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestListClampsHugePage(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	testutil.SeedCourse(t, h.db, owner.ID)

	page, err := h.course.List(h.ctx, dto.CourseListQuery{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, maxPage, page.Page)
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Data, 0)
}

func TestUpdateAndDeleteCourse(t *testing.T) {
	h := newHarness(t)
	instructor, owner := h.actor(model.RoleInstructor)
	stranger, _ := h.actor(model.RoleInstructor)
	_, learner := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID, testutil.WithPrice(30))

	title := "Renamed"
	_, err := h.course.Update(h.ctx, stranger, course.ID, dto.CourseUpdateDTO{Title: &title})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	updated, err := h.course.Update(h.ctx, instructor, course.ID, dto.CourseUpdateDTO{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, course.Slug, updated.Slug)

	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)
	err = h.course.Delete(h.ctx, instructor, course.ID)
	requireAPIError(t, err, http.StatusConflict, "course_has_enrollments")

	empty := testutil.SeedCourse(t, h.db, owner.ID)
	require.NoError(t, h.course.Delete(h.ctx, instructor, empty.ID))
	_, err = h.course.Get(h.ctx, instructor, empty.ID)
	requireAPIError(t, err, http.StatusNotFound, "course_not_found")
}
