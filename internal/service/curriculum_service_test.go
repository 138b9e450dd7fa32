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

func intPtr(i int) *int { return &i }

func TestCurriculumOrdering(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	course := testutil.SeedCourse(t, h.db, owner.ID)

	first, err := h.curriculum.CreateSection(h.ctx, staff, dto.SectionCreateDTO{CourseID: course.ID, Title: "Intro"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	second, err := h.curriculum.CreateSection(h.ctx, staff, dto.SectionCreateDTO{CourseID: course.ID, Title: "Basics"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	_, err = h.curriculum.CreateSection(h.ctx, staff, dto.SectionCreateDTO{CourseID: course.ID, Title: "Dup", Order: intPtr(1)})
	requireAPIError(t, err, http.StatusConflict, "order_taken")

	_, err = h.curriculum.UpdateSection(h.ctx, staff, second.ID, dto.SectionUpdateDTO{Order: intPtr(1)})
	requireAPIError(t, err, http.StatusConflict, "order_taken")
	moved, err := h.curriculum.UpdateSection(h.ctx, staff, second.ID, dto.SectionUpdateDTO{Order: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, moved.Order)

	lecture, err := h.curriculum.CreateLecture(h.ctx, staff, dto.LectureCreateDTO{SectionID: first.ID, Title: "Welcome", Type: model.LectureTypeText, Content: "hello", Duration: "5m"})
	require.NoError(t, err)
	assert.Equal(t, 1, lecture.Order)
	assert.Empty(t, lecture.Duration)

	_, err = h.curriculum.CreateLecture(h.ctx, staff, dto.LectureCreateDTO{SectionID: first.ID, Title: "Clash", Type: model.LectureTypeText, Content: "x", Order: intPtr(1)})
	requireAPIError(t, err, http.StatusConflict, "order_taken")

	stored, err := h.courses.FindByID(h.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LecturesCount)

	require.NoError(t, h.curriculum.DeleteSection(h.ctx, staff, first.ID))
	stored, err = h.courses.FindByID(h.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LecturesCount)
}

func TestCurriculumLocksContent(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	visitor, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	section, err := h.curriculum.CreateSection(h.ctx, staff, dto.SectionCreateDTO{CourseID: course.ID, Title: "Intro"})
	require.NoError(t, err)
	_, err = h.curriculum.CreateLecture(h.ctx, staff, dto.LectureCreateDTO{SectionID: section.ID, Title: "Preview", Type: model.LectureTypeText, Content: "free", Preview: true})
	require.NoError(t, err)
	_, err = h.curriculum.CreateLecture(h.ctx, staff, dto.LectureCreateDTO{SectionID: section.ID, Title: "Paid", Type: model.LectureTypeText, Content: "secret"})
	require.NoError(t, err)

	for _, viewer := range []Actor{{}, visitor} {
		lectures, err := h.curriculum.ListLectures(h.ctx, viewer, section.ID)
		require.NoError(t, err)
		require.Len(t, lectures, 2)
		assert.Equal(t, "free", lectures[0].Content)
		assert.False(t, lectures[0].Locked)
		assert.Empty(t, lectures[1].Content)
		assert.True(t, lectures[1].Locked)
	}

	lectures, err := h.curriculum.ListLectures(h.ctx, learner, section.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", lectures[1].Content)

	sections, err := h.curriculum.ListSections(h.ctx, staff, course.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Lectures, 2)
	assert.False(t, sections[0].Lectures[1].Locked)

	_, err = h.curriculum.CreateSection(h.ctx, learner, dto.SectionCreateDTO{CourseID: course.ID, Title: "Hack"})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")
}
