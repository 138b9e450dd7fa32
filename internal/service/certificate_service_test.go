package service

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^VK-[A-Z2-7]{4}-[A-Z2-7]{4}-[A-Z2-7]{4}$`)

func TestNewVerificationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestCertificateIssueAndVerify(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, user := h.actor(model.RoleStudent)
	stranger, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)

	_, err := h.certificates.GetOrIssue(h.ctx, stranger, course.ID)
	requireAPIError(t, err, http.StatusNotFound, "enrollment_not_found")

	enrollment := testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)
	_, err = h.certificates.GetOrIssue(h.ctx, learner, course.ID)
	requireAPIError(t, err, http.StatusConflict, "course_not_completed")

	require.NoError(t, h.db.Model(enrollment).Update("status", model.EnrollmentCompleted).Error)
	cert, err := h.certificates.GetOrIssue(h.ctx, learner, course.ID)
	require.NoError(t, err)
	assert.Regexp(t, codePattern, cert.VerificationCode)
	assert.Equal(t, "/uploads/certificates/"+course.ID.String()+"/"+learner.ID.String()+".png", cert.CertificateURL)
	require.Len(t, h.renderer.rendered, 1)
	assert.Equal(t, user.Name, h.renderer.rendered[0].LearnerName)
	assert.Equal(t, owner.Name, h.renderer.rendered[0].InstructorName)

	again, err := h.certificates.GetOrIssue(h.ctx, learner, course.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, again.ID)
	assert.Len(t, h.renderer.rendered, 1)

	verified, err := h.certificates.Verify(h.ctx, " "+cert.VerificationCode+" ")
	require.NoError(t, err)
	assert.True(t, verified.Valid)
	assert.Equal(t, user.Name, verified.LearnerName)
	assert.Equal(t, course.Title, verified.CourseTitle)

	_, err = h.certificates.Verify(h.ctx, "VK-AAAA-BBBB-CCCC")
	requireAPIError(t, err, http.StatusNotFound, "certificate_not_found")
}
