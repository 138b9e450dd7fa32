package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
)

// Actor is the authenticated caller as seen by the services. The zero value is
// an anonymous visitor.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) Authenticated() bool { return a.ID != uuid.Nil }

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

func (a Actor) IsStaffRole() bool {
	return a.Role == model.RoleInstructor || a.Role == model.RoleAdmin
}

// IsCourseStaff reports whether the actor teaches the course or is an admin.
func (a Actor) IsCourseStaff(course *model.Course) bool {
	return a.Authenticated() && (a.IsAdmin() || course.InstructorID == a.ID)
}

func (a Actor) IsSelfOrAdmin(userID uuid.UUID) bool {
	return a.Authenticated() && (a.IsAdmin() || a.ID == userID)
}

// courseAccess answers "may this actor use the course content" for the
// services that gate on enrollment.
type courseAccess struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
}

func (c courseAccess) course(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := c.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	return course, nil
}

// canUse reports whether the actor is course staff or holds an active or
// completed enrollment.
func (c courseAccess) canUse(ctx context.Context, actor Actor, course *model.Course) (bool, error) {
	if !actor.Authenticated() {
		return false, nil
	}
	if actor.IsCourseStaff(course) {
		return true, nil
	}
	return c.enrollmentRepo.HasAccess(ctx, actor.ID, course.ID)
}

func (c courseAccess) requireUse(ctx context.Context, actor Actor, course *model.Course) error {
	ok, err := c.canUse(ctx, actor, course)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Forbidden("not_enrolled", "you must be enrolled in this course")
	}
	return nil
}

func requireCourseStaff(actor Actor, course *model.Course) error {
	if !actor.IsCourseStaff(course) {
		return apierr.Forbidden("forbidden", "only the course instructor or an admin may do this")
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
