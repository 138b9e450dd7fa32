package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EnrollmentService enrolls learners and tracks their lecture progress.
type EnrollmentService interface {
	// Enroll grants access to a free course, or to a paid one with a completed payment.
	Enroll(ctx context.Context, actor Actor, req dto.EnrollDTO) (*dto.EnrollmentResponseDTO, error)
	GetProgress(ctx context.Context, actor Actor, enrollmentID uuid.UUID) (*dto.ProgressResponseDTO, error)
	// UpdateProgress marks one lecture and recomputes the enrollment's percentage and status.
	UpdateProgress(ctx context.Context, actor Actor, enrollmentID uuid.UUID, req dto.ProgressUpdateDTO) (*dto.ProgressResponseDTO, error)
}

type enrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	courseRepo     repository.CourseRepository
	lectureRepo    repository.LectureRepository
	paymentRepo    repository.PaymentRepository
	notifier       NotificationService
	cache          *CourseCache
	db             *gorm.DB
}

// NewEnrollmentService wires the service to its repositories and collaborators.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	progressRepo repository.ProgressRepository,
	courseRepo repository.CourseRepository,
	lectureRepo repository.LectureRepository,
	paymentRepo repository.PaymentRepository,
	notifier NotificationService,
	cache *CourseCache,
	db *gorm.DB,
) EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		courseRepo:     courseRepo,
		lectureRepo:    lectureRepo,
		paymentRepo:    paymentRepo,
		notifier:       notifier,
		cache:          cache,
		db:             db,
	}
}

// grantEnrollment creates the enrollment, or reactivates a refunded one, and
// bumps the course counter. It returns the enrollment and whether anything changed.
// Callers run it inside a transaction and pass tx-bound repositories.
func grantEnrollment(ctx context.Context, enrollments repository.EnrollmentRepository, courses repository.CourseRepository, userID, courseID uuid.UUID) (*model.Enrollment, bool, error) {
	existing, err := enrollments.FindByUserAndCourse(ctx, userID, courseID)
	switch {
	case err == nil && existing.GrantsAccess():
		return existing, false, nil
	case err == nil:
		existing.Status = model.EnrollmentActive
		existing.EnrollmentDate = time.Now().UTC()
		existing.CompletionDate = nil
		if err := enrollments.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, true, courses.IncrementEnrollments(ctx, courseID, 1)
	case !repository.IsNotFound(err):
		return nil, false, err
	}

	enrollment := model.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentDate: time.Now().UTC(),
		Status:         model.EnrollmentActive,
	}
	if err := enrollments.Create(ctx, &enrollment); err != nil {
		return nil, false, err
	}
	return &enrollment, true, courses.IncrementEnrollments(ctx, courseID, 1)
}

func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, req dto.EnrollDTO) (*dto.EnrollmentResponseDTO, error) {
	userID := actor.ID
	if req.UserID != nil && *req.UserID != actor.ID {
		if !actor.IsAdmin() {
			return nil, apierr.Forbidden("forbidden", "only admins may enroll other users")
		}
		userID = *req.UserID
	}

	course, err := s.courseRepo.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	if !course.IsPublished() {
		return nil, apierr.BadRequest("course_not_published", "course is not open for enrollment")
	}

	existing, err := s.enrollmentRepo.FindByUserAndCourse(ctx, userID, course.ID)
	if err == nil && existing.GrantsAccess() {
		return nil, apierr.Conflict("already_enrolled", "already enrolled in this course")
	}
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	if !course.IsFree() {
		paid, err := s.paymentRepo.HasCompleted(ctx, userID, course.ID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return nil, apierr.PaymentRequired("payment_required", "a completed payment is required for this course")
		}
	}

	var enrollment *model.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		enrollment, _, txErr = grantEnrollment(ctx, s.enrollmentRepo.WithTx(tx), s.courseRepo.WithTx(tx), userID, course.ID)
		return txErr
	})
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Str("courseID", course.ID.String()).Msg("Enrollment failed")
		if apiErr, ok := apierr.As(repository.Translate(err, "enrollment")); ok && apiErr.Code == "conflict" {
			return nil, apierr.Conflict("already_enrolled", "already enrolled in this course")
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, course.ID, course.Slug)
	s.notifier.Notify(ctx, userID, model.NotificationSuccess, "Enrolled",
		fmt.Sprintf("You are now enrolled in %s.", course.Title), "/courses/"+course.Slug)
	log.Info().Str("userID", userID.String()).Str("courseID", course.ID.String()).Msg("User enrolled")

	enrollment.Course = course
	resp := toEnrollmentDTO(enrollment)
	return &resp, nil
}

// viewEnrollment loads the enrollment and checks the caller may see it.
func (s *enrollmentService) viewEnrollment(ctx context.Context, actor Actor, id uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "enrollment")
	}
	if enrollment.UserID == actor.ID || actor.IsAdmin() {
		return enrollment, nil
	}
	if enrollment.Course != nil && actor.IsCourseStaff(enrollment.Course) {
		return enrollment, nil
	}
	return nil, apierr.Forbidden("forbidden", "you may not view this enrollment")
}

func (s *enrollmentService) GetProgress(ctx context.Context, actor Actor, enrollmentID uuid.UUID) (*dto.ProgressResponseDTO, error) {
	enrollment, err := s.viewEnrollment(ctx, actor, enrollmentID)
	if err != nil {
		return nil, err
	}
	return s.progressResponse(ctx, enrollment)
}

func (s *enrollmentService) progressResponse(ctx context.Context, enrollment *model.Enrollment) (*dto.ProgressResponseDTO, error) {
	items, err := s.progressRepo.FindByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.progressRepo.CountCompletedInCourse(ctx, enrollment.ID, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	total, err := s.lectureRepo.CountByCourseID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	resp := dto.ProgressResponseDTO{
		Enrollment:        toEnrollmentDTO(enrollment),
		Items:             make([]dto.ProgressItemDTO, 0, len(items)),
		CompletedLectures: completed,
		TotalLectures:     total,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.ProgressItemDTO{
			LectureID:      item.LectureID,
			Completed:      item.Completed,
			CompletionDate: item.CompletionDate,
		})
	}
	return &resp, nil
}

// progressPercent is completed/total as a percentage with two decimals.
func progressPercent(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return clamp(round2(float64(completed)*100/float64(total)), 0, 100)
}

// applyProgress sets progress from the counts and keeps the completed status
// in step with 100%. It reports whether the enrollment just became completed.
func applyProgress(e *model.Enrollment, completed, total int64, now time.Time) bool {
	wasCompleted := e.Status == model.EnrollmentCompleted
	e.Progress = progressPercent(completed, total)
	switch {
	case e.Progress >= 100:
		e.Progress = 100
		if !wasCompleted {
			e.Status = model.EnrollmentCompleted
			e.CompletionDate = &now
			return true
		}
	case wasCompleted:
		e.Status = model.EnrollmentActive
		e.CompletionDate = nil
	}
	return false
}

// syncCourseProgress recomputes every granting enrollment of the course after
// its lecture set changed. Callers pass tx-bound repositories. A course left
// without lectures keeps its enrollments as they are. It returns the
// enrollments that became completed.
func syncCourseProgress(ctx context.Context, enrollments repository.EnrollmentRepository, progress repository.ProgressRepository, lectures repository.LectureRepository, courseID uuid.UUID) ([]model.Enrollment, error) {
	total, err := lectures.CountByCourseID(ctx, courseID)
	if err != nil || total == 0 {
		return nil, err
	}
	list, err := enrollments.FindGrantingByCourseID(ctx, courseID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	counts, err := progress.CountCompletedByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var newlyCompleted []model.Enrollment
	for i := range list {
		e := &list[i]
		before, status := e.Progress, e.Status
		if applyProgress(e, counts[e.ID], total, now) {
			newlyCompleted = append(newlyCompleted, *e)
		}
		if e.Progress == before && e.Status == status {
			continue
		}
		if err := enrollments.Update(ctx, e); err != nil {
			return nil, err
		}
	}
	return newlyCompleted, nil
}

func notifyCompleted(ctx context.Context, notifier NotificationService, e *model.Enrollment, courseTitle string) {
	notifier.Notify(ctx, e.UserID, model.NotificationSuccess, "Course completed",
		fmt.Sprintf("Congratulations, you completed %s. Your certificate is ready.", courseTitle),
		"/certificates/"+e.CourseID.String())
}

func (s *enrollmentService) UpdateProgress(ctx context.Context, actor Actor, enrollmentID uuid.UUID, req dto.ProgressUpdateDTO) (*dto.ProgressResponseDTO, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, repository.Translate(err, "enrollment")
	}
	if enrollment.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apierr.Forbidden("forbidden", "only the enrolled learner may record progress")
	}
	if enrollment.Status == model.EnrollmentRefunded {
		return nil, apierr.Conflict("enrollment_refunded", "this enrollment was refunded")
	}
	belongs, err := s.lectureRepo.BelongsToCourse(ctx, req.LectureID, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, apierr.BadRequest("lecture_not_in_course", "lecture does not belong to this course")
	}
	total, err := s.lectureRepo.CountByCourseID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wasCompleted := enrollment.Status == model.EnrollmentCompleted
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := model.ProgressItem{
			EnrollmentID: enrollment.ID,
			LectureID:    req.LectureID,
			Completed:    *req.Completed,
		}
		if item.Completed {
			item.CompletionDate = &now
		}
		progress := s.progressRepo.WithTx(tx)
		if err := progress.Upsert(ctx, &item); err != nil {
			return err
		}
		completed, err := progress.CountCompletedInCourse(ctx, enrollment.ID, enrollment.CourseID)
		if err != nil {
			return err
		}

		applyProgress(enrollment, completed, total, now)
		return s.enrollmentRepo.WithTx(tx).Update(ctx, enrollment)
	})
	if err != nil {
		log.Error().Err(err).Str("enrollmentID", enrollment.ID.String()).Msg("Failed to update progress")
		return nil, repository.Translate(err, "progress")
	}

	if !wasCompleted && enrollment.Status == model.EnrollmentCompleted {
		title := "your course"
		if enrollment.Course != nil {
			title = enrollment.Course.Title
		}
		notifyCompleted(ctx, s.notifier, enrollment, title)
	}
	return s.progressResponse(ctx, enrollment)
}
