package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CurriculumService manages the ordered sections and lectures of a course.
type CurriculumService interface {
	ListSections(ctx context.Context, viewer Actor, courseID uuid.UUID) ([]dto.SectionResponseDTO, error)
	CreateSection(ctx context.Context, actor Actor, req dto.SectionCreateDTO) (*dto.SectionResponseDTO, error)
	UpdateSection(ctx context.Context, actor Actor, id uuid.UUID, req dto.SectionUpdateDTO) (*dto.SectionResponseDTO, error)
	DeleteSection(ctx context.Context, actor Actor, id uuid.UUID) error

	ListLectures(ctx context.Context, viewer Actor, sectionID uuid.UUID) ([]dto.LectureResponseDTO, error)
	CreateLecture(ctx context.Context, actor Actor, req dto.LectureCreateDTO) (*dto.LectureResponseDTO, error)
	UpdateLecture(ctx context.Context, actor Actor, id uuid.UUID, req dto.LectureUpdateDTO) (*dto.LectureResponseDTO, error)
	DeleteLecture(ctx context.Context, actor Actor, id uuid.UUID) error
}

type curriculumService struct {
	access         courseAccess
	sectionRepo    repository.SectionRepository
	lectureRepo    repository.LectureRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	notifier       NotificationService
	cache          *CourseCache
	db             *gorm.DB
}

// NewCurriculumService wires the service to its repositories and collaborators.
func NewCurriculumService(
	courseRepo repository.CourseRepository,
	sectionRepo repository.SectionRepository,
	lectureRepo repository.LectureRepository,
	enrollmentRepo repository.EnrollmentRepository,
	progressRepo repository.ProgressRepository,
	notifier NotificationService,
	cache *CourseCache,
	db *gorm.DB,
) CurriculumService {
	return &curriculumService{
		access:         courseAccess{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo},
		sectionRepo:    sectionRepo,
		lectureRepo:    lectureRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		notifier:       notifier,
		cache:          cache,
		db:             db,
	}
}

// viewableCourse loads the course and applies the draft visibility rule, then
// reports whether the viewer may see full lecture content.
func (s *curriculumService) viewableCourse(ctx context.Context, viewer Actor, courseID uuid.UUID) (*model.Course, bool, error) {
	course, err := s.access.course(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if !course.IsPublished() && !viewer.IsCourseStaff(course) {
		return nil, false, apierr.NotFound("course_not_found", "course not found")
	}
	full, err := s.access.canUse(ctx, viewer, course)
	if err != nil {
		return nil, false, err
	}
	return course, full, nil
}

func toLectureDTO(l *model.Lecture, full bool) dto.LectureResponseDTO {
	var resp dto.LectureResponseDTO
	copier.Copy(&resp, l)
	if !full && !l.Preview {
		resp.Content = ""
		resp.Locked = true
	}
	return resp
}

func toSectionDTO(sec *model.Section, full bool) dto.SectionResponseDTO {
	resp := dto.SectionResponseDTO{
		ID:        sec.ID,
		CourseID:  sec.CourseID,
		Title:     sec.Title,
		Order:     sec.Order,
		Lectures:  make([]dto.LectureResponseDTO, 0, len(sec.Lectures)),
		CreatedAt: sec.CreatedAt,
		UpdatedAt: sec.UpdatedAt,
	}
	for i := range sec.Lectures {
		resp.Lectures = append(resp.Lectures, toLectureDTO(&sec.Lectures[i], full))
	}
	return resp
}

func (s *curriculumService) ListSections(ctx context.Context, viewer Actor, courseID uuid.UUID) ([]dto.SectionResponseDTO, error) {
	_, full, err := s.viewableCourse(ctx, viewer, courseID)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SectionResponseDTO, 0, len(sections))
	for i := range sections {
		resp = append(resp, toSectionDTO(&sections[i], full))
	}
	return resp, nil
}

func (s *curriculumService) CreateSection(ctx context.Context, actor Actor, req dto.SectionCreateDTO) (*dto.SectionResponseDTO, error) {
	course, err := s.access.course(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, err
	}

	order, err := s.sectionOrder(ctx, course.ID, req.Order, nil)
	if err != nil {
		return nil, err
	}
	section := model.Section{CourseID: course.ID, Title: req.Title, Order: order}
	if err := s.sectionRepo.Create(ctx, &section); err != nil {
		return nil, orderConflict(err, "section")
	}
	log.Info().Str("sectionID", section.ID.String()).Str("courseID", course.ID.String()).Int("order", order).Msg("Section created")

	resp := toSectionDTO(&section, true)
	return &resp, nil
}

func (s *curriculumService) UpdateSection(ctx context.Context, actor Actor, id uuid.UUID, req dto.SectionUpdateDTO) (*dto.SectionResponseDTO, error) {
	section, course, err := s.staffSection(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		section.Title = *req.Title
	}
	if req.Order != nil && *req.Order != section.Order {
		order, err := s.sectionOrder(ctx, course.ID, req.Order, &section.ID)
		if err != nil {
			return nil, err
		}
		section.Order = order
	}
	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, orderConflict(err, "section")
	}
	resp := toSectionDTO(section, true)
	return &resp, nil
}

func (s *curriculumService) DeleteSection(ctx context.Context, actor Actor, id uuid.UUID) error {
	section, course, err := s.staffSection(ctx, actor, id)
	if err != nil {
		return err
	}
	completed, err := s.changeLectures(ctx, course, func(tx *gorm.DB) error {
		return s.sectionRepo.WithTx(tx).Delete(ctx, section.ID)
	})
	if err != nil {
		return repository.Translate(err, "section")
	}
	s.curriculumChanged(ctx, course, completed)
	return nil
}

func (s *curriculumService) staffSection(ctx context.Context, actor Actor, id uuid.UUID) (*model.Section, *model.Course, error) {
	section, err := s.sectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, repository.Translate(err, "section")
	}
	course, err := s.access.course(ctx, section.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, nil, err
	}
	return section, course, nil
}

// sectionOrder resolves the requested position, defaulting to the end.
func (s *curriculumService) sectionOrder(ctx context.Context, courseID uuid.UUID, requested *int, exclude *uuid.UUID) (int, error) {
	if requested == nil {
		max, err := s.sectionRepo.MaxOrder(ctx, courseID)
		return max + 1, err
	}
	taken, err := s.sectionRepo.OrderTaken(ctx, courseID, *requested, exclude)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, apierr.Conflict("order_taken", "order %d is already used in this course", *requested)
	}
	return *requested, nil
}

func (s *curriculumService) ListLectures(ctx context.Context, viewer Actor, sectionID uuid.UUID) ([]dto.LectureResponseDTO, error) {
	section, err := s.sectionRepo.FindByID(ctx, sectionID)
	if err != nil {
		return nil, repository.Translate(err, "section")
	}
	_, full, err := s.viewableCourse(ctx, viewer, section.CourseID)
	if err != nil {
		return nil, err
	}
	lectures, err := s.lectureRepo.FindBySectionID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.LectureResponseDTO, 0, len(lectures))
	for i := range lectures {
		resp = append(resp, toLectureDTO(&lectures[i], full))
	}
	return resp, nil
}

func (s *curriculumService) CreateLecture(ctx context.Context, actor Actor, req dto.LectureCreateDTO) (*dto.LectureResponseDTO, error) {
	section, course, err := s.staffSection(ctx, actor, req.SectionID)
	if err != nil {
		return nil, err
	}
	order, err := s.lectureOrder(ctx, section.ID, req.Order, nil)
	if err != nil {
		return nil, err
	}

	var lecture model.Lecture
	copier.Copy(&lecture, &req)
	lecture.Order = order
	if lecture.Type != model.LectureTypeVideo {
		lecture.Duration = ""
	}
	completed, err := s.changeLectures(ctx, course, func(tx *gorm.DB) error {
		return s.lectureRepo.WithTx(tx).Create(ctx, &lecture)
	})
	if err != nil {
		return nil, orderConflict(err, "lecture")
	}
	s.curriculumChanged(ctx, course, completed)
	log.Info().Str("lectureID", lecture.ID.String()).Str("sectionID", section.ID.String()).Int("order", order).Msg("Lecture created")

	resp := toLectureDTO(&lecture, true)
	return &resp, nil
}

func (s *curriculumService) UpdateLecture(ctx context.Context, actor Actor, id uuid.UUID, req dto.LectureUpdateDTO) (*dto.LectureResponseDTO, error) {
	lecture, err := s.lectureRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "lecture")
	}
	if _, _, err := s.staffSection(ctx, actor, lecture.SectionID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		lecture.Title = *req.Title
	}
	if req.Description != nil {
		lecture.Description = *req.Description
	}
	if req.Type != nil {
		lecture.Type = *req.Type
	}
	if req.Content != nil {
		lecture.Content = *req.Content
	}
	if req.Duration != nil {
		lecture.Duration = *req.Duration
	}
	if req.Preview != nil {
		lecture.Preview = *req.Preview
	}
	if lecture.Type != model.LectureTypeVideo {
		lecture.Duration = ""
	}
	if req.Order != nil && *req.Order != lecture.Order {
		order, err := s.lectureOrder(ctx, lecture.SectionID, req.Order, &lecture.ID)
		if err != nil {
			return nil, err
		}
		lecture.Order = order
	}
	if err := s.lectureRepo.Update(ctx, lecture); err != nil {
		return nil, orderConflict(err, "lecture")
	}
	resp := toLectureDTO(lecture, true)
	return &resp, nil
}

func (s *curriculumService) DeleteLecture(ctx context.Context, actor Actor, id uuid.UUID) error {
	lecture, err := s.lectureRepo.FindByID(ctx, id)
	if err != nil {
		return repository.Translate(err, "lecture")
	}
	_, course, err := s.staffSection(ctx, actor, lecture.SectionID)
	if err != nil {
		return err
	}
	completed, err := s.changeLectures(ctx, course, func(tx *gorm.DB) error {
		return s.lectureRepo.WithTx(tx).Delete(ctx, lecture.ID)
	})
	if err != nil {
		return repository.Translate(err, "lecture")
	}
	s.curriculumChanged(ctx, course, completed)
	return nil
}

func (s *curriculumService) lectureOrder(ctx context.Context, sectionID uuid.UUID, requested *int, exclude *uuid.UUID) (int, error) {
	if requested == nil {
		max, err := s.lectureRepo.MaxOrder(ctx, sectionID)
		return max + 1, err
	}
	taken, err := s.lectureRepo.OrderTaken(ctx, sectionID, *requested, exclude)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, apierr.Conflict("order_taken", "order %d is already used in this section", *requested)
	}
	return *requested, nil
}

// changeLectures runs a write that adds or removes lectures, then refreshes
// lectures_count and every enrollment's progress in the same transaction.
func (s *curriculumService) changeLectures(ctx context.Context, course *model.Course, write func(tx *gorm.DB) error) ([]model.Enrollment, error) {
	var completed []model.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := write(tx); err != nil {
			return err
		}
		if err := s.courseRepo.WithTx(tx).RefreshLecturesCount(ctx, course.ID); err != nil {
			return err
		}
		var err error
		completed, err = syncCourseProgress(ctx,
			s.enrollmentRepo.WithTx(tx), s.progressRepo.WithTx(tx), s.lectureRepo.WithTx(tx), course.ID)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("courseID", course.ID.String()).Msg("Failed to apply curriculum change")
	}
	return completed, err
}

func (s *curriculumService) curriculumChanged(ctx context.Context, course *model.Course, completed []model.Enrollment) {
	s.cache.Invalidate(ctx, course.ID, course.Slug)
	for i := range completed {
		notifyCompleted(ctx, s.notifier, &completed[i], course.Title)
	}
}

// orderConflict reports a unique (parent, order) violation lost to a race as order_taken.
func orderConflict(err error, entity string) error {
	translated := repository.Translate(err, entity)
	if apiErr, ok := apierr.As(translated); ok && apiErr.Code == "conflict" {
		return apierr.Conflict("order_taken", "%s order is already in use", entity)
	}
	return translated
}
