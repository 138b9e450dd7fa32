package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxPage keeps (page-1)*limit far from int overflow.
	maxPage = 100000
)

// CourseService handles the course catalog and course authoring.
type CourseService interface {
	// List pages through published courses matching the query.
	List(ctx context.Context, query dto.CourseListQuery) (*dto.PaginatedResponse, error)
	// Get and GetBySlug return the same representation; drafts are visible to their staff only.
	Get(ctx context.Context, viewer Actor, id uuid.UUID) (*dto.CourseResponseDTO, error)
	GetBySlug(ctx context.Context, viewer Actor, slug string) (*dto.CourseResponseDTO, error)
	Create(ctx context.Context, actor Actor, req dto.CourseCreateDTO) (*dto.CourseResponseDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.CourseUpdateDTO) (*dto.CourseResponseDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type courseService struct {
	courseRepo repository.CourseRepository
	cache      *CourseCache
}

func NewCourseService(courseRepo repository.CourseRepository, cache *CourseCache) CourseService {
	return &courseService{courseRepo: courseRepo, cache: cache}
}

func toCourseDTO(course *model.Course) dto.CourseResponseDTO {
	var resp dto.CourseResponseDTO
	copier.Copy(&resp, course)
	resp.EffectivePrice = course.EffectivePrice()
	resp.Instructor = nil
	if course.Instructor != nil {
		resp.Instructor = &dto.UserSummaryDTO{
			ID:     course.Instructor.ID,
			Name:   course.Instructor.Name,
			Avatar: course.Instructor.Avatar,
		}
	}
	return resp
}

func (s *courseService) List(ctx context.Context, q dto.CourseListQuery) (*dto.PaginatedResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := repository.CourseFilter{
		Category: strings.TrimSpace(q.Category),
		Level:    q.Level,
		Search:   q.Search,
		Status:   model.CourseStatusPublished,
		Featured: q.Featured,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}
	if q.InstructorID != "" {
		id, err := uuid.Parse(q.InstructorID)
		if err != nil {
			return nil, apierr.BadRequest("invalid_id", "instructor_id is not a valid id")
		}
		filter.InstructorID = &id
	}

	courses, total, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list courses")
		return nil, err
	}
	data := make([]dto.CourseResponseDTO, 0, len(courses))
	for i := range courses {
		data = append(data, toCourseDTO(&courses[i]))
	}
	resp := dto.NewPaginatedResponse(data, total, page, limit)
	return &resp, nil
}

func (s *courseService) Get(ctx context.Context, viewer Actor, id uuid.UUID) (*dto.CourseResponseDTO, error) {
	if resp, ok := s.cache.ByID(ctx, id); ok {
		return s.visible(viewer, resp)
	}
	course, err := s.courseRepo.FindByID(ctx, id)
	return s.load(ctx, viewer, course, err)
}

func (s *courseService) GetBySlug(ctx context.Context, viewer Actor, slug string) (*dto.CourseResponseDTO, error) {
	if resp, ok := s.cache.BySlug(ctx, slug); ok {
		return s.visible(viewer, resp)
	}
	course, err := s.courseRepo.FindBySlug(ctx, slug)
	return s.load(ctx, viewer, course, err)
}

// load is the shared tail of both lookups so id and slug reads render the same response.
func (s *courseService) load(ctx context.Context, viewer Actor, course *model.Course, err error) (*dto.CourseResponseDTO, error) {
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	resp := toCourseDTO(course)
	s.cache.Put(ctx, &resp)
	return s.visible(viewer, &resp)
}

// visible hides unpublished courses from everyone but their staff.
func (s *courseService) visible(viewer Actor, resp *dto.CourseResponseDTO) (*dto.CourseResponseDTO, error) {
	if resp.Status == model.CourseStatusPublished {
		return resp, nil
	}
	if viewer.Authenticated() && (viewer.IsAdmin() || viewer.ID == resp.InstructorID) {
		return resp, nil
	}
	return nil, apierr.NotFound("course_not_found", "course not found")
}

func checkDiscount(price float64, discount *float64) error {
	if discount != nil && *discount >= price {
		return apierr.Validation("discount_price must be lower than price")
	}
	return nil
}

// uniqueSlug appends -2, -3, ... to base until it is free.
func (s *courseService) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 2; n < 1000; n++ {
		taken, err := s.courseRepo.SlugExists(ctx, candidate, nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, req dto.CourseCreateDTO) (*dto.CourseResponseDTO, error) {
	if !actor.IsStaffRole() {
		return nil, apierr.Forbidden("forbidden", "only instructors and admins may create courses")
	}
	if err := checkDiscount(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}

	var course model.Course
	copier.Copy(&course, &req)
	course.InstructorID = actor.ID
	if course.Status == "" {
		course.Status = model.CourseStatusDraft
	}

	if req.Slug != "" {
		taken, err := s.courseRepo.SlugExists(ctx, req.Slug, nil)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierr.Conflict("slug_taken", "slug %q is already in use", req.Slug)
		}
		course.Slug = req.Slug
	} else {
		slug, err := s.uniqueSlug(ctx, Slugify(req.Title))
		if err != nil {
			return nil, err
		}
		course.Slug = slug
	}

	if err := s.courseRepo.Create(ctx, &course); err != nil {
		log.Error().Err(err).Str("slug", course.Slug).Msg("Failed to create course")
		if apierr.Is(repository.Translate(err, "course"), http.StatusConflict) {
			return nil, apierr.Conflict("slug_taken", "slug %q is already in use", course.Slug)
		}
		return nil, err
	}
	log.Info().Str("courseID", course.ID.String()).Str("instructorID", actor.ID.String()).Msg("Course created")

	created, err := s.courseRepo.FindByID(ctx, course.ID)
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	resp := toCourseDTO(created)
	return &resp, nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.CourseUpdateDTO) (*dto.CourseResponseDTO, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, err
	}
	oldSlug := course.Slug

	if req.Slug != nil && *req.Slug != course.Slug {
		taken, err := s.courseRepo.SlugExists(ctx, *req.Slug, &course.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierr.Conflict("slug_taken", "slug %q is already in use", *req.Slug)
		}
		course.Slug = *req.Slug
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.ShortDescription != nil {
		course.ShortDescription = *req.ShortDescription
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.ClearDiscount {
		course.DiscountPrice = nil
	} else if req.DiscountPrice != nil {
		d := *req.DiscountPrice
		course.DiscountPrice = &d
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Featured != nil {
		course.Featured = *req.Featured
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
	if err := checkDiscount(course.Price, course.DiscountPrice); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, repository.Translate(err, "course")
	}
	s.cache.Invalidate(ctx, course.ID, oldSlug, course.Slug)

	resp := toCourseDTO(course)
	return &resp, nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return repository.Translate(err, "course")
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return err
	}
	busy, err := s.courseRepo.HasLearnerRecords(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return apierr.Conflict("course_has_enrollments", "course has enrollments, payments or certificates and cannot be deleted")
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return repository.Translate(err, "course")
	}
	s.cache.Invalidate(ctx, course.ID, course.Slug)
	log.Info().Str("courseID", id.String()).Str("by", actor.ID.String()).Msg("Course deleted")
	return nil
}
