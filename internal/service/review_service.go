package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReviewService lists and records course reviews.
type ReviewService interface {
	List(ctx context.Context, courseID uuid.UUID) ([]dto.ReviewResponseDTO, error)
	Create(ctx context.Context, actor Actor, courseID uuid.UUID, req dto.ReviewCreateDTO) (*dto.ReviewResponseDTO, error)
}

type reviewService struct {
	access     courseAccess
	reviewRepo repository.ReviewRepository
	cache      *CourseCache
	db         *gorm.DB
}

func NewReviewService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	reviewRepo repository.ReviewRepository,
	cache *CourseCache,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		access:     courseAccess{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo},
		reviewRepo: reviewRepo,
		cache:      cache,
		db:         db,
	}
}

func toReviewDTO(r *model.Review) dto.ReviewResponseDTO {
	resp := dto.ReviewResponseDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		resp.User = &dto.UserSummaryDTO{ID: r.User.ID, Name: r.User.Name, Avatar: r.User.Avatar}
	}
	return resp
}

func (s *reviewService) List(ctx context.Context, courseID uuid.UUID) ([]dto.ReviewResponseDTO, error) {
	if _, err := s.access.course(ctx, courseID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReviewResponseDTO, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, toReviewDTO(&reviews[i]))
	}
	return resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor Actor, courseID uuid.UUID, req dto.ReviewCreateDTO) (*dto.ReviewResponseDTO, error) {
	course, err := s.access.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.access.enrollmentRepo.HasAccess(ctx, actor.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apierr.Forbidden("not_enrolled", "only enrolled learners may review this course")
	}

	review := model.Review{UserID: actor.ID, CourseID: course.ID, Rating: req.Rating, Comment: req.Comment}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)
		exists, err := reviews.Exists(ctx, actor.ID, course.ID)
		if err != nil {
			return err
		}
		if exists {
			return apierr.Conflict("already_reviewed", "you have already reviewed this course")
		}
		if err := reviews.Create(ctx, &review); err != nil {
			return err
		}
		return s.access.courseRepo.WithTx(tx).RefreshRating(ctx, course.ID)
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		if apierr.Is(repository.Translate(err, "review"), http.StatusConflict) {
			return nil, apierr.Conflict("already_reviewed", "you have already reviewed this course")
		}
		log.Error().Err(err).Str("courseID", course.ID.String()).Msg("Failed to create review")
		return nil, err
	}
	s.cache.Invalidate(ctx, course.ID, course.Slug)

	resp := toReviewDTO(&review)
	return &resp, nil
}
