package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
)

// UserService reads and edits user profiles.
type UserService interface {
	GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*dto.UserResponseDTO, error)
	UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req dto.UserUpdateDTO) (*dto.UserResponseDTO, error)
	ListEnrollments(ctx context.Context, actor Actor, userID uuid.UUID) ([]dto.EnrollmentResponseDTO, error)
}

type userService struct {
	userRepo       repository.UserRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewUserService(userRepo repository.UserRepository, enrollmentRepo repository.EnrollmentRepository) UserService {
	return &userService{userRepo: userRepo, enrollmentRepo: enrollmentRepo}
}

func (s *userService) GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*dto.UserResponseDTO, error) {
	if !actor.IsSelfOrAdmin(id) {
		return nil, apierr.Forbidden("forbidden", "you may only view your own profile")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "user")
	}
	var resp dto.UserResponseDTO
	copier.Copy(&resp, user)
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req dto.UserUpdateDTO) (*dto.UserResponseDTO, error) {
	if !actor.IsSelfOrAdmin(id) {
		return nil, apierr.Forbidden("forbidden", "you may only update your own profile")
	}
	if (req.Role != nil || req.IsActive != nil) && !actor.IsAdmin() {
		return nil, apierr.Forbidden("forbidden", "only admins may change role or account status")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "user")
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			taken, err := s.userRepo.EmailExists(ctx, email, &user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apierr.Conflict("email_taken", "email is already registered")
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, repository.Translate(err, "user")
	}
	log.Info().Str("userID", user.ID.String()).Str("by", actor.ID.String()).Msg("User updated")

	var resp dto.UserResponseDTO
	copier.Copy(&resp, user)
	return &resp, nil
}

func (s *userService) ListEnrollments(ctx context.Context, actor Actor, userID uuid.UUID) ([]dto.EnrollmentResponseDTO, error) {
	if !actor.IsSelfOrAdmin(userID) {
		return nil, apierr.Forbidden("forbidden", "you may only view your own enrollments")
	}
	enrollments, err := s.enrollmentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.EnrollmentResponseDTO, 0, len(enrollments))
	for i := range enrollments {
		resp = append(resp, toEnrollmentDTO(&enrollments[i]))
	}
	return resp, nil
}

func toEnrollmentDTO(e *model.Enrollment) dto.EnrollmentResponseDTO {
	resp := dto.EnrollmentResponseDTO{
		ID:             e.ID,
		UserID:         e.UserID,
		CourseID:       e.CourseID,
		EnrollmentDate: e.EnrollmentDate,
		CompletionDate: e.CompletionDate,
		Progress:       e.Progress,
		Status:         e.Status,
	}
	if e.Course != nil {
		resp.Course = toCourseSummary(e.Course)
	}
	return resp
}

func toCourseSummary(c *model.Course) *dto.CourseSummaryDTO {
	return &dto.CourseSummaryDTO{ID: c.ID, Title: c.Title, Slug: c.Slug, Thumbnail: c.Thumbnail}
}
