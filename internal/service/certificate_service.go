package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/platform/certificate"
	"github.com/lshigami/vaikuntha/internal/platform/storage"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
)

const codeAttempts = 5

// CertificateRenderer draws a certificate image.
type CertificateRenderer interface {
	Render(d certificate.Details) ([]byte, error)
}

// CertificateService issues completion certificates and verifies them by code.
type CertificateService interface {
	// GetOrIssue returns the learner's certificate, issuing it on first request once the enrollment is completed.
	GetOrIssue(ctx context.Context, actor Actor, courseID uuid.UUID) (*dto.CertificateResponseDTO, error)
	// Verify looks a certificate up by its public code.
	Verify(ctx context.Context, code string) (*dto.CertificateVerificationDTO, error)
}

type certificateService struct {
	certRepo       repository.CertificateRepository
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	userRepo       repository.UserRepository
	store          storage.Store
	renderer       CertificateRenderer
	now            func() time.Time
}

// NewCertificateService wires the service to its repositories and collaborators.
func NewCertificateService(
	certRepo repository.CertificateRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	store storage.Store,
	renderer CertificateRenderer,
) CertificateService {
	return &certificateService{
		certRepo:       certRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		store:          store,
		renderer:       renderer,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func toCertificateDTO(c *model.Certificate) dto.CertificateResponseDTO {
	return dto.CertificateResponseDTO{
		ID:               c.ID,
		UserID:           c.UserID,
		CourseID:         c.CourseID,
		IssueDate:        c.IssueDate,
		CertificateURL:   c.CertificateURL,
		VerificationCode: c.VerificationCode,
	}
}

// NewVerificationCode returns a code of the form VK-XXXX-XXXX-XXXX.
func NewVerificationCode() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)[:12]
	return fmt.Sprintf("VK-%s-%s-%s", s[0:4], s[4:8], s[8:12]), nil
}

func (s *certificateService) GetOrIssue(ctx context.Context, actor Actor, courseID uuid.UUID) (*dto.CertificateResponseDTO, error) {
	existing, err := s.certRepo.FindByUserAndCourse(ctx, actor.ID, courseID)
	if err == nil {
		resp := toCertificateDTO(existing)
		return &resp, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindByUserAndCourse(ctx, actor.ID, courseID)
	if err != nil {
		return nil, repository.Translate(err, "enrollment")
	}
	if enrollment.Status != model.EnrollmentCompleted {
		return nil, apierr.Conflict("course_not_completed", "complete the course to receive a certificate")
	}
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	learner, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repository.Translate(err, "user")
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	cert := model.Certificate{
		UserID:           learner.ID,
		CourseID:         course.ID,
		IssueDate:        s.now(),
		VerificationCode: code,
	}

	details := certificate.Details{
		LearnerName:      learner.Name,
		CourseTitle:      course.Title,
		IssueDate:        cert.IssueDate,
		VerificationCode: code,
	}
	if course.Instructor != nil {
		details.InstructorName = course.Instructor.Name
	}
	png, err := s.renderer.Render(details)
	if err != nil {
		log.Error().Err(err).Str("courseID", course.ID.String()).Msg("Failed to render certificate")
		return nil, err
	}
	key := fmt.Sprintf("certificates/%s/%s.png", course.ID, learner.ID)
	if err := s.store.Put(ctx, key, bytes.NewReader(png), "image/png"); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to store certificate")
		return nil, err
	}
	cert.CertificateURL = s.store.PublicURL(key)

	if err := s.certRepo.Create(ctx, &cert); err != nil {
		// A concurrent request may have issued it first.
		if apierr.Is(repository.Translate(err, "certificate"), http.StatusConflict) {
			if again, ferr := s.certRepo.FindByUserAndCourse(ctx, actor.ID, courseID); ferr == nil {
				resp := toCertificateDTO(again)
				return &resp, nil
			}
		}
		return nil, repository.Translate(err, "certificate")
	}
	log.Info().Str("userID", learner.ID.String()).Str("courseID", course.ID.String()).Str("code", code).Msg("Certificate issued")

	resp := toCertificateDTO(&cert)
	return &resp, nil
}

func (s *certificateService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			return "", err
		}
		taken, err := s.certRepo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique verification code")
}

func (s *certificateService) Verify(ctx context.Context, code string) (*dto.CertificateVerificationDTO, error) {
	cert, err := s.certRepo.FindByVerificationCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, repository.Translate(err, "certificate")
	}
	resp := &dto.CertificateVerificationDTO{
		Valid:       true,
		Certificate: toCertificateDTO(cert),
	}
	if cert.User != nil {
		resp.LearnerName = cert.User.Name
	}
	if cert.Course != nil {
		resp.CourseTitle = cert.Course.Title
	}
	return resp, nil
}
