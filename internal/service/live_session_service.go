package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const upcomingSessionsLimit = 50

// LiveSessionService schedules live sessions and admits participants.
type LiveSessionService interface {
	CreateSession(ctx context.Context, actor Actor, req dto.LiveSessionCreateDTO) (*dto.LiveSessionResponseDTO, error)
	ListForCourse(ctx context.Context, viewer Actor, courseID uuid.UUID) ([]dto.LiveSessionResponseDTO, error)
	Upcoming(ctx context.Context, actor Actor) ([]dto.LiveSessionResponseDTO, error)
	// Join records attendance once per learner and returns the meeting link.
	Join(ctx context.Context, actor Actor, sessionID uuid.UUID) (*dto.JoinLiveSessionResponseDTO, error)
}

type liveSessionService struct {
	access      courseAccess
	sessionRepo repository.LiveSessionRepository
	notifier    NotificationService
	db          *gorm.DB
	now         func() time.Time
}

func NewLiveSessionService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	sessionRepo repository.LiveSessionRepository,
	notifier NotificationService,
	db *gorm.DB,
) LiveSessionService {
	return &liveSessionService{
		access:      courseAccess{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo},
		sessionRepo: sessionRepo,
		notifier:    notifier,
		db:          db,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func toLiveSessionDTO(s *model.LiveSession) dto.LiveSessionResponseDTO {
	return dto.LiveSessionResponseDTO{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		CourseID:        s.CourseID,
		InstructorID:    s.InstructorID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Status:          s.Status,
		MaxParticipants: s.MaxParticipants,
		CreatedAt:       s.CreatedAt,
	}
}

func toLiveSessionDTOs(sessions []model.LiveSession) []dto.LiveSessionResponseDTO {
	resp := make([]dto.LiveSessionResponseDTO, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, toLiveSessionDTO(&sessions[i]))
	}
	return resp
}

func (s *liveSessionService) CreateSession(ctx context.Context, actor Actor, req dto.LiveSessionCreateDTO) (*dto.LiveSessionResponseDTO, error) {
	course, err := s.access.course(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apierr.BadRequest("invalid_schedule", "end_time must be after start_time")
	}

	session := model.LiveSession{
		Title:           req.Title,
		Description:     req.Description,
		CourseID:        course.ID,
		InstructorID:    actor.ID,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		MeetingURL:      req.MeetingURL,
		Status:          model.LiveSessionScheduled,
		MaxParticipants: req.MaxParticipants,
	}
	if err := s.sessionRepo.Create(ctx, &session); err != nil {
		log.Error().Err(err).Str("courseID", course.ID.String()).Msg("Failed to create live session")
		return nil, repository.Translate(err, "live_session")
	}
	log.Info().Str("sessionID", session.ID.String()).Str("courseID", course.ID.String()).Msg("Live session scheduled")

	resp := toLiveSessionDTO(&session)
	return &resp, nil
}

func (s *liveSessionService) ListForCourse(ctx context.Context, viewer Actor, courseID uuid.UUID) ([]dto.LiveSessionResponseDTO, error) {
	course, err := s.access.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireUse(ctx, viewer, course); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.FindByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return toLiveSessionDTOs(sessions), nil
}

func (s *liveSessionService) Upcoming(ctx context.Context, actor Actor) ([]dto.LiveSessionResponseDTO, error) {
	sessions, err := s.sessionRepo.FindUpcomingForUser(ctx, actor.ID, s.now(), upcomingSessionsLimit)
	if err != nil {
		return nil, err
	}
	return toLiveSessionDTOs(sessions), nil
}

func (s *liveSessionService) Join(ctx context.Context, actor Actor, sessionID uuid.UUID) (*dto.JoinLiveSessionResponseDTO, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, repository.Translate(err, "live_session")
	}
	course, err := s.access.course(ctx, session.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireUse(ctx, actor, course); err != nil {
		return nil, err
	}
	switch {
	case session.Status == model.LiveSessionCancelled, session.Status == model.LiveSessionCompleted:
		return nil, apierr.Conflict("session_closed", "this session is %s", session.Status)
	case !session.EndTime.After(s.now()):
		return nil, apierr.Conflict("session_closed", "this session has already ended")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sessionRepo.WithTx(tx)
		if _, err := repo.LockByID(ctx, session.ID); err != nil {
			return repository.Translate(err, "live_session")
		}
		joined, err := repo.IsAttendee(ctx, session.ID, actor.ID)
		if err != nil || joined {
			return err
		}
		if session.MaxParticipants != nil {
			count, err := repo.CountAttendees(ctx, session.ID)
			if err != nil {
				return err
			}
			if count >= int64(*session.MaxParticipants) {
				return apierr.Conflict("session_full", "this session is full")
			}
		}
		return repo.AddAttendee(ctx, &model.LiveSessionAttendee{
			LiveSessionID: session.ID,
			UserID:        actor.ID,
			JoinedAt:      s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("sessionID", session.ID.String()).Str("userID", actor.ID.String()).Msg("User joined live session")

	return &dto.JoinLiveSessionResponseDTO{
		MeetingURL: session.MeetingURL,
		Session:    toLiveSessionDTO(session),
	}, nil
}
