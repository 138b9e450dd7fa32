package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/platform/storage"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
)

// AssignmentService manages assignments and the learner submissions graded against them.
type AssignmentService interface {
	CreateAssignment(ctx context.Context, actor Actor, req dto.AssignmentCreateDTO) (*dto.AssignmentResponseDTO, error)
	GetAssignment(ctx context.Context, viewer Actor, id uuid.UUID) (*dto.AssignmentResponseDTO, error)
	// Submit stores the learner's answer, with an optional attachment, before the due date.
	Submit(ctx context.Context, actor Actor, id uuid.UUID, req dto.AssignmentSubmitDTO, file *dto.FileUpload) (*dto.AssignmentSubmissionResponseDTO, error)
	// Grade records a staff grade within [0, points] and notifies the learner.
	Grade(ctx context.Context, actor Actor, submissionID uuid.UUID, req dto.AssignmentGradeDTO) (*dto.AssignmentSubmissionResponseDTO, error)
	// SuggestFeedback asks the reviewer model for a grade and feedback; nothing is stored.
	SuggestFeedback(ctx context.Context, actor Actor, submissionID uuid.UUID) (*dto.AIFeedbackResponseDTO, error)
}

type assignmentService struct {
	access         courseAccess
	assignmentRepo repository.AssignmentRepository
	lectureRepo    repository.LectureRepository
	store          storage.Store
	reviewer       AssignmentReviewer
	notifier       NotificationService
	maxUpload      int64
	now            func() time.Time
}

// NewAssignmentService wires the service to its repositories and collaborators.
func NewAssignmentService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	assignmentRepo repository.AssignmentRepository,
	lectureRepo repository.LectureRepository,
	store storage.Store,
	reviewer AssignmentReviewer,
	notifier NotificationService,
	cfg *config.Config,
) AssignmentService {
	return &assignmentService{
		access:         courseAccess{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo},
		assignmentRepo: assignmentRepo,
		lectureRepo:    lectureRepo,
		store:          store,
		reviewer:       reviewer,
		notifier:       notifier,
		maxUpload:      cfg.Media.MaxUploadBytes,
		now:            time.Now,
	}
}

func toAssignmentSubmissionDTO(sub *model.AssignmentSubmission) dto.AssignmentSubmissionResponseDTO {
	var resp dto.AssignmentSubmissionResponseDTO
	copier.Copy(&resp, sub)
	return resp
}

func (s *assignmentService) CreateAssignment(ctx context.Context, actor Actor, req dto.AssignmentCreateDTO) (*dto.AssignmentResponseDTO, error) {
	course, err := s.access.course(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, err
	}
	if req.LectureID != nil {
		belongs, err := s.lectureRepo.BelongsToCourse(ctx, *req.LectureID, course.ID)
		if err != nil {
			return nil, err
		}
		if !belongs {
			return nil, apierr.BadRequest("lecture_not_in_course", "lecture does not belong to this course")
		}
		taken, err := s.assignmentRepo.LectureHasAssignment(ctx, *req.LectureID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierr.Conflict("lecture_has_assignment", "lecture already has an assignment")
		}
	}

	assignment := model.Assignment{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    course.ID,
		LectureID:   req.LectureID,
		Points:      req.Points,
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		assignment.DueDate = &due
	}
	if assignment.Points <= 0 {
		assignment.Points = 100
	}
	if err := s.assignmentRepo.Create(ctx, &assignment); err != nil {
		return nil, repository.Translate(err, "assignment")
	}
	log.Info().Str("assignmentID", assignment.ID.String()).Str("courseID", course.ID.String()).Msg("Assignment created")

	var resp dto.AssignmentResponseDTO
	copier.Copy(&resp, &assignment)
	return &resp, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, viewer Actor, id uuid.UUID) (*dto.AssignmentResponseDTO, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "assignment")
	}
	course, err := s.access.course(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireUse(ctx, viewer, course); err != nil {
		return nil, err
	}

	var resp dto.AssignmentResponseDTO
	copier.Copy(&resp, assignment)
	subs, err := s.assignmentRepo.FindSubmissionsByUser(ctx, assignment.ID, viewer.ID)
	if err != nil {
		return nil, err
	}
	resp.MySubmissions = make([]dto.AssignmentSubmissionResponseDTO, 0, len(subs))
	for i := range subs {
		resp.MySubmissions = append(resp.MySubmissions, toAssignmentSubmissionDTO(&subs[i]))
	}
	return &resp, nil
}

func (s *assignmentService) Submit(ctx context.Context, actor Actor, id uuid.UUID, req dto.AssignmentSubmitDTO, file *dto.FileUpload) (*dto.AssignmentSubmissionResponseDTO, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "assignment")
	}
	enrolled, err := s.access.enrollmentRepo.HasAccess(ctx, actor.ID, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apierr.Forbidden("not_enrolled", "you must be enrolled in this course")
	}

	now := s.now().UTC()
	if assignment.DueDate != nil && now.After(*assignment.DueDate) {
		return nil, apierr.Conflict("past_due", "the due date for this assignment has passed")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" && file == nil {
		return nil, apierr.Validation("content or file is required")
	}

	submission := model.AssignmentSubmission{
		AssignmentID: assignment.ID,
		UserID:       actor.ID,
		Content:      content,
		SubmittedAt:  now,
	}
	if file != nil {
		if s.maxUpload > 0 && file.Size > s.maxUpload {
			return nil, apierr.TooLarge("file_too_large", "file exceeds the %d byte limit", s.maxUpload)
		}
		key := path.Join("assignments", assignment.ID.String(), actor.ID.String(), uuid.NewString()+strings.ToLower(path.Ext(file.Filename)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = storage.ContentTypeForKey(key)
		}
		if err := s.store.Put(ctx, key, file.Body, contentType); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to store assignment file")
			return nil, err
		}
		submission.FileURL = s.store.PublicURL(key)
	}

	if err := s.assignmentRepo.CreateSubmission(ctx, &submission); err != nil {
		return nil, repository.Translate(err, "assignment submission")
	}
	log.Info().Str("assignmentID", assignment.ID.String()).Str("userID", actor.ID.String()).Msg("Assignment submitted")

	resp := toAssignmentSubmissionDTO(&submission)
	return &resp, nil
}

// staffSubmission loads a submission and checks the actor teaches its course.
func (s *assignmentService) staffSubmission(ctx context.Context, actor Actor, id uuid.UUID) (*model.AssignmentSubmission, error) {
	sub, err := s.assignmentRepo.FindSubmissionByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "submission")
	}
	course, err := s.access.course(ctx, sub.Assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *assignmentService) Grade(ctx context.Context, actor Actor, submissionID uuid.UUID, req dto.AssignmentGradeDTO) (*dto.AssignmentSubmissionResponseDTO, error) {
	sub, err := s.staffSubmission(ctx, actor, submissionID)
	if err != nil {
		return nil, err
	}
	grade := *req.Grade
	if grade < 0 || grade > float64(sub.Assignment.Points) {
		return nil, apierr.Validation(fmt.Sprintf("grade must be between 0 and %d", sub.Assignment.Points))
	}

	now := s.now().UTC()
	sub.Grade = &grade
	sub.Feedback = req.Feedback
	sub.GradedAt = &now
	if err := s.assignmentRepo.UpdateSubmission(ctx, sub); err != nil {
		return nil, repository.Translate(err, "submission")
	}

	s.notifier.Notify(ctx, sub.UserID, model.NotificationInfo, "Assignment graded",
		fmt.Sprintf("%s was graded: %.2f/%d.", sub.Assignment.Title, grade, sub.Assignment.Points),
		"/assignments/"+sub.AssignmentID.String())

	resp := toAssignmentSubmissionDTO(sub)
	return &resp, nil
}

func (s *assignmentService) SuggestFeedback(ctx context.Context, actor Actor, submissionID uuid.UUID) (*dto.AIFeedbackResponseDTO, error) {
	sub, err := s.staffSubmission(ctx, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub.Content) == "" {
		return nil, apierr.BadRequest("no_text_content", "only text submissions can be reviewed")
	}

	feedback, score, err := s.reviewer.Review(ctx, ReviewRequest{
		AssignmentTitle:       sub.Assignment.Title,
		AssignmentDescription: sub.Assignment.Description,
		MaxPoints:             float64(sub.Assignment.Points),
		Submission:            sub.Content,
	})
	if err != nil {
		if errors.Is(err, ErrReviewerUnavailable) {
			return nil, apierr.Unavailable("ai_unavailable", "AI review is not configured")
		}
		log.Error().Err(err).Str("submissionID", sub.ID.String()).Msg("AI review failed")
		return nil, apierr.New(http.StatusBadGateway, "ai_failed", err)
	}

	return &dto.AIFeedbackResponseDTO{
		SubmissionID:   sub.ID,
		SuggestedGrade: round2(score),
		MaxPoints:      sub.Assignment.Points,
		Feedback:       feedback,
	}, nil
}
