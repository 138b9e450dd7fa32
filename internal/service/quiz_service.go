package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuizService authors quizzes and grades learner attempts.
type QuizService interface {
	CreateQuiz(ctx context.Context, actor Actor, req dto.QuizCreateDTO) (*dto.QuizResponseDTO, error)
	GetQuiz(ctx context.Context, viewer Actor, id uuid.UUID) (*dto.QuizResponseDTO, error)
	// Submit grades an attempt and stores it, enforcing the attempt limit.
	Submit(ctx context.Context, actor Actor, quizID uuid.UUID, req dto.QuizSubmitDTO) (*dto.QuizSubmissionResponseDTO, error)
	ListSubmissions(ctx context.Context, actor Actor, quizID uuid.UUID) ([]dto.QuizSubmissionResponseDTO, error)
}

type quizService struct {
	access         courseAccess
	quizRepo       repository.QuizRepository
	submissionRepo repository.QuizSubmissionRepository
	lectureRepo    repository.LectureRepository
	notifier       NotificationService
	db             *gorm.DB
}

// NewQuizService wires the service to its repositories and collaborators.
func NewQuizService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	quizRepo repository.QuizRepository,
	submissionRepo repository.QuizSubmissionRepository,
	lectureRepo repository.LectureRepository,
	notifier NotificationService,
	db *gorm.DB,
) QuizService {
	return &quizService{
		access:         courseAccess{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo},
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		lectureRepo:    lectureRepo,
		notifier:       notifier,
		db:             db,
	}
}

func toQuizDTO(quiz *model.Quiz, showAnswers bool, attemptsUsed int64) dto.QuizResponseDTO {
	resp := dto.QuizResponseDTO{
		ID:           quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		CourseID:     quiz.CourseID,
		LectureID:    quiz.LectureID,
		TimeLimit:    quiz.TimeLimit,
		PassScore:    quiz.PassScore,
		Attempts:     quiz.Attempts,
		AttemptsUsed: attemptsUsed,
		Questions:    make([]dto.QuizQuestionDTO, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		qd := dto.QuizQuestionDTO{
			ID:      q.ID,
			Text:    q.Text,
			Type:    q.Type,
			Points:  q.Points,
			Order:   q.Order,
			Options: make([]dto.QuizOptionDTO, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			od := dto.QuizOptionDTO{ID: o.ID, Text: o.Text}
			if showAnswers {
				correct := o.IsCorrect
				od.IsCorrect = &correct
			}
			qd.Options = append(qd.Options, od)
		}
		resp.Questions = append(resp.Questions, qd)
	}
	return resp
}

func (s *quizService) CreateQuiz(ctx context.Context, actor Actor, req dto.QuizCreateDTO) (*dto.QuizResponseDTO, error) {
	course, err := s.access.course(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseStaff(actor, course); err != nil {
		return nil, err
	}
	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}
	if req.LectureID != nil {
		if err := s.checkLecture(ctx, *req.LectureID, course.ID); err != nil {
			return nil, err
		}
	}

	quiz := model.Quiz{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    course.ID,
		LectureID:   req.LectureID,
		TimeLimit:   req.TimeLimit,
		PassScore:   req.PassScore,
		Attempts:    req.Attempts,
	}
	if quiz.Attempts < 1 {
		quiz.Attempts = 1
	}
	for i, q := range req.Questions {
		question := model.QuizQuestion{Text: q.Text, Type: q.Type, Points: q.Points, Order: i + 1}
		if question.Points < 1 {
			question.Points = 1
		}
		for j, o := range q.Options {
			question.Options = append(question.Options, model.QuizOption{Text: o.Text, IsCorrect: o.IsCorrect, Order: j + 1})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.quizRepo.Create(ctx, &quiz); err != nil {
		log.Error().Err(err).Str("courseID", course.ID.String()).Msg("Failed to create quiz")
		if apierr.Is(repository.Translate(err, "quiz"), http.StatusConflict) {
			return nil, apierr.Conflict("lecture_has_quiz", "lecture already has a quiz")
		}
		return nil, err
	}
	log.Info().Str("quizID", quiz.ID.String()).Int("questions", len(quiz.Questions)).Msg("Quiz created")

	resp := toQuizDTO(&quiz, true, 0)
	return &resp, nil
}

func (s *quizService) checkLecture(ctx context.Context, lectureID, courseID uuid.UUID) error {
	belongs, err := s.lectureRepo.BelongsToCourse(ctx, lectureID, courseID)
	if err != nil {
		return err
	}
	if !belongs {
		return apierr.BadRequest("lecture_not_in_course", "lecture does not belong to this course")
	}
	taken, err := s.quizRepo.LectureHasQuiz(ctx, lectureID)
	if err != nil {
		return err
	}
	if taken {
		return apierr.Conflict("lecture_has_quiz", "lecture already has a quiz")
	}
	return nil
}

func (s *quizService) GetQuiz(ctx context.Context, viewer Actor, id uuid.UUID) (*dto.QuizResponseDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "quiz")
	}
	course, err := s.access.course(ctx, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireUse(ctx, viewer, course); err != nil {
		return nil, err
	}
	used, err := s.submissionRepo.CountByQuizAndUser(ctx, quiz.ID, viewer.ID)
	if err != nil {
		return nil, err
	}
	resp := toQuizDTO(quiz, viewer.IsCourseStaff(course), used)
	return &resp, nil
}

func (s *quizService) Submit(ctx context.Context, actor Actor, quizID uuid.UUID, req dto.QuizSubmitDTO) (*dto.QuizSubmissionResponseDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(ctx, quizID)
	if err != nil {
		return nil, repository.Translate(err, "quiz")
	}
	enrolled, err := s.access.enrollmentRepo.HasAccess(ctx, actor.ID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apierr.Forbidden("not_enrolled", "you must be enrolled in this course")
	}

	result, err := gradeQuiz(quiz, req.Answers, req.TimeSpent)
	if err != nil {
		return nil, err
	}

	submission := model.QuizSubmission{
		QuizID:      quiz.ID,
		UserID:      actor.ID,
		Score:       result.Score,
		Passed:      result.Passed,
		TimeSpent:   req.TimeSpent,
		SubmittedAt: time.Now().UTC(),
		Answers:     result.Answers,
	}

	var used int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the enrollment row lock keeps concurrent attempts by one learner in line
		if _, err := s.access.enrollmentRepo.WithTx(tx).LockByUserAndCourse(ctx, actor.ID, quiz.CourseID); err != nil {
			return repository.Translate(err, "enrollment")
		}
		repo := s.submissionRepo.WithTx(tx)
		count, err := repo.CountByQuizAndUser(ctx, quiz.ID, actor.ID)
		if err != nil {
			return err
		}
		if count >= int64(quiz.Attempts) {
			return apierr.Conflict("attempts_exhausted", "no attempts left for this quiz (%d allowed)", quiz.Attempts)
		}
		if err := repo.Create(ctx, &submission); err != nil {
			return err
		}
		used = count + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("quizID", quiz.ID.String()).
		Str("userID", actor.ID.String()).
		Float64("score", result.Score).
		Bool("passed", result.Passed).
		Bool("late", result.Late).
		Msg("Quiz submitted")

	if result.Passed {
		s.notifier.Notify(ctx, actor.ID, model.NotificationSuccess, "Quiz passed",
			fmt.Sprintf("You passed %s with %.2f%%.", quiz.Title, result.Score), "/quizzes/"+quiz.ID.String())
	}

	resp := toSubmissionDTO(&submission)
	resp.AttemptsRemaining = quiz.Attempts - int(used)
	return &resp, nil
}

func toSubmissionDTO(sub *model.QuizSubmission) dto.QuizSubmissionResponseDTO {
	resp := dto.QuizSubmissionResponseDTO{
		ID:          sub.ID,
		QuizID:      sub.QuizID,
		UserID:      sub.UserID,
		Score:       sub.Score,
		Passed:      sub.Passed,
		TimeSpent:   sub.TimeSpent,
		SubmittedAt: sub.SubmittedAt,
		Answers:     make([]dto.QuizAnswerResultDTO, 0, len(sub.Answers)),
	}
	for _, a := range sub.Answers {
		resp.Answers = append(resp.Answers, dto.QuizAnswerResultDTO{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
		})
	}
	return resp
}

func (s *quizService) ListSubmissions(ctx context.Context, actor Actor, quizID uuid.UUID) ([]dto.QuizSubmissionResponseDTO, error) {
	quiz, err := s.quizRepo.FindByID(ctx, quizID)
	if err != nil {
		return nil, repository.Translate(err, "quiz")
	}
	subs, err := s.submissionRepo.FindByQuizAndUser(ctx, quiz.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	remaining := quiz.Attempts - len(subs)
	if remaining < 0 {
		remaining = 0
	}
	resp := make([]dto.QuizSubmissionResponseDTO, 0, len(subs))
	for i := range subs {
		d := toSubmissionDTO(&subs[i])
		d.AttemptsRemaining = remaining
		resp = append(resp, d)
	}
	return resp, nil
}
