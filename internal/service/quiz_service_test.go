package service

import (
	"net/http"
	"sync"
	"testing"

	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func correctAnswers(quiz *dto.QuizResponseDTO, staffView *dto.QuizResponseDTO, correct int) []dto.QuizAnswerSubmitDTO {
	var answers []dto.QuizAnswerSubmitDTO
	for i, q := range staffView.Questions {
		for _, o := range q.Options {
			right := o.IsCorrect != nil && *o.IsCorrect
			if (i < correct) == right {
				id := o.ID
				answers = append(answers, dto.QuizAnswerSubmitDTO{QuestionID: quiz.Questions[i].ID, SelectedOptionID: &id})
				break
			}
		}
	}
	return answers
}

func TestQuizSubmitScoresAndLimitsAttempts(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	seeded := testutil.SeedQuiz(t, h.db, course.ID, 70, 2, 1, 1, 2)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	learnerView, err := h.quiz.GetQuiz(h.ctx, learner, seeded.ID)
	require.NoError(t, err)
	for _, q := range learnerView.Questions {
		for _, o := range q.Options {
			assert.Nil(t, o.IsCorrect)
		}
	}
	staffView, err := h.quiz.GetQuiz(h.ctx, staff, seeded.ID)
	require.NoError(t, err)

	sub, err := h.quiz.Submit(h.ctx, learner, seeded.ID, dto.QuizSubmitDTO{Answers: correctAnswers(learnerView, staffView, 2), TimeSpent: 40})
	require.NoError(t, err)
	assert.Equal(t, 50.0, sub.Score)
	assert.False(t, sub.Passed)
	assert.Equal(t, 1, sub.AttemptsRemaining)

	sub, err = h.quiz.Submit(h.ctx, learner, seeded.ID, dto.QuizSubmitDTO{Answers: correctAnswers(learnerView, staffView, 3)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, sub.Score)
	assert.True(t, sub.Passed)
	assert.Equal(t, 0, sub.AttemptsRemaining)

	_, err = h.quiz.Submit(h.ctx, learner, seeded.ID, dto.QuizSubmitDTO{})
	requireAPIError(t, err, http.StatusConflict, "attempts_exhausted")

	subs, err := h.quiz.ListSubmissions(h.ctx, learner, seeded.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestQuizAttemptLimitHoldsUnderConcurrentSubmits(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	learner, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	quiz := testutil.SeedQuiz(t, h.db, course.ID, 50, 2, 1)
	testutil.SeedEnrollment(t, h.db, learner.ID, course.ID, model.EnrollmentActive)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		exhausted int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.quiz.Submit(h.ctx, learner, quiz.ID, dto.QuizSubmitDTO{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			if apiErr, ok := apierr.As(err); ok && apiErr.Code == "attempts_exhausted" {
				exhausted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 4, exhausted)
	var stored int64
	require.NoError(t, h.db.Model(&model.QuizSubmission{}).Where("quiz_id = ? AND user_id = ?", quiz.ID, learner.ID).Count(&stored).Error)
	assert.Equal(t, int64(2), stored)
}

func TestQuizRequiresEnrollment(t *testing.T) {
	h := newHarness(t)
	_, owner := h.actor(model.RoleInstructor)
	outsider, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)
	quiz := testutil.SeedQuiz(t, h.db, course.ID, 50, 1, 1)

	_, err := h.quiz.GetQuiz(h.ctx, outsider, quiz.ID)
	requireAPIError(t, err, http.StatusForbidden, "not_enrolled")
	_, err = h.quiz.Submit(h.ctx, outsider, quiz.ID, dto.QuizSubmitDTO{})
	requireAPIError(t, err, http.StatusForbidden, "not_enrolled")
}

func TestCreateQuizValidatesQuestions(t *testing.T) {
	h := newHarness(t)
	staff, owner := h.actor(model.RoleInstructor)
	student, _ := h.actor(model.RoleStudent)
	course := testutil.SeedCourse(t, h.db, owner.ID)

	req := dto.QuizCreateDTO{
		Title:     "Basics",
		CourseID:  course.ID,
		PassScore: 60,
		Questions: []dto.QuizQuestionCreateDTO{{
			Text: "Is Go compiled?", Type: model.QuestionTrueFalse,
			Options: []dto.QuizOptionCreateDTO{{Text: "yes", IsCorrect: true}, {Text: "no"}},
		}},
	}
	_, err := h.quiz.CreateQuiz(h.ctx, student, req)
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	quiz, err := h.quiz.CreateQuiz(h.ctx, staff, req)
	require.NoError(t, err)
	assert.Equal(t, 1, quiz.Attempts)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, 1, quiz.Questions[0].Points)

	req.Questions[0].Options[1].IsCorrect = true
	_, err = h.quiz.CreateQuiz(h.ctx, staff, req)
	requireAPIError(t, err, http.StatusBadRequest, "validation_failed")
}
