package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
)

// quizResult is a graded attempt before it is stored.
type quizResult struct {
	Answers     []model.QuizAnswer
	Earned      int
	TotalPoints int
	Score       float64
	Passed      bool
	Late        bool
}

// gradeQuiz checks the submitted answers against quiz (questions and options
// loaded) and computes score = 100*earned/total rounded to two decimals.
// Unanswered questions earn nothing. An attempt over the time limit is flagged
// Late; Passed still depends on the score alone.
func gradeQuiz(quiz *model.Quiz, answers []dto.QuizAnswerSubmitDTO, timeSpent int) (*quizResult, error) {
	questions := make(map[uuid.UUID]*model.QuizQuestion, len(quiz.Questions))
	res := &quizResult{}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		questions[q.ID] = q
		res.TotalPoints += q.Points
	}

	seen := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return nil, apierr.BadRequest("invalid_answer", "question %s is not part of this quiz", a.QuestionID)
		}
		if seen[a.QuestionID] {
			return nil, apierr.BadRequest("invalid_answer", "question %s answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = true

		answer := model.QuizAnswer{QuestionID: q.ID}
		if a.SelectedOptionID != nil {
			option := findOption(q, *a.SelectedOptionID)
			if option == nil {
				return nil, apierr.BadRequest("invalid_answer", "option %s does not belong to question %s", *a.SelectedOptionID, q.ID)
			}
			id := option.ID
			answer.SelectedOptionID = &id
			answer.IsCorrect = option.IsCorrect
		}
		if answer.IsCorrect {
			res.Earned += q.Points
		}
		res.Answers = append(res.Answers, answer)
	}

	if res.TotalPoints > 0 {
		res.Score = clamp(round2(100*float64(res.Earned)/float64(res.TotalPoints)), 0, 100)
	}
	res.Late = quiz.TimeLimit > 0 && timeSpent > quiz.TimeLimit*60
	res.Passed = res.Score >= quiz.PassScore
	return res, nil
}

func findOption(q *model.QuizQuestion, id uuid.UUID) *model.QuizOption {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// validateQuestions enforces the option rules that the schema cannot express.
func validateQuestions(questions []dto.QuizQuestionCreateDTO) error {
	var details []string
	for i, q := range questions {
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		switch {
		case len(q.Options) < 2:
			details = append(details, fmtDetail(i, "needs at least two options"))
		case correct == 0:
			details = append(details, fmtDetail(i, "needs at least one correct option"))
		case q.Type == model.QuestionTrueFalse && (len(q.Options) != 2 || correct != 1):
			details = append(details, fmtDetail(i, "true-false needs exactly two options with one correct"))
		}
	}
	if len(details) > 0 {
		return apierr.Validation(details...)
	}
	return nil
}

func fmtDetail(index int, msg string) string {
	return fmt.Sprintf("questions[%d]: %s", index, msg)
}
