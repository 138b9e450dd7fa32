package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
)

// AssessmentController serves quiz and assignment authoring and grading for course staff.
type AssessmentController struct {
	quizService       service.QuizService
	assignmentService service.AssignmentService
}

func NewAssessmentController(quizService service.QuizService, assignmentService service.AssignmentService) *AssessmentController {
	return &AssessmentController{quizService: quizService, assignmentService: assignmentService}
}

// CreateQuiz godoc
// @Summary (Staff) Create a quiz for a course
// @Description Questions and options are created together. Each question needs at least one correct option.
// @Tags Staff - Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.QuizCreateDTO true "Quiz with questions"
// @Success 201 {object} dto.QuizResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /quizzes [post]
func (c *AssessmentController) CreateQuiz(ctx *gin.Context) {
	var req dto.QuizCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.quizService.CreateQuiz(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListQuizSubmissions godoc
// @Summary List quiz submissions
// @Description The caller's own submissions, newest first.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {array} dto.QuizSubmissionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{id}/submissions [get]
func (c *AssessmentController) ListQuizSubmissions(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.quizService.ListSubmissions(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateAssignment godoc
// @Summary (Staff) Create an assignment for a course
// @Tags Staff - Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AssignmentCreateDTO true "Assignment"
// @Success 201 {object} dto.AssignmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /assignments [post]
func (c *AssessmentController) CreateAssignment(ctx *gin.Context) {
	var req dto.AssignmentCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.assignmentService.CreateAssignment(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GradeSubmission godoc
// @Summary (Staff) Grade an assignment submission
// @Tags Staff - Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param body body dto.AssignmentGradeDTO true "Grade and feedback"
// @Success 200 {object} dto.AssignmentSubmissionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Grade above max points"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /assignment-submissions/{id}/grade [patch]
func (c *AssessmentController) GradeSubmission(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.AssignmentGradeDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.assignmentService.Grade(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SuggestFeedback godoc
// @Summary (Staff) AI feedback suggestion for a submission
// @Description Asks Gemini for a draft score and feedback. Nothing is saved; the grader decides.
// @Tags Staff - Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} dto.AIFeedbackResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse "AI request failed"
// @Failure 503 {object} dto.ErrorResponse "AI not configured"
// @Router /assignment-submissions/{id}/ai-review [post]
func (c *AssessmentController) SuggestFeedback(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.assignmentService.SuggestFeedback(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
