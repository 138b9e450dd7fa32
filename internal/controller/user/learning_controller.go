package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/rs/zerolog/log"
)

// LearningController covers what an enrolled learner does inside a course.
type LearningController struct {
	enrollmentService  service.EnrollmentService
	quizService        service.QuizService
	assignmentService  service.AssignmentService
	liveSessionService service.LiveSessionService
	certificateService service.CertificateService
}

func NewLearningController(
	enrollmentService service.EnrollmentService,
	quizService service.QuizService,
	assignmentService service.AssignmentService,
	liveSessionService service.LiveSessionService,
	certificateService service.CertificateService,
) *LearningController {
	return &LearningController{
		enrollmentService:  enrollmentService,
		quizService:        quizService,
		assignmentService:  assignmentService,
		liveSessionService: liveSessionService,
		certificateService: certificateService,
	}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Free courses enroll immediately. Paid courses require a completed payment.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EnrollDTO true "Course to enroll in"
// @Success 201 {object} dto.EnrollmentResponseDTO
// @Failure 402 {object} dto.ErrorResponse "Payment required"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /enrollments [post]
func (c *LearningController) Enroll(ctx *gin.Context) {
	var req dto.EnrollDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.enrollmentService.Enroll(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetProgress godoc
// @Summary Get enrollment progress
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} dto.ProgressResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /enrollments/{id}/progress [get]
func (c *LearningController) GetProgress(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.enrollmentService.GetProgress(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateProgress godoc
// @Summary Record lecture progress
// @Description Marks a lecture complete or incomplete and recomputes the enrollment percentage.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param body body dto.ProgressUpdateDTO true "Lecture progress"
// @Success 200 {object} dto.ProgressResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /enrollments/{id}/progress [patch]
func (c *LearningController) UpdateProgress(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.ProgressUpdateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.enrollmentService.UpdateProgress(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Correct answers are only included for course staff.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{id} [get]
func (c *LearningController) GetQuiz(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.quizService.GetQuiz(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param body body dto.QuizSubmitDTO true "Answers"
// @Success 201 {object} dto.QuizSubmissionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid answer"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Failure 409 {object} dto.ErrorResponse "Attempts exhausted"
// @Router /quizzes/{id}/submit [post]
func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.QuizSubmitDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.quizService.Submit(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAssignment godoc
// @Summary Get an assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} dto.AssignmentResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Failure 404 {object} dto.ErrorResponse
// @Router /assignments/{id} [get]
func (c *LearningController) GetAssignment(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.assignmentService.GetAssignment(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAssignment godoc
// @Summary Submit an assignment
// @Description Multipart form with text content, an optional file, or both.
// @Tags Assignments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param content formData string false "Text answer"
// @Param file formData file false "Attachment"
// @Success 201 {object} dto.AssignmentSubmissionResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Past due"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Router /assignments/{id}/submit [post]
func (c *LearningController) SubmitAssignment(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.AssignmentSubmitDTO
	if err := controller.BindForm(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	file, closeFile, err := controller.FormFile(ctx, "file")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	defer closeFile()

	resp, err := c.assignmentService.Submit(ctx.Request.Context(), controller.Actor(ctx), id, req, file)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	log.Info().Str("assignmentID", id.String()).Bool("withFile", file != nil).Msg("Assignment submitted")
	ctx.JSON(http.StatusCreated, resp)
}

// UpcomingLiveSessions godoc
// @Summary Upcoming live sessions across my courses
// @Tags Live Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.LiveSessionResponseDTO
// @Router /live-sessions/upcoming [get]
func (c *LearningController) UpcomingLiveSessions(ctx *gin.Context) {
	resp, err := c.liveSessionService.Upcoming(ctx.Request.Context(), controller.Actor(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// JoinLiveSession godoc
// @Summary Join a live session
// @Description Registers attendance and returns the meeting URL. Joining twice is harmless.
// @Tags Live Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Live session ID"
// @Success 200 {object} dto.JoinLiveSessionResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Failure 409 {object} dto.ErrorResponse "Session full or closed"
// @Router /live-sessions/{id}/join [post]
func (c *LearningController) JoinLiveSession(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.liveSessionService.Join(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetCertificate godoc
// @Summary Get my certificate for a course
// @Description Issues the certificate on first request once the course is completed.
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param course_id path string true "Course ID"
// @Success 200 {object} dto.CertificateResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Not enrolled"
// @Failure 409 {object} dto.ErrorResponse "Course not completed"
// @Router /certificates/{course_id} [get]
func (c *LearningController) GetCertificate(ctx *gin.Context) {
	courseID, err := controller.UUIDParam(ctx, "course_id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.certificateService.GetOrIssue(ctx.Request.Context(), controller.Actor(ctx), courseID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// VerifyCertificate godoc
// @Summary Verify a certificate
// @Tags Certificates
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} dto.CertificateVerificationDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /certificates/verify/{code} [get]
func (c *LearningController) VerifyCertificate(ctx *gin.Context) {
	resp, err := c.certificateService.Verify(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
