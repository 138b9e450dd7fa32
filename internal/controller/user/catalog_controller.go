package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
)

// CatalogController serves course browsing: courses, their curriculum,
// reviews and scheduled live sessions.
type CatalogController struct {
	courseService      service.CourseService
	curriculumService  service.CurriculumService
	reviewService      service.ReviewService
	liveSessionService service.LiveSessionService
}

func NewCatalogController(
	courseService service.CourseService,
	curriculumService service.CurriculumService,
	reviewService service.ReviewService,
	liveSessionService service.LiveSessionService,
) *CatalogController {
	return &CatalogController{
		courseService:      courseService,
		curriculumService:  curriculumService,
		reviewService:      reviewService,
		liveSessionService: liveSessionService,
	}
}

// ListCourses godoc
// @Summary List published courses
// @Description Paginated catalog with optional filters. Course staff also see their drafts via the instructor filter.
// @Tags Courses
// @Produce json
// @Param category query string false "Category"
// @Param level query string false "Beginner, Intermediate or Advanced"
// @Param search query string false "Matches title or description"
// @Param featured query bool false "Featured only"
// @Param instructor_id query string false "Instructor ID"
// @Param page query int false "Page (1-based)" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.PaginatedResponse{data=[]dto.CourseSummaryDTO}
// @Failure 400 {object} dto.ErrorResponse
// @Router /courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	var q dto.CourseListQuery
	if err := controller.BindQuery(ctx, &q); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.courseService.List(ctx.Request.Context(), q)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetCourse godoc
// @Summary Get a course by ID
// @Description Drafts are visible to course staff only.
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.courseService.Get(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetCourseBySlug godoc
// @Summary Get a course by slug
// @Tags Courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/slug/{slug} [get]
func (c *CatalogController) GetCourseBySlug(ctx *gin.Context) {
	resp, err := c.courseService.GetBySlug(ctx.Request.Context(), controller.Actor(ctx), ctx.Param("slug"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListSections godoc
// @Summary List a course's sections
// @Description Ordered by position. Lectures are included; content is hidden from visitors without access except for previews.
// @Tags Curriculum
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {array} dto.SectionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/sections [get]
func (c *CatalogController) ListSections(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.curriculumService.ListSections(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListLectures godoc
// @Summary List a section's lectures
// @Tags Curriculum
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {array} dto.LectureResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{id}/lectures [get]
func (c *CatalogController) ListLectures(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.curriculumService.ListLectures(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListReviews godoc
// @Summary List a course's reviews
// @Tags Reviews
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {array} dto.ReviewResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/reviews [get]
func (c *CatalogController) ListReviews(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.reviewService.List(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateReview godoc
// @Summary Review a course
// @Description One review per enrolled learner; the course rating is recomputed.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body dto.ReviewCreateDTO true "Rating and comment"
// @Success 201 {object} dto.ReviewResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Failure 409 {object} dto.ErrorResponse "Already reviewed"
// @Router /courses/{id}/reviews [post]
func (c *CatalogController) CreateReview(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.ReviewCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.reviewService.Create(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListLiveSessions godoc
// @Summary List a course's live sessions
// @Tags Live Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} dto.LiveSessionResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Router /courses/{id}/live-sessions [get]
func (c *CatalogController) ListLiveSessions(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.liveSessionService.ListForCourse(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
