package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/rs/zerolog/log"
)

// CourseController manages courses and their curriculum. Ownership checks
// happen in the services; the router only guarantees an authenticated caller.
type CourseController struct {
	courseService     service.CourseService
	curriculumService service.CurriculumService
}

func NewCourseController(courseService service.CourseService, curriculumService service.CurriculumService) *CourseController {
	return &CourseController{courseService: courseService, curriculumService: curriculumService}
}

// CreateCourse godoc
// @Summary (Staff) Create a course
// @Description The slug is generated from the title when omitted. Instructors own the courses they create.
// @Tags Staff - Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CourseCreateDTO true "Course"
// @Success 201 {object} dto.CourseResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Slug taken"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.courseService.Create(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	log.Info().Str("courseID", resp.ID.String()).Str("slug", resp.Slug).Msg("Course created")
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateCourse godoc
// @Summary (Staff) Update a course
// @Tags Staff - Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body dto.CourseUpdateDTO true "Fields to change"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Slug taken"
// @Router /courses/{id} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.CourseUpdateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.courseService.Update(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteCourse godoc
// @Summary (Staff) Delete a course
// @Tags Staff - Courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	if err := c.courseService.Delete(ctx.Request.Context(), controller.Actor(ctx), id); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	log.Info().Str("courseID", id.String()).Msg("Course deleted")
	ctx.Status(http.StatusNoContent)
}

// CreateSection godoc
// @Summary (Staff) Add a section to a course
// @Tags Staff - Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SectionCreateDTO true "Section"
// @Success 201 {object} dto.SectionResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Order taken"
// @Router /sections [post]
func (c *CourseController) CreateSection(ctx *gin.Context) {
	var req dto.SectionCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.curriculumService.CreateSection(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateSection godoc
// @Summary (Staff) Update a section
// @Tags Staff - Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param body body dto.SectionUpdateDTO true "Fields to change"
// @Success 200 {object} dto.SectionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Order taken"
// @Router /sections/{id} [patch]
func (c *CourseController) UpdateSection(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.SectionUpdateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.curriculumService.UpdateSection(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteSection godoc
// @Summary (Staff) Delete a section and its lectures
// @Tags Staff - Curriculum
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{id} [delete]
func (c *CourseController) DeleteSection(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	if err := c.curriculumService.DeleteSection(ctx.Request.Context(), controller.Actor(ctx), id); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateLecture godoc
// @Summary (Staff) Add a lecture to a section
// @Tags Staff - Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.LectureCreateDTO true "Lecture"
// @Success 201 {object} dto.LectureResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Order taken"
// @Router /lectures [post]
func (c *CourseController) CreateLecture(ctx *gin.Context) {
	var req dto.LectureCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.curriculumService.CreateLecture(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateLecture godoc
// @Summary (Staff) Update a lecture
// @Tags Staff - Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param body body dto.LectureUpdateDTO true "Fields to change"
// @Success 200 {object} dto.LectureResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Order taken"
// @Router /lectures/{id} [patch]
func (c *CourseController) UpdateLecture(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.LectureUpdateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.curriculumService.UpdateLecture(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteLecture godoc
// @Summary (Staff) Delete a lecture
// @Tags Staff - Curriculum
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /lectures/{id} [delete]
func (c *CourseController) DeleteLecture(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	if err := c.curriculumService.DeleteLecture(ctx.Request.Context(), controller.Actor(ctx), id); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
