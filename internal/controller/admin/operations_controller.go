package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
)

// OperationsController covers live session scheduling, ticket management and
// the video library.
type OperationsController struct {
	liveSessionService service.LiveSessionService
	supportService     service.SupportService
	videoService       service.VideoService
}

func NewOperationsController(
	liveSessionService service.LiveSessionService,
	supportService service.SupportService,
	videoService service.VideoService,
) *OperationsController {
	return &OperationsController{
		liveSessionService: liveSessionService,
		supportService:     supportService,
		videoService:       videoService,
	}
}

// CreateLiveSession godoc
// @Summary (Staff) Schedule a live session
// @Tags Staff - Live Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.LiveSessionCreateDTO true "Session"
// @Success 201 {object} dto.LiveSessionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid schedule"
// @Failure 403 {object} dto.ErrorResponse
// @Router /live-sessions [post]
func (c *OperationsController) CreateLiveSession(ctx *gin.Context) {
	var req dto.LiveSessionCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.liveSessionService.CreateSession(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateTicket godoc
// @Summary (Admin) Update a support ticket
// @Description Change status, priority or assignee.
// @Tags Admin - Support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param body body dto.TicketUpdateDTO true "Fields to change"
// @Success 200 {object} dto.SupportTicketResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid assignee"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /support/tickets/{id} [patch]
func (c *OperationsController) UpdateTicket(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.TicketUpdateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.supportService.UpdateTicket(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateVideo godoc
// @Summary (Staff) Create a video in the stream library
// @Tags Staff - Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.VideoCreateDTO true "Video"
// @Success 201 {object} dto.VideoResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse "Provider error"
// @Failure 503 {object} dto.ErrorResponse "Video library not configured"
// @Router /bunny/create-video [post]
func (c *OperationsController) CreateVideo(ctx *gin.Context) {
	var req dto.VideoCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.videoService.CreateVideo(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetVideo godoc
// @Summary (Staff) Get a video from the stream library
// @Tags Staff - Videos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video GUID"
// @Success 200 {object} dto.VideoResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "Video library not configured"
// @Router /bunny/get-video/{id} [get]
func (c *OperationsController) GetVideo(ctx *gin.Context) {
	resp, err := c.videoService.GetVideo(ctx.Request.Context(), controller.Actor(ctx), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
