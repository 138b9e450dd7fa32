package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/rs/zerolog/log"
)

// AccountController groups the learner's own records: payments, support
// tickets, notifications and uploads.
type AccountController struct {
	paymentService      service.PaymentService
	supportService      service.SupportService
	notificationService service.NotificationService
	mediaService        service.MediaService
}

func NewAccountController(
	paymentService service.PaymentService,
	supportService service.SupportService,
	notificationService service.NotificationService,
	mediaService service.MediaService,
) *AccountController {
	return &AccountController{
		paymentService:      paymentService,
		supportService:      supportService,
		notificationService: notificationService,
		mediaService:        mediaService,
	}
}

// CreatePaymentIntent godoc
// @Summary Start a course purchase
// @Description Creates a pending payment and a gateway checkout for a paid, published course.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PaymentIntentCreateDTO true "Course to buy"
// @Success 201 {object} dto.PaymentIntentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Free or unpublished course"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Failure 502 {object} dto.ErrorResponse "Gateway error"
// @Failure 503 {object} dto.ErrorResponse "Payments not configured"
// @Router /payments/create-intent [post]
func (c *AccountController) CreatePaymentIntent(ctx *gin.Context) {
	var req dto.PaymentIntentCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.paymentService.CreateIntent(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// PaymentHistory godoc
// @Summary My payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PaymentResponseDTO
// @Router /payments/history [get]
func (c *AccountController) PaymentHistory(ctx *gin.Context) {
	resp, err := c.paymentService.History(ctx.Request.Context(), controller.Actor(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// PaymentNotification godoc
// @Summary Payment gateway callback
// @Description Unauthenticated. The transaction status is re-queried from the gateway before anything changes.
// @Tags Payments
// @Accept json
// @Produce json
// @Param body body dto.PaymentNotificationDTO true "Gateway notification"
// @Success 200 {object} dto.PaymentResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown order"
// @Router /payments/notifications [post]
func (c *AccountController) PaymentNotification(ctx *gin.Context) {
	var req dto.PaymentNotificationDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	log.Info().Str("orderID", req.OrderID).Str("reportedStatus", req.TransactionStatus).Msg("Payment notification received")
	resp, err := c.paymentService.HandleNotification(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateTicket godoc
// @Summary Open a support ticket
// @Tags Support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.TicketCreateDTO true "Ticket"
// @Success 201 {object} dto.SupportTicketResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /support/tickets [post]
func (c *AccountController) CreateTicket(ctx *gin.Context) {
	var req dto.TicketCreateDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.supportService.CreateTicket(ctx.Request.Context(), controller.Actor(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListTickets godoc
// @Summary List support tickets
// @Description Admins see every ticket; everyone else sees their own.
// @Tags Support
// @Produce json
// @Security BearerAuth
// @Param status query string false "open, in-progress, resolved or closed"
// @Success 200 {array} dto.SupportTicketResponseDTO
// @Router /support/tickets [get]
func (c *AccountController) ListTickets(ctx *gin.Context) {
	var q dto.TicketListQuery
	if err := controller.BindQuery(ctx, &q); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.supportService.ListTickets(ctx.Request.Context(), controller.Actor(ctx), q)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetTicket godoc
// @Summary Get a support ticket with its replies
// @Tags Support
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} dto.SupportTicketResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /support/tickets/{id} [get]
func (c *AccountController) GetTicket(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.supportService.GetTicket(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RespondTicket godoc
// @Summary Reply to a support ticket
// @Tags Support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param body body dto.TicketRespondDTO true "Reply"
// @Success 201 {object} dto.SupportTicketResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Ticket closed"
// @Router /support/tickets/{id}/respond [post]
func (c *AccountController) RespondTicket(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.TicketRespondDTO
	if err := controller.BindJSON(ctx, &req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.supportService.Respond(ctx.Request.Context(), controller.Actor(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListNotifications godoc
// @Summary My notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Unread only"
// @Success 200 {array} dto.NotificationResponseDTO
// @Router /notifications [get]
func (c *AccountController) ListNotifications(ctx *gin.Context) {
	var q dto.NotificationListQuery
	if err := controller.BindQuery(ctx, &q); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.notificationService.List(ctx.Request.Context(), controller.Actor(ctx), q.Unread)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// MarkNotificationRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.NotificationResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /notifications/{id}/read [patch]
func (c *AccountController) MarkNotificationRead(ctx *gin.Context) {
	id, err := controller.UUIDParam(ctx, "id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.notificationService.MarkRead(ctx.Request.Context(), controller.Actor(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UploadMedia godoc
// @Summary Upload a media file
// @Description Images are auto-oriented and downscaled before storage.
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param type formData string true "image, video or document"
// @Param file formData file true "File"
// @Success 201 {object} dto.MediaUploadResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Router /media/upload [post]
func (c *AccountController) UploadMedia(ctx *gin.Context) {
	var req dto.MediaUploadDTO
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
	if file == nil {
		controller.RespondError(ctx, apierr.Validation("file is required"))
		return
	}

	resp, err := c.mediaService.Upload(ctx.Request.Context(), controller.Actor(ctx), req.Type, *file)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
