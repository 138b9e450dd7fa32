package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/platform/payment"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService creates checkout intents and applies gateway notifications.
type PaymentService interface {
	CreateIntent(ctx context.Context, actor Actor, req dto.PaymentIntentCreateDTO) (*dto.PaymentIntentResponseDTO, error)
	History(ctx context.Context, actor Actor) ([]dto.PaymentResponseDTO, error)
	// HandleNotification re-reads the payment status from the gateway and applies it. Repeated calls are harmless.
	HandleNotification(ctx context.Context, req dto.PaymentNotificationDTO) (*dto.PaymentResponseDTO, error)
}

type paymentService struct {
	paymentRepo    repository.PaymentRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	userRepo       repository.UserRepository
	gateway        payment.Gateway
	notifier       NotificationService
	cache          *CourseCache
	db             *gorm.DB
}

// NewPaymentService wires the service to its repositories and collaborators.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	userRepo repository.UserRepository,
	gateway payment.Gateway,
	notifier NotificationService,
	cache *CourseCache,
	db *gorm.DB,
) PaymentService {
	return &paymentService{
		paymentRepo:    paymentRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		gateway:        gateway,
		notifier:       notifier,
		cache:          cache,
		db:             db,
	}
}

// GatewayStatus maps a provider transaction status onto a payment status.
// Unknown values stay pending.
func GatewayStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "settlement", "capture":
		return model.PaymentCompleted
	case "deny", "cancel", "expire", "failure":
		return model.PaymentFailed
	case "refund", "partial_refund":
		return model.PaymentRefunded
	default:
		return model.PaymentPending
	}
}

func toPaymentDTO(p *model.Payment) dto.PaymentResponseDTO {
	resp := dto.PaymentResponseDTO{
		ID:            p.ID,
		UserID:        p.UserID,
		CourseID:      p.CourseID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Course != nil {
		resp.Course = toCourseSummary(p.Course)
	}
	return resp
}

func mergeMetadata(current datatypes.JSON, values map[string]interface{}) datatypes.JSON {
	meta := map[string]interface{}{}
	if len(current) > 0 {
		_ = json.Unmarshal(current, &meta)
	}
	for k, v := range values {
		meta[k] = v
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return current
	}
	return datatypes.JSON(raw)
}

func (s *paymentService) CreateIntent(ctx context.Context, actor Actor, req dto.PaymentIntentCreateDTO) (*dto.PaymentIntentResponseDTO, error) {
	course, err := s.courseRepo.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, repository.Translate(err, "course")
	}
	if !course.IsPublished() {
		return nil, apierr.BadRequest("course_not_published", "course is not open for enrollment")
	}
	if course.IsFree() {
		return nil, apierr.BadRequest("free_course", "this course is free, enroll directly")
	}
	enrolled, err := s.enrollmentRepo.HasAccess(ctx, actor.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apierr.Conflict("already_enrolled", "already enrolled in this course")
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repository.Translate(err, "user")
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	p := model.Payment{
		UserID:        actor.ID,
		CourseID:      course.ID,
		Amount:        course.EffectivePrice(),
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		Status:        model.PaymentPending,
		TransactionID: "VK-" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	if err := s.paymentRepo.Create(ctx, &p); err != nil {
		return nil, repository.Translate(err, "payment")
	}

	checkout, err := s.gateway.CreateCheckout(ctx, payment.Charge{
		OrderID:       p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		ItemID:        course.ID.String(),
		ItemName:      course.Title,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
	if err != nil {
		log.Error().Err(err).Str("orderID", p.TransactionID).Msg("Payment gateway checkout failed")
		p.Status = model.PaymentFailed
		p.Metadata = mergeMetadata(p.Metadata, map[string]interface{}{"error": err.Error()})
		if uerr := s.paymentRepo.Update(ctx, &p); uerr != nil {
			log.Error().Err(uerr).Str("orderID", p.TransactionID).Msg("Failed to mark payment failed")
		}
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, apierr.Unavailable("payments_unavailable", "payments are not configured")
		}
		return nil, apierr.New(http.StatusBadGateway, "gateway_error", fmt.Errorf("payment provider error"))
	}

	p.Metadata = mergeMetadata(p.Metadata, map[string]interface{}{
		"token":        checkout.Token,
		"redirect_url": checkout.RedirectURL,
	})
	if err := s.paymentRepo.Update(ctx, &p); err != nil {
		return nil, repository.Translate(err, "payment")
	}
	log.Info().Str("orderID", p.TransactionID).Str("userID", actor.ID.String()).Float64("amount", p.Amount).Msg("Payment intent created")

	return &dto.PaymentIntentResponseDTO{
		Payment:     toPaymentDTO(&p),
		ClientToken: checkout.Token,
		RedirectURL: checkout.RedirectURL,
	}, nil
}

func (s *paymentService) History(ctx context.Context, actor Actor) ([]dto.PaymentResponseDTO, error) {
	payments, err := s.paymentRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PaymentResponseDTO, 0, len(payments))
	for i := range payments {
		resp = append(resp, toPaymentDTO(&payments[i]))
	}
	return resp, nil
}

// HandleNotification never trusts the callback body: the status is re-read
// from the provider before anything changes.
func (s *paymentService) HandleNotification(ctx context.Context, req dto.PaymentNotificationDTO) (*dto.PaymentResponseDTO, error) {
	p, err := s.paymentRepo.FindByTransactionID(ctx, req.OrderID)
	if err != nil {
		return nil, repository.Translate(err, "payment")
	}

	raw, err := s.gateway.TransactionStatus(ctx, p.TransactionID)
	if err != nil {
		log.Error().Err(err).Str("orderID", p.TransactionID).Msg("Failed to query payment status")
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, apierr.Unavailable("payments_unavailable", "payments are not configured")
		}
		return nil, apierr.New(http.StatusBadGateway, "gateway_error", fmt.Errorf("payment provider error"))
	}
	status := GatewayStatus(raw)
	if status == p.Status {
		resp := toPaymentDTO(p)
		return &resp, nil
	}

	previous := p.Status
	p.Status = status
	p.Metadata = mergeMetadata(p.Metadata, map[string]interface{}{"transaction_status": raw})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).Update(ctx, p); err != nil {
			return err
		}
		enrollments := s.enrollmentRepo.WithTx(tx)
		courses := s.courseRepo.WithTx(tx)
		switch status {
		case model.PaymentCompleted:
			_, _, err := grantEnrollment(ctx, enrollments, courses, p.UserID, p.CourseID)
			return err
		case model.PaymentRefunded:
			return revokeEnrollment(ctx, enrollments, courses, p.UserID, p.CourseID)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("orderID", p.TransactionID).Msg("Failed to apply payment status")
		return nil, err
	}
	log.Info().Str("orderID", p.TransactionID).Str("from", previous).Str("to", status).Msg("Payment status changed")

	s.afterStatusChange(ctx, p)
	resp := toPaymentDTO(p)
	return &resp, nil
}

func (s *paymentService) afterStatusChange(ctx context.Context, p *model.Payment) {
	course, err := s.courseRepo.FindByID(ctx, p.CourseID)
	if err != nil {
		return
	}
	s.cache.Invalidate(ctx, course.ID, course.Slug)
	switch p.Status {
	case model.PaymentCompleted:
		s.notifier.Notify(ctx, p.UserID, model.NotificationSuccess, "Payment received",
			fmt.Sprintf("Your payment for %s was received and you are now enrolled.", course.Title), "/courses/"+course.Slug)
	case model.PaymentFailed:
		s.notifier.Notify(ctx, p.UserID, model.NotificationError, "Payment failed",
			fmt.Sprintf("Your payment for %s did not go through.", course.Title), "/payments/history")
	case model.PaymentRefunded:
		s.notifier.Notify(ctx, p.UserID, model.NotificationWarning, "Payment refunded",
			fmt.Sprintf("Your payment for %s was refunded and access was removed.", course.Title), "/payments/history")
	}
}

func revokeEnrollment(ctx context.Context, enrollments repository.EnrollmentRepository, courses repository.CourseRepository, userID, courseID uuid.UUID) error {
	e, err := enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if repository.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !e.GrantsAccess() {
		return nil
	}
	e.Status = model.EnrollmentRefunded
	if err := enrollments.Update(ctx, e); err != nil {
		return err
	}
	return courses.IncrementEnrollments(ctx, courseID, -1)
}
