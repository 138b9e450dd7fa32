package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
)

const notificationListLimit = 100

// NotificationService delivers in-app notifications.
type NotificationService interface {
	// Notify is best effort: failures are logged and never returned.
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message, link string)
	List(ctx context.Context, actor Actor, unreadOnly bool) ([]dto.NotificationResponseDTO, error)
	MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*dto.NotificationResponseDTO, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, kind, title, message, link string) {
	n := model.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Str("title", title).Msg("Failed to store notification")
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]dto.NotificationResponseDTO, error) {
	rows, err := s.repo.FindByUserID(ctx, actor.ID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.NotificationResponseDTO, 0, len(rows))
	if err := copier.Copy(&resp, &rows); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*dto.NotificationResponseDTO, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "notification")
	}
	// Someone else's notification is reported as missing.
	if n.UserID != actor.ID {
		return nil, apierr.NotFound("notification_not_found", "notification not found")
	}
	if !n.Read {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		n.Read = true
	}
	var resp dto.NotificationResponseDTO
	copier.Copy(&resp, n)
	return &resp, nil
}
