package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SupportService runs the support ticket desk.
type SupportService interface {
	CreateTicket(ctx context.Context, actor Actor, req dto.TicketCreateDTO) (*dto.SupportTicketResponseDTO, error)
	ListTickets(ctx context.Context, actor Actor, query dto.TicketListQuery) ([]dto.SupportTicketResponseDTO, error)
	GetTicket(ctx context.Context, actor Actor, id uuid.UUID) (*dto.SupportTicketResponseDTO, error)
	Respond(ctx context.Context, actor Actor, ticketID uuid.UUID, req dto.TicketRespondDTO) (*dto.SupportTicketResponseDTO, error)
	UpdateTicket(ctx context.Context, actor Actor, ticketID uuid.UUID, req dto.TicketUpdateDTO) (*dto.SupportTicketResponseDTO, error)
}

type supportService struct {
	supportRepo repository.SupportRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
	db          *gorm.DB
}

func NewSupportService(supportRepo repository.SupportRepository, userRepo repository.UserRepository, notifier NotificationService, db *gorm.DB) SupportService {
	return &supportService{supportRepo: supportRepo, userRepo: userRepo, notifier: notifier, db: db}
}

func toTicketDTO(t *model.SupportTicket) dto.SupportTicketResponseDTO {
	resp := dto.SupportTicketResponseDTO{
		ID:           t.ID,
		UserID:       t.UserID,
		Subject:      t.Subject,
		Message:      t.Message,
		Status:       t.Status,
		Priority:     t.Priority,
		Category:     t.Category,
		AssignedToID: t.AssignedToID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	for _, r := range t.Responses {
		resp.Responses = append(resp.Responses, dto.TicketReplyDTO{
			ID:        r.ID,
			UserID:    r.UserID,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		})
	}
	return resp
}

func (s *supportService) CreateTicket(ctx context.Context, actor Actor, req dto.TicketCreateDTO) (*dto.SupportTicketResponseDTO, error) {
	ticket := model.SupportTicket{
		UserID:   actor.ID,
		Subject:  req.Subject,
		Message:  req.Message,
		Status:   model.TicketOpen,
		Priority: req.Priority,
		Category: req.Category,
	}
	if ticket.Priority == "" {
		ticket.Priority = "medium"
	}
	if err := s.supportRepo.Create(ctx, &ticket); err != nil {
		log.Error().Err(err).Str("userID", actor.ID.String()).Msg("Failed to create support ticket")
		return nil, repository.Translate(err, "ticket")
	}
	log.Info().Str("ticketID", ticket.ID.String()).Str("category", ticket.Category).Msg("Support ticket opened")
	resp := toTicketDTO(&ticket)
	return &resp, nil
}

func (s *supportService) ListTickets(ctx context.Context, actor Actor, query dto.TicketListQuery) ([]dto.SupportTicketResponseDTO, error) {
	var (
		tickets []model.SupportTicket
		err     error
	)
	if actor.IsAdmin() {
		tickets, err = s.supportRepo.FindAll(ctx, query.Status)
	} else {
		tickets, err = s.supportRepo.FindByUserID(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SupportTicketResponseDTO, 0, len(tickets))
	for i := range tickets {
		if !actor.IsAdmin() && query.Status != "" && tickets[i].Status != query.Status {
			continue
		}
		resp = append(resp, toTicketDTO(&tickets[i]))
	}
	return resp, nil
}

// ticket loads a ticket visible to the actor. Someone else's ticket reads as missing.
func (s *supportService) ticket(ctx context.Context, actor Actor, id uuid.UUID) (*model.SupportTicket, error) {
	t, err := s.supportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.Translate(err, "ticket")
	}
	if !actor.IsSelfOrAdmin(t.UserID) {
		return nil, apierr.NotFound("ticket_not_found", "ticket not found")
	}
	return t, nil
}

func (s *supportService) GetTicket(ctx context.Context, actor Actor, id uuid.UUID) (*dto.SupportTicketResponseDTO, error) {
	t, err := s.ticket(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := toTicketDTO(t)
	return &resp, nil
}

func (s *supportService) Respond(ctx context.Context, actor Actor, ticketID uuid.UUID, req dto.TicketRespondDTO) (*dto.SupportTicketResponseDTO, error) {
	t, err := s.ticket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TicketClosed {
		return nil, apierr.Conflict("ticket_closed", "this ticket is closed")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.supportRepo.WithTx(tx)
		if err := repo.AddResponse(ctx, &model.TicketResponse{
			TicketID: t.ID,
			UserID:   actor.ID,
			Message:  req.Message,
		}); err != nil {
			return err
		}
		if actor.IsAdmin() && t.Status == model.TicketOpen {
			t.Status = model.TicketInProgress
		}
		// Save also bumps updated_at for the reply.
		return repo.Update(ctx, t)
	})
	if err != nil {
		log.Error().Err(err).Str("ticketID", t.ID.String()).Msg("Failed to add ticket response")
		return nil, err
	}

	link := "/support/tickets/" + t.ID.String()
	if actor.ID != t.UserID {
		s.notifier.Notify(ctx, t.UserID, model.NotificationInfo, "New reply on your ticket",
			fmt.Sprintf("Support replied to %q.", t.Subject), link)
	} else if t.AssignedToID != nil {
		s.notifier.Notify(ctx, *t.AssignedToID, model.NotificationInfo, "Ticket updated",
			fmt.Sprintf("The requester replied to %q.", t.Subject), link)
	}

	return s.GetTicket(ctx, actor, t.ID)
}

func (s *supportService) UpdateTicket(ctx context.Context, actor Actor, ticketID uuid.UUID, req dto.TicketUpdateDTO) (*dto.SupportTicketResponseDTO, error) {
	if !actor.IsAdmin() {
		return nil, apierr.Forbidden("forbidden", "only admins may update tickets")
	}
	t, err := s.ticket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	if req.AssignedToID != nil {
		if *req.AssignedToID == uuid.Nil {
			t.AssignedToID = nil
		} else {
			assignee, err := s.userRepo.FindByID(ctx, *req.AssignedToID)
			if err != nil {
				return nil, repository.Translate(err, "user")
			}
			if !assignee.IsStaffRole() {
				return nil, apierr.BadRequest("invalid_assignee", "tickets can only be assigned to staff")
			}
			t.AssignedToID = &assignee.ID
		}
	}
	statusChanged := false
	if req.Status != nil && *req.Status != t.Status {
		t.Status = *req.Status
		statusChanged = true
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}

	if err := s.supportRepo.Update(ctx, t); err != nil {
		return nil, repository.Translate(err, "ticket")
	}
	if statusChanged {
		s.notifier.Notify(ctx, t.UserID, model.NotificationInfo, "Ticket status changed",
			fmt.Sprintf("Your ticket %q is now %s.", t.Subject, t.Status), "/support/tickets/"+t.ID.String())
	}
	resp := toTicketDTO(t)
	return &resp, nil
}
