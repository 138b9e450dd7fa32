package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/vaikuntha/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupportRepository interface {
	WithTx(tx *gorm.DB) SupportRepository
	Create(ctx context.Context, ticket *model.SupportTicket) error
	// FindByID preloads responses oldest first.
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupportTicket, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error)
	FindAll(ctx context.Context, status string) ([]model.SupportTicket, error)
	Update(ctx context.Context, ticket *model.SupportTicket) error
	AddResponse(ctx context.Context, response *model.TicketResponse) error
}

type supportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &supportRepository{db: db}
}

func (r *supportRepository) WithTx(tx *gorm.DB) SupportRepository {
	return &supportRepository{db: tx}
}

func (r *supportRepository) Create(ctx context.Context, ticket *model.SupportTicket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ticket).Error
}

func (r *supportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	err := r.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("ticket_responses.created_at ASC")
		}).
		First(&ticket, "id = ?", id).Error
	return &ticket, err
}

func (r *supportRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error) {
	var tickets []model.SupportTicket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *supportRepository) FindAll(ctx context.Context, status string) ([]model.SupportTicket, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tickets []model.SupportTicket
	err := q.Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *supportRepository) Update(ctx context.Context, ticket *model.SupportTicket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ticket).Error
}

func (r *supportRepository) AddResponse(ctx context.Context, response *model.TicketResponse) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(response).Error
}
