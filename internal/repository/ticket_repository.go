package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/persistence"
)

// TicketFilter captures ticket search parameters. An empty Moderator matches
// every ticket; Month and Year restrict only when both are set.
type TicketFilter struct {
	Moderator string
	Month     string
	Year      string
}

// TicketRepository encapsulates ticket persistence. Tickets are append-only.
type TicketRepository interface {
	Insert(ctx context.Context, ticket *domain.Ticket) error
	Exists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	Filter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db *persistence.Database
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db *persistence.Database) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(ticket).Error
	})
}

func (r *ticketRepository) Exists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Model(&domain.Ticket{}).Where("ticket_number = ?", number).Count(&count).Error
	})
	return count > 0, err
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.Filter(ctx, TicketFilter{})
}

func (r *ticketRepository) Filter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		query := tx.Model(&domain.Ticket{})
		if filter.Moderator != "" {
			query = query.Where("(answered_by = ? OR claimed_by = ?)", filter.Moderator, filter.Moderator)
		}
		if filter.Month != "" && filter.Year != "" {
			query = whereMonth(query, "date_of_ticket", filter.Month, filter.Year)
		}
		return query.Order("ticket_number").Find(&result).Error
	})
	return result, err
}

// whereMonth matches a month and year against canonical MM/DD/YYYY text and
// against legacy YYYY-MM-DD text, the two forms CalendarDate scans.
// SUBSTR is available on every supported dialect.
func whereMonth(query *gorm.DB, column, month, year string) *gorm.DB {
	canonical := "(SUBSTR(" + column + ", 1, 2) = ? AND SUBSTR(" + column + ", 7, 4) = ?)"
	iso := "(SUBSTR(" + column + ", 5, 1) = '-' AND SUBSTR(" + column + ", 6, 2) = ? AND SUBSTR(" + column + ", 1, 4) = ?)"
	return query.Where("("+canonical+" OR "+iso+")", month, year, month, year)
}
