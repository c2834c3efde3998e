package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/persistence"
)

// InteractionFilter restricts interaction listings. Empty fields do not
// filter; Month and Year apply only together.
type InteractionFilter struct {
	Moderator string
	Month     string
	Year      string
}

// InteractionRepository persists moderator interactions. Rows are never
// updated once written.
type InteractionRepository interface {
	Insert(ctx context.Context, interaction *domain.ModeratorInteraction) error
	List(ctx context.Context) ([]domain.ModeratorInteraction, error)
	Filter(ctx context.Context, filter InteractionFilter) ([]domain.ModeratorInteraction, error)
}

type interactionRepository struct {
	db *persistence.Database
}

// NewInteractionRepository instantiates the repository.
func NewInteractionRepository(db *persistence.Database) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Insert(ctx context.Context, interaction *domain.ModeratorInteraction) error {
	return r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(interaction).Error
	})
}

func (r *interactionRepository) List(ctx context.Context) ([]domain.ModeratorInteraction, error) {
	return r.Filter(ctx, InteractionFilter{})
}

func (r *interactionRepository) Filter(ctx context.Context, filter InteractionFilter) ([]domain.ModeratorInteraction, error) {
	var result []domain.ModeratorInteraction
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		query := tx.Model(&domain.ModeratorInteraction{})
		if filter.Moderator != "" {
			query = query.Where("moderator_name = ?", filter.Moderator)
		}
		if filter.Month != "" && filter.Year != "" {
			query = whereMonth(query, "date_of_interaction", filter.Month, filter.Year)
		}
		return query.Order("id").Find(&result).Error
	})
	return result, err
}
