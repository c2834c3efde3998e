package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/persistence"
)

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	List(ctx context.Context) ([]domain.StaffMember, error)
	GetByName(ctx context.Context, name string) (*domain.StaffMember, error)
	Create(ctx context.Context, staff *domain.StaffMember) error
	CreateIfAbsent(ctx context.Context, staff *domain.StaffMember) (bool, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
	Seed(ctx context.Context, members []domain.StaffMember) (int64, error)
}

type staffRepository struct {
	db *persistence.Database
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db *persistence.Database) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) List(ctx context.Context) ([]domain.StaffMember, error) {
	var result []domain.StaffMember
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Order("name").Find(&result).Error
	})
	return result, err
}

// GetByName returns gorm.ErrRecordNotFound when no row has that name.
func (r *staffRepository) GetByName(ctx context.Context, name string) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Where("name = ?", name).Take(&staff).Error
	})
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	return r.db.WithConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(staff).Error
	})
}

func (r *staffRepository) CreateIfAbsent(ctx context.Context, staff *domain.StaffMember) (bool, error) {
	var inserted int64
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(staff)
		inserted = res.RowsAffected
		return res.Error
	})
	return inserted > 0, err
}

// DeleteByName removes the row with that name whatever its category.
func (r *staffRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	var deleted int64
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&domain.StaffMember{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// Seed inserts every member that is not already present and reports how many
// rows were added.
func (r *staffRepository) Seed(ctx context.Context, members []domain.StaffMember) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	var inserted int64
	err := r.db.WithConn(ctx, func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members)
		inserted = res.RowsAffected
		return res.Error
	})
	return inserted, err
}
