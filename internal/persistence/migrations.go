package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/staffdesk/staffdesk/internal/domain"
)

// EnsureSchema creates the tickets, interactions and staff tables when they
// are missing and returns the names of the tables it created. Existing tables
// are left as they are.
func EnsureSchema(ctx context.Context, db *Database, logger *zap.Logger) ([]string, error) {
	models := []schema.Tabler{&domain.Ticket{}, &domain.ModeratorInteraction{}, &domain.StaffMember{}}

	var created []string
	err := db.WithConn(ctx, func(tx *gorm.DB) error {
		for _, model := range models {
			if tx.Migrator().HasTable(model) {
				continue
			}
			if err := tx.Migrator().CreateTable(model); err != nil {
				return fmt.Errorf("create table %s: %w", model.TableName(), err)
			}
			created = append(created, model.TableName())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("schema ready", zap.Strings("created_tables", created))
	return created, nil
}
