package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/events"
	"github.com/staffdesk/staffdesk/internal/observability"
	"github.com/staffdesk/staffdesk/internal/persistence"
	"github.com/staffdesk/staffdesk/internal/repository"
)

type fixture struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	staffRepo    repository.StaffRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	ticketSvc    *TicketService
	staffSvc     *StaffService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.Open(ctx, config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "staffdesk.db"),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = persistence.EnsureSchema(ctx, db, zap.NewNop())
	require.NoError(t, err)

	f := &fixture{
		tickets:      repository.NewTicketRepository(db),
		interactions: repository.NewInteractionRepository(db),
		staffRepo:    repository.NewStaffRepository(db),
		dispatcher:   events.NewInMemoryDispatcher(),
		metrics:      observability.NewMetrics(),
	}
	f.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:      f.tickets,
		InteractionRepo: f.interactions,
		StaffRepo:       f.staffRepo,
		Dispatcher:      f.dispatcher,
		Metrics:         f.metrics,
	})
	f.staffSvc = NewStaffService(StaffDependencies{
		StaffRepo:  f.staffRepo,
		Roster:     domain.DefaultRoster(),
		Dispatcher: f.dispatcher,
	})
	_, err = f.staffSvc.Seed(ctx)
	require.NoError(t, err)
	return f
}

// memoryCache is a TrendCache that round-trips values through JSON like the
// redis implementation does.
type memoryCache struct {
	entries map[string][]byte
	gets    int
	clears  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.gets++
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Clear(context.Context) error {
	c.clears++
	c.entries = map[string][]byte{}
	return nil
}
