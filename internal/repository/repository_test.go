package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/persistence"
)

func newTestDatabase(t *testing.T) *persistence.Database {
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
	return db
}

func ticket(number, date, answered, claimed string, minutes int) *domain.Ticket {
	t := domain.NewTicket(domain.TicketInput{
		TicketNumber: number,
		Date:         date,
		TicketType:   "General",
		AnsweredBy:   answered,
		ClaimedBy:    claimed,
		ResponseTime: minutes,
		Handled:      "Yes",
	})
	return &t
}

func ticketNumbers(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.TicketNumber)
	}
	return out
}

func TestTicketInsertAndExists(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(newTestDatabase(t))

	exists, err := repo.Exists(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Insert(ctx, ticket("1001", "03/05/2024", "Asher", "Ogea", 12)))

	exists, err = repo.Exists(ctx, "1001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "1002")
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "03/05/2024", all[0].DateOfTicket.String())
	assert.Equal(t, domain.Minutes(12), all[0].ResponseTime)
	assert.Equal(t, "Ogea", all[0].ClaimedBy)
}

func TestTicketInsertDuplicateIsRejectedByStore(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(newTestDatabase(t))

	require.NoError(t, repo.Insert(ctx, ticket("1001", "03/05/2024", "Asher", "", 1)))
	assert.Error(t, repo.Insert(ctx, ticket("1001", "03/06/2024", "Ogea", "", 2)))
}

func TestTicketFilterByModeratorAndMonth(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(newTestDatabase(t))

	for _, tk := range []*domain.Ticket{
		ticket("1", "03/01/2024", "Asher", "Ogea", 5),
		ticket("2", "03/31/2024", "Jerome", "Asher", 10),
		ticket("3", "04/01/2024", "Asher", "", 15),
		ticket("4", "03/15/2023", "Asher", "", 20),
		ticket("5", "03/10/2024", "Ogea", "Jerome", 25),
		ticket("6", "bad", "Asher", "", 30),
	} {
		require.NoError(t, repo.Insert(ctx, tk))
	}

	got, err := repo.Filter(ctx, TicketFilter{Moderator: "Asher", Month: "03", Year: "2024"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ticketNumbers(got))

	got, err = repo.Filter(ctx, TicketFilter{Moderator: "Asher"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "6"}, ticketNumbers(got))

	got, err = repo.Filter(ctx, TicketFilter{Month: "03", Year: "2024"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "5"}, ticketNumbers(got))

	got, err = repo.Filter(ctx, TicketFilter{Moderator: "Asher", Month: "03"})
	require.NoError(t, err)
	assert.Len(t, got, 5, "month without year does not restrict")
}

func TestTicketScanToleratesForeignValues(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewTicketRepository(db)

	require.NoError(t, db.DB.Exec(
		"INSERT INTO tickets (ticket_number, date_of_ticket, response_time) VALUES (?, ?, ?), (?, ?, ?)",
		"legacy-1", "2024-03-05", "N/A",
		"legacy-2", nil, 7,
	).Error)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "03/05/2024", all[0].DateOfTicket.String())
	assert.False(t, all[0].ResponseTime.Valid)
	assert.False(t, all[1].DateOfTicket.Valid)
	assert.Equal(t, domain.Minutes(7), all[1].ResponseTime)
}

func TestFilterMatchesLegacyISODates(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewTicketRepository(db)

	require.NoError(t, db.DB.Exec(
		"INSERT INTO tickets (ticket_number, date_of_ticket, answered_by) VALUES (?, ?, ?), (?, ?, ?)",
		"legacy-iso", "2024-03-05", "Asher",
		"legacy-other", "2024-04-05", "Asher",
	).Error)
	canonical := domain.NewTicket(domain.TicketInput{TicketNumber: "new", Date: "03/20/2024", AnsweredBy: "Asher"})
	require.NoError(t, repo.Insert(ctx, &canonical))

	got, err := repo.Filter(ctx, TicketFilter{Moderator: "Asher", Month: "03", Year: "2024"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "legacy-iso", got[0].TicketNumber)
	assert.Equal(t, "03/05/2024", got[0].DateOfTicket.String())
	assert.Equal(t, "new", got[1].TicketNumber)

	got, err = repo.Filter(ctx, TicketFilter{Moderator: "Asher", Month: "05", Year: "2024"})
	require.NoError(t, err)
	assert.Empty(t, got, "day digits are not read as a month")
}

func TestInteractionInsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewInteractionRepository(newTestDatabase(t))

	first := domain.NewModeratorInteraction(domain.InteractionInput{ModeratorName: "Jimmy", Date: "03/05/2024", InteractionType: "Warning"})
	second := domain.NewModeratorInteraction(domain.InteractionInput{ModeratorName: "Gibbs", Date: "04/05/2024", InteractionType: "Mute"})
	require.NoError(t, repo.Insert(ctx, &first))
	require.NoError(t, repo.Insert(ctx, &second))

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	got, err := repo.Filter(ctx, InteractionFilter{Moderator: "Jimmy", Month: "03", Year: "2024"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Warning", got[0].InteractionType)

	got, err = repo.Filter(ctx, InteractionFilter{Moderator: "Jimmy", Month: "04", Year: "2024"})
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStaffSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository(newTestDatabase(t))
	members := domain.DefaultRoster().Members()

	inserted, err := repo.Seed(ctx, members)
	require.NoError(t, err)
	assert.EqualValues(t, len(members), inserted)

	inserted, err = repo.Seed(ctx, members)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(members))
	assert.Equal(t, "Amy", all[0].Name)
}

func TestStaffDeleteByNameIgnoresCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository(newTestDatabase(t))

	require.NoError(t, repo.Create(ctx, &domain.StaffMember{Name: "Riggs", Category: domain.CategoryCouncilman}))
	require.NoError(t, repo.Create(ctx, &domain.StaffMember{Name: "Riggsy", Category: domain.CategoryChairman}))

	added, err := repo.CreateIfAbsent(ctx, &domain.StaffMember{Name: "Riggs", Category: domain.CategoryGovernor})
	require.NoError(t, err)
	assert.False(t, added)

	member, err := repo.GetByName(ctx, "Riggs")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCouncilman, member.Category)

	deleted, err := repo.DeleteByName(ctx, "Riggs")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = repo.GetByName(ctx, "Riggs")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Riggsy", all[0].Name)
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	db := newTestDatabase(t)
	created, err := persistence.EnsureSchema(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, created)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, db.Ping(ctx))
}
