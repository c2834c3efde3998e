package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdesk/staffdesk/internal/domain"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

func TestSeedIsInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inserted, err := f.staffSvc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	members, err := f.staffSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, members, len(domain.DefaultRoster().Members()))
}

func TestAddStaffValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	member, err := f.staffSvc.Add(ctx, " Nova ", "Chairman")
	require.NoError(t, err)
	assert.Equal(t, domain.StaffMember{Name: "Nova", Category: domain.CategoryChairman}, *member)

	_, err = f.staffSvc.Add(ctx, "Nova", "Governor")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = f.staffSvc.Add(ctx, "Orion", "Emperor")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.staffSvc.Add(ctx, "", "Chairman")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	added, err := f.staffSvc.AddIfAbsent(ctx, "Nova", "Governor")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestRemoveStaffIsNameKeyed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.staffSvc.List(ctx)
	require.NoError(t, err)

	var asked domain.StaffMember
	removed, err := f.staffSvc.Remove(ctx, "Riggs", func(m domain.StaffMember) bool {
		asked = m
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCouncilman, asked.Category)
	assert.Equal(t, "Riggs", removed.Name)

	after, err := f.staffSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)

	_, err = f.staffSvc.Remove(ctx, "Riggs", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRemoveStaffCanBeDeclined(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.staffSvc.Remove(ctx, "Epik", func(domain.StaffMember) bool { return false })
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCancelled))

	_, err = f.staffRepo.GetByName(ctx, "Epik")
	assert.NoError(t, err)
}

func TestInteractionEligibleOrdersByRank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	eligible, err := f.staffSvc.InteractionEligible(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, eligible)

	assert.Equal(t, "Jimmy", eligible[0].Name)
	assert.Equal(t, "Epik", eligible[1].Name)
	assert.Equal(t, "Gibbs", eligible[2].Name)
	for _, m := range eligible {
		assert.NotEqual(t, domain.CategoryDiscordSupport, m.Category)
	}
	assert.Len(t, eligible, 13)
}
