package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/events"
	"github.com/staffdesk/staffdesk/internal/repository"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

// Confirmer is asked before a staff member is removed. Returning false
// cancels the removal.
type Confirmer func(member domain.StaffMember) bool

// StaffService manages staff membership on top of the static roster.
type StaffService struct {
	staff      repository.StaffRepository
	roster     *domain.Roster
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StaffDependencies bundles what the staff service needs.
type StaffDependencies struct {
	StaffRepo  repository.StaffRepository
	Roster     *domain.Roster
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	if deps.Roster == nil {
		deps.Roster = domain.DefaultRoster()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &StaffService{
		staff:      deps.StaffRepo,
		roster:     deps.Roster,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Seed inserts every roster member that is not stored yet.
func (s *StaffService) Seed(ctx context.Context) (int64, error) {
	inserted, err := s.staff.Seed(ctx, s.roster.Members())
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("staff seeded", zap.Int64("inserted", inserted))
	return inserted, nil
}

// List returns every staff row ordered by name.
func (s *StaffService) List(ctx context.Context) ([]domain.StaffMember, error) {
	members, err := s.staff.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// InteractionEligible lists staff who may be credited with an interaction,
// highest rank first, then by name.
func (s *StaffService) InteractionEligible(ctx context.Context) ([]domain.StaffMember, error) {
	members, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	eligible := members[:0]
	for _, m := range members {
		if m.Category.InteractionEligible() {
			eligible = append(eligible, m)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		ri, rj := eligible[i].Category.Rank(), eligible[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return eligible[i].Name < eligible[j].Name
	})
	return eligible, nil
}

// Add stores a new staff member. The name must be unused and the category
// one of the known categories.
func (s *StaffService) Add(ctx context.Context, name, category string) (*domain.StaffMember, error) {
	member, err := newMember(name, category)
	if err != nil {
		return nil, err
	}
	if _, err := s.staff.GetByName(ctx, member.Name); err == nil {
		return nil, apperrors.NewConflict("staff member already exists", map[string]any{"name": member.Name})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.MapError(err)
	}
	if err := s.staff.Create(ctx, &member); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("staff added", zap.String("name", member.Name), zap.String("category", string(member.Category)))
	s.publish(ctx, member, false)
	return &member, nil
}

// AddIfAbsent stores the member unless the name is already taken.
func (s *StaffService) AddIfAbsent(ctx context.Context, name, category string) (bool, error) {
	member, err := newMember(name, category)
	if err != nil {
		return false, err
	}
	added, err := s.staff.CreateIfAbsent(ctx, &member)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return added, nil
}

// Remove deletes the staff row with that name, whatever category it is
// stored under, once confirm approves. A nil confirm approves.
func (s *StaffService) Remove(ctx context.Context, name string, confirm Confirmer) (*domain.StaffMember, error) {
	name = strings.TrimSpace(name)
	member, err := s.staff.GetByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("staff member", map[string]any{"name": name})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if confirm != nil && !confirm(*member) {
		return nil, apperrors.NewCancelled("removal cancelled")
	}

	deleted, err := s.staff.DeleteByName(ctx, member.Name)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if deleted == 0 {
		return nil, apperrors.NewNotFound("staff member", map[string]any{"name": name})
	}
	s.logger.Info("staff removed", zap.String("name", member.Name), zap.String("category", string(member.Category)))
	s.publish(ctx, *member, true)
	return member, nil
}

func newMember(name, category string) (domain.StaffMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.StaffMember{}, apperrors.NewValidationError("staff name is required", nil)
	}
	c, ok := domain.ParseStaffCategory(strings.TrimSpace(category))
	if !ok {
		return domain.StaffMember{}, apperrors.NewValidationError("unknown staff category", map[string]any{"category": category})
	}
	return domain.StaffMember{Name: name, Category: c}, nil
}

func (s *StaffService) publish(ctx context.Context, member domain.StaffMember, removed bool) {
	event := events.NewEvent(events.EventStaffChanged, member.Name, events.StaffChangedPayload{
		Category: string(member.Category),
		Removed:  removed,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
