package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/events"
	"github.com/staffdesk/staffdesk/internal/observability"
	"github.com/staffdesk/staffdesk/internal/repository"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

// TicketService records tickets and moderator interactions. Both are
// append-only: there is no edit or delete path.
type TicketService struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	staff        repository.StaffRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	InteractionRepo repository.InteractionRepository
	StaffRepo       repository.StaffRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		interactions: deps.InteractionRepo,
		staff:        deps.StaffRepo,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
	}
}

// TicketNumberExists reports whether a ticket with that number is stored.
func (s *TicketService) TicketNumberExists(ctx context.Context, number string) (bool, error) {
	exists, err := s.tickets.Exists(ctx, strings.TrimSpace(number))
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return exists, nil
}

// RecordTicket normalizes and stores a new ticket. A ticket number that is
// already stored is rejected with a CONFLICT error before anything is written.
func (s *TicketService) RecordTicket(ctx context.Context, in domain.TicketInput) (*domain.Ticket, error) {
	in.TicketNumber = strings.TrimSpace(in.TicketNumber)
	if in.TicketNumber == "" {
		return nil, apperrors.NewValidationError("ticket number is required", nil)
	}

	exists, err := s.TicketNumberExists(ctx, in.TicketNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		s.metrics.RecordError("ticket.insert", apperrors.CodeConflict)
		return nil, apperrors.NewConflict("ticket number already exists", map[string]any{"ticket_number": in.TicketNumber})
	}

	ticket := domain.NewTicket(in)
	if err := s.tickets.Insert(ctx, &ticket); err != nil {
		mapped := apperrors.ToDomainError(err)
		s.metrics.RecordError("ticket.insert", mapped.Code)
		return nil, mapped
	}

	s.metrics.Incr("ticket.insert", 1)
	s.logger.Info("ticket recorded",
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("date", ticket.DateOfTicket.String()),
		zap.String("type", ticket.TicketType),
	)
	s.publish(ctx, events.NewEvent(events.EventTicketRecorded, ticket.TicketNumber, nil))
	return &ticket, nil
}

// RecordInteraction stores an interaction credited to a staff member whose
// category is interaction-eligible.
func (s *TicketService) RecordInteraction(ctx context.Context, in domain.InteractionInput) (*domain.ModeratorInteraction, error) {
	in.ModeratorName = strings.TrimSpace(in.ModeratorName)
	if in.ModeratorName == "" {
		return nil, apperrors.NewValidationError("moderator name is required", nil)
	}

	member, err := s.staff.GetByName(ctx, in.ModeratorName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewValidationError("moderator is not a staff member", map[string]any{"moderator": in.ModeratorName})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !member.Category.InteractionEligible() {
		return nil, apperrors.NewValidationError("staff category may not log interactions", map[string]any{
			"moderator": member.Name,
			"category":  string(member.Category),
		})
	}
	return s.LogInteraction(ctx, in)
}

// LogInteraction stores an interaction without checking who is credited.
// Bulk import uses it, since imported rows may name former staff.
func (s *TicketService) LogInteraction(ctx context.Context, in domain.InteractionInput) (*domain.ModeratorInteraction, error) {
	interaction := domain.NewModeratorInteraction(in)
	if err := s.interactions.Insert(ctx, &interaction); err != nil {
		mapped := apperrors.ToDomainError(err)
		s.metrics.RecordError("interaction.insert", mapped.Code)
		return nil, mapped
	}

	s.metrics.Incr("interaction.insert", 1)
	s.logger.Info("interaction recorded",
		zap.Uint("id", interaction.ID),
		zap.String("moderator", interaction.ModeratorName),
		zap.String("date", interaction.DateOfInteraction.String()),
	)
	s.publish(ctx, events.NewEvent(events.EventInteractionRecorded, interaction.ModeratorName, nil))
	return &interaction, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
