package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/events"
	"github.com/staffdesk/staffdesk/internal/repository"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

// trendDaysPerMonth approximates a month for trend windows.
const trendDaysPerMonth = 30

// TrendCache stores computed trend series. Cache failures are logged and
// never fail a query.
type TrendCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Clear(ctx context.Context) error
}

// ReportService answers history queries and computes aggregate statistics.
type ReportService struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	cache        TrendCache
	logger       *zap.Logger
	now          func() time.Time
}

// ReportDependencies bundles what the report service needs. Cache and Clock
// are optional.
type ReportDependencies struct {
	TicketRepo      repository.TicketRepository
	InteractionRepo repository.InteractionRepository
	Cache           TrendCache
	Logger          *zap.Logger
	Clock           func() time.Time
}

// TicketQuery filters ticket history. An empty Moderator matches every
// ticket. Month and Year restrict only when both are given.
type TicketQuery struct {
	Moderator string
	Month     string
	Year      string
}

// TicketTrend is one month of ticket activity.
type TicketTrend struct {
	Month           string  `json:"month"`
	Tickets         int     `json:"tickets"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

// InteractionTrend is one month of interaction activity.
type InteractionTrend struct {
	Month        string `json:"month"`
	Interactions int    `json:"interactions"`
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &ReportService{
		tickets:      deps.TicketRepo,
		interactions: deps.InteractionRepo,
		cache:        deps.Cache,
		logger:       deps.Logger,
		now:          deps.Clock,
	}
}

// GetFilteredTickets returns tickets the moderator answered or claimed,
// optionally restricted to one calendar month.
func (s *ReportService) GetFilteredTickets(ctx context.Context, q TicketQuery) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{Moderator: strings.TrimSpace(q.Moderator)}
	month, year := domain.NormalizeMonth(q.Month), strings.TrimSpace(q.Year)
	if month != "" && year != "" {
		filter.Month, filter.Year = month, year
	}
	tickets, err := s.tickets.Filter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetFilteredInteractions returns one moderator's interactions in one
// calendar month. All three arguments are required.
func (s *ReportService) GetFilteredInteractions(ctx context.Context, moderator, month, year string) ([]domain.ModeratorInteraction, error) {
	moderator, month, year = strings.TrimSpace(moderator), domain.NormalizeMonth(month), strings.TrimSpace(year)
	missing := []string{}
	if moderator == "" {
		missing = append(missing, "moderator")
	}
	if month == "" {
		missing = append(missing, "month")
	}
	if year == "" {
		missing = append(missing, "year")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("moderator, month and year are required", map[string]any{"missing": missing})
	}

	interactions, err := s.interactions.Filter(ctx, repository.InteractionFilter{Moderator: moderator, Month: month, Year: year})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return interactions, nil
}

// CalculateAverageResponseTime is the mean response time over tickets with
// a valid value. Missing values do not count toward the denominator; with
// nothing valid the result is 0.
func CalculateAverageResponseTime(tickets []domain.Ticket) float64 {
	total, count := 0, 0
	for _, t := range tickets {
		if !t.ResponseTime.Valid {
			continue
		}
		total += t.ResponseTime.Minutes
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// GetTicketTrends groups tickets dated within the trailing months*30 days by
// calendar month, oldest month first. Cached series are keyed by the window
// end day.
func (s *ReportService) GetTicketTrends(ctx context.Context, months int) ([]TicketTrend, error) {
	if months <= 0 {
		return nil, apperrors.NewValidationError("months must be positive", map[string]any{"months": months})
	}
	from, to := s.window(months)
	key := fmt.Sprintf("tickets:%d:%s", months, to)
	var cached []TicketTrend
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	groups := map[monthKey][]domain.Ticket{}
	for _, t := range tickets {
		if inWindow(t.DateOfTicket, from, to) {
			k := monthKeyOf(t.DateOfTicket)
			groups[k] = append(groups[k], t)
		}
	}

	trends := make([]TicketTrend, 0, len(groups))
	for _, k := range sortedMonthKeys(groups) {
		trends = append(trends, TicketTrend{
			Month:           k.label(),
			Tickets:         len(groups[k]),
			AvgResponseTime: CalculateAverageResponseTime(groups[k]),
		})
	}
	s.cacheSet(ctx, key, trends)
	return trends, nil
}

// GetInteractionTrends counts interactions per calendar month over the
// trailing months*30 days. An empty moderator counts everyone.
func (s *ReportService) GetInteractionTrends(ctx context.Context, months int, moderator string) ([]InteractionTrend, error) {
	if months <= 0 {
		return nil, apperrors.NewValidationError("months must be positive", map[string]any{"months": months})
	}
	moderator = strings.TrimSpace(moderator)
	from, to := s.window(months)
	key := fmt.Sprintf("interactions:%d:%s:%s", months, to, moderator)
	var cached []InteractionTrend
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	interactions, err := s.interactions.Filter(ctx, repository.InteractionFilter{Moderator: moderator})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	counts := map[monthKey]int{}
	for _, in := range interactions {
		if inWindow(in.DateOfInteraction, from, to) {
			counts[monthKeyOf(in.DateOfInteraction)]++
		}
	}

	trends := make([]InteractionTrend, 0, len(counts))
	for _, k := range sortedMonthKeys(counts) {
		trends = append(trends, InteractionTrend{Month: k.label(), Interactions: counts[k]})
	}
	s.cacheSet(ctx, key, trends)
	return trends, nil
}

// InvalidateTrends drops cached trends. It is subscribed to record events.
func (s *ReportService) InvalidateTrends(ctx context.Context, _ events.Event) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

func (s *ReportService) window(months int) (from, to domain.CalendarDate) {
	now := s.now()
	return domain.DateOf(now.AddDate(0, 0, -months*trendDaysPerMonth)), domain.DateOf(now)
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn("trend cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("trend cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func inWindow(d, from, to domain.CalendarDate) bool {
	return d.Valid && !d.Before(from) && !d.After(to)
}

type monthKey struct {
	year  int
	month time.Month
}

func monthKeyOf(d domain.CalendarDate) monthKey {
	return monthKey{year: d.Time.Year(), month: d.Time.Month()}
}

func (k monthKey) label() string {
	return domain.NewCalendarDate(k.year, k.month, 1).MonthLabel()
}

func sortedMonthKeys[V any](m map[monthKey]V) []monthKey {
	keys := make([]monthKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	return keys
}
