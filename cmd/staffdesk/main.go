package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/events"
	"github.com/staffdesk/staffdesk/internal/observability"
	"github.com/staffdesk/staffdesk/internal/persistence"
	"github.com/staffdesk/staffdesk/internal/repository"
	"github.com/staffdesk/staffdesk/internal/service"
	"github.com/staffdesk/staffdesk/internal/spreadsheet"
	"github.com/staffdesk/staffdesk/internal/worker"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

const usageText = `Usage: staffdesk [-stats] <command> [flags]

Commands:
  ticket add           record a ticket
  ticket exists        check whether a ticket number is stored
  interaction add      record a moderator interaction
  tickets search       list tickets for a moderator and month
  interactions search  list one moderator's interactions in a month
  trends tickets       monthly ticket counts and average response time
  trends interactions  monthly interaction counts
  staff list           list staff members
  staff add            add a staff member
  staff remove         remove a staff member
  import               load a workbook
  export               write every table to a workbook

Run "staffdesk <command> -h" for command flags.
`

// errUsage marks a malformed command line; the flag package has already
// printed the details.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("staffdesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	stats := fs.Bool("stats", false, "print operation counters to stderr on exit")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck
	logger = observability.WithApp(logger, cfg.App)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return exitCode(stderr, err)
	}
	defer a.close()
	a.stdin, a.stdout, a.stderr = stdin, stdout, stderr

	err = a.dispatch(ctx, fs.Args())
	if *stats {
		for _, c := range a.metrics.Snapshot() {
			fmt.Fprintf(stderr, "%s\t%d\n", c.Name, c.Value)
		}
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return exitCode(stderr, err)
}

// exitCode prints err as "CODE: message" and returns the exit status.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	de := apperrors.ToDomainError(err)
	if de.Err != nil && de.Code == apperrors.CodeInternal {
		fmt.Fprintf(w, "%s: %s: %v\n", de.Code, de.Message, de.Err)
	} else {
		fmt.Fprintf(w, "%s: %s\n", de.Code, de.Message)
	}
	return 1
}

// app holds the wired services for one invocation.
type app struct {
	db       *persistence.Database
	redis    *persistence.Redis
	tickets  *service.TicketService
	staff    *service.StaffService
	reports  *service.ReportService
	importer *spreadsheet.Importer
	exporter *spreadsheet.Exporter
	metrics  *observability.Metrics
	logger   *zap.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	roster, err := domain.LoadRoster(cfg.Roster.File)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"file": cfg.Roster.File})
	}

	db, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	created, err := persistence.EnsureSchema(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, apperrors.NewInternalError(err)
	}

	ticketRepo := repository.NewTicketRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	a := &app{db: db, metrics: metrics, logger: logger}

	reportDeps := service.ReportDependencies{
		TicketRepo:      ticketRepo,
		InteractionRepo: interactionRepo,
		Logger:          logger,
	}
	redis, cache := persistence.OpenTrendCache(ctx, cfg.Redis, logger)
	if cache != nil {
		a.redis = redis
		reportDeps.Cache = cache
	}
	a.reports = service.NewReportService(reportDeps)
	worker.StartActivityWorker(dispatcher, a.reports, logger)

	a.tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		InteractionRepo: interactionRepo,
		StaffRepo:       staffRepo,
		Dispatcher:      dispatcher,
		Logger:          logger,
		Metrics:         metrics,
	})
	a.staff = service.NewStaffService(service.StaffDependencies{
		StaffRepo:  staffRepo,
		Roster:     roster,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	// The roster seeds a new store only. After that the staff table is
	// authoritative.
	if slices.Contains(created, domain.StaffMember{}.TableName()) {
		if _, err := a.staff.Seed(ctx); err != nil {
			a.close()
			return nil, err
		}
	}

	a.importer = spreadsheet.NewImporter(spreadsheet.ImporterDependencies{
		Tickets:    a.tickets,
		Staff:      a.staff,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	a.exporter = spreadsheet.NewExporter(ticketRepo, interactionRepo, staffRepo, logger, metrics)
	return a, nil
}

func (a *app) close() {
	a.redis.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
}
