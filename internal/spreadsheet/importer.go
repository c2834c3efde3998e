package spreadsheet

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/events"
	"github.com/staffdesk/staffdesk/internal/observability"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

// Sheet names shared by import and export.
const (
	SheetTickets      = "Tickets"
	SheetInteractions = "Interactions"
	SheetStaff        = "Staff"
)

// Field defaults applied to blank or non-string cells on import.
const (
	defaultUnknown         = "Unknown"
	defaultHandled         = "No"
	defaultInteractionType = "General"
)

// TicketRecorder stores imported tickets and interactions.
type TicketRecorder interface {
	TicketNumberExists(ctx context.Context, number string) (bool, error)
	RecordTicket(ctx context.Context, in domain.TicketInput) (*domain.Ticket, error)
	LogInteraction(ctx context.Context, in domain.InteractionInput) (*domain.ModeratorInteraction, error)
}

// StaffRecorder stores imported staff rows.
type StaffRecorder interface {
	AddIfAbsent(ctx context.Context, name, category string) (bool, error)
}

// ImportReport summarizes one import run.
type ImportReport struct {
	RunID                string `json:"run_id"`
	TicketsImported      int    `json:"tickets_imported"`
	TicketsMissingNumber int    `json:"tickets_missing_number"`
	TicketsDuplicate     int    `json:"tickets_duplicate"`
	InteractionsImported int    `json:"interactions_imported"`
	StaffImported        int    `json:"staff_imported"`
	StaffSkipped         int    `json:"staff_skipped"`
}

// Importer loads workbook rows into storage. Rows committed before a failure
// stay committed.
type Importer struct {
	tickets    TicketRecorder
	staff      StaffRecorder
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// ImporterDependencies bundles what the importer needs. Staff, Dispatcher,
// Logger and Metrics are optional.
type ImporterDependencies struct {
	Tickets    TicketRecorder
	Staff      StaffRecorder
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewImporter constructs an importer.
func NewImporter(deps ImporterDependencies) *Importer {
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Importer{
		tickets:    deps.Tickets,
		staff:      deps.Staff,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// ImportFile opens the workbook at path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewWorkbookError("failed to upload data", err)
	}
	defer f.Close()
	return im.ImportWorkbook(ctx, f)
}

// ImportWorkbook imports the Tickets, Interactions and Staff sheets that are
// present. The first row of each sheet is a header.
func (im *Importer) ImportWorkbook(ctx context.Context, f *excelize.File) (*ImportReport, error) {
	report := &ImportReport{RunID: uuid.NewString()}
	logger := im.logger.With(zap.String("run_id", report.RunID))
	sheets := f.GetSheetList()

	steps := []struct {
		sheet string
		run   func(context.Context, *excelize.File, *ImportReport) error
	}{
		{SheetTickets, im.importTickets},
		{SheetInteractions, im.importInteractions},
		{SheetStaff, im.importStaff},
	}
	for _, step := range steps {
		if !slices.Contains(sheets, step.sheet) {
			continue
		}
		if step.sheet == SheetStaff && im.staff == nil {
			continue
		}
		if err := step.run(ctx, f, report); err != nil {
			logger.Error("import aborted", zap.String("sheet", step.sheet), zap.Error(err), zap.Any("report", report))
			im.metrics.RecordError("import", apperrors.ToDomainError(err).Code)
			return report, err
		}
	}

	im.metrics.Incr("import.ticket.imported", int64(report.TicketsImported))
	im.metrics.Incr("import.ticket.skipped", int64(report.TicketsMissingNumber+report.TicketsDuplicate))
	im.metrics.Incr("import.interaction.imported", int64(report.InteractionsImported))
	im.metrics.Incr("import.staff.imported", int64(report.StaffImported))
	logger.Info("import completed",
		zap.Int("tickets_imported", report.TicketsImported),
		zap.Int("tickets_missing_number", report.TicketsMissingNumber),
		zap.Int("tickets_duplicate", report.TicketsDuplicate),
		zap.Int("interactions_imported", report.InteractionsImported),
		zap.Int("staff_imported", report.StaffImported),
		zap.Int("staff_skipped", report.StaffSkipped),
	)
	if err := im.dispatcher.Publish(ctx, events.NewEvent(events.EventImportCompleted, report.RunID, *report)); err != nil {
		logger.Warn("event handler failed", zap.String("event", string(events.EventImportCompleted)), zap.Error(err))
	}
	return report, nil
}

func (im *Importer) importTickets(ctx context.Context, f *excelize.File, report *ImportReport) error {
	return eachRow(f, SheetTickets, 10, func(c []cell) error {
		number := identifier(c[0])
		if number == "" {
			report.TicketsMissingNumber++
			return nil
		}
		exists, err := im.tickets.TicketNumberExists(ctx, number)
		if err != nil {
			return err
		}
		if exists {
			report.TicketsDuplicate++
			return nil
		}

		_, err = im.tickets.RecordTicket(ctx, domain.TicketInput{
			TicketNumber: number,
			Date:         cellDateValue(c[1]),
			TicketType:   textOr(c[2], defaultUnknown),
			AnsweredBy:   textOr(c[3], defaultUnknown),
			ClaimedBy:    textOr(c[4], defaultUnknown),
			ResponseTime: integerOr(c[5]),
			ClosedBy:     textOr(c[6], defaultUnknown),
			ReviewedBy:   textOr(c[7], defaultUnknown),
			Handled:      textOr(c[8], defaultHandled),
			Notes:        textOr(c[9], ""),
		})
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			report.TicketsDuplicate++
			return nil
		}
		if err != nil {
			return err
		}
		report.TicketsImported++
		return nil
	})
}

func (im *Importer) importInteractions(ctx context.Context, f *excelize.File, report *ImportReport) error {
	return eachRow(f, SheetInteractions, 3, func(c []cell) error {
		_, err := im.tickets.LogInteraction(ctx, domain.InteractionInput{
			ModeratorName:   textOr(c[0], defaultUnknown),
			Date:            cellDateValue(c[1]),
			InteractionType: textOr(c[2], defaultInteractionType),
		})
		if err != nil {
			return err
		}
		report.InteractionsImported++
		return nil
	})
}

func (im *Importer) importStaff(ctx context.Context, f *excelize.File, report *ImportReport) error {
	return eachRow(f, SheetStaff, 2, func(c []cell) error {
		name := textOr(c[0], "")
		if name == "" {
			report.StaffSkipped++
			return nil
		}
		added, err := im.staff.AddIfAbsent(ctx, name, textOr(c[1], ""))
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			report.StaffSkipped++
			return nil
		}
		if err != nil {
			return err
		}
		if added {
			report.StaffImported++
		} else {
			report.StaffSkipped++
		}
		return nil
	})
}

// eachRow calls fn with the first width cells of every non-empty data row.
func eachRow(f *excelize.File, sheet string, width int, fn func([]cell) error) error {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return apperrors.NewWorkbookError(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	for i := 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		cells := make([]cell, width)
		for col := 1; col <= width; col++ {
			c, err := readCell(f, sheet, col, i+1)
			if err != nil {
				return apperrors.NewWorkbookError(fmt.Sprintf("failed to read sheet %s", sheet), err)
			}
			cells[col-1] = c
		}
		if err := fn(cells); err != nil {
			return err
		}
	}
	return nil
}

func blankRow(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
