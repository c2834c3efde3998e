package spreadsheet

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/observability"
	apperrors "github.com/staffdesk/staffdesk/pkg/util/errorutil"
)

var (
	ticketHeaders      = []any{"Ticket Number", "Date", "Type", "Answered By", "Claimed By", "Response Time", "Closed By", "Reviewed By", "Handled", "Notes"}
	interactionHeaders = []any{"Moderator Name", "Date", "Interaction Type"}
	staffHeaders       = []any{"Name", "Category"}
)

type ticketLister interface {
	List(ctx context.Context) ([]domain.Ticket, error)
}

type interactionLister interface {
	List(ctx context.Context) ([]domain.ModeratorInteraction, error)
}

type staffLister interface {
	List(ctx context.Context) ([]domain.StaffMember, error)
}

// ExportReport summarizes one export run.
type ExportReport struct {
	RunID        string `json:"run_id"`
	Tickets      int    `json:"tickets"`
	Interactions int    `json:"interactions"`
	Staff        int    `json:"staff"`
}

// Exporter writes every table to a three-sheet workbook.
type Exporter struct {
	tickets      ticketLister
	interactions interactionLister
	staff        staffLister
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// NewExporter constructs an exporter. The repositories satisfy the lister
// arguments directly.
func NewExporter(tickets ticketLister, interactions interactionLister, staff staffLister, logger *zap.Logger, metrics *observability.Metrics) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{tickets: tickets, interactions: interactions, staff: staff, logger: logger, metrics: metrics}
}

// ExportFile builds the workbook and saves it at path.
func (ex *Exporter) ExportFile(ctx context.Context, path string) (*ExportReport, error) {
	f, report, err := ex.BuildWorkbook(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		ex.metrics.RecordError("export", apperrors.CodeWorkbook)
		return nil, apperrors.NewWorkbookError("failed to export data", err)
	}
	ex.logger.Info("export completed",
		zap.String("run_id", report.RunID),
		zap.String("path", path),
		zap.Int("tickets", report.Tickets),
		zap.Int("interactions", report.Interactions),
		zap.Int("staff", report.Staff),
	)
	return report, nil
}

// BuildWorkbook renders the Tickets, Interactions and Staff sheets in memory.
// Dates are written in the canonical MM/DD/YYYY form.
func (ex *Exporter) BuildWorkbook(ctx context.Context) (*excelize.File, *ExportReport, error) {
	tickets, err := ex.tickets.List(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	interactions, err := ex.interactions.List(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	staff, err := ex.staff.List(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	f := excelize.NewFile()
	if err := writeSheets(f, tickets, interactions, staff); err != nil {
		_ = f.Close()
		ex.metrics.RecordError("export", apperrors.CodeWorkbook)
		return nil, nil, apperrors.NewWorkbookError("failed to export data", err)
	}

	report := &ExportReport{
		RunID:        uuid.NewString(),
		Tickets:      len(tickets),
		Interactions: len(interactions),
		Staff:        len(staff),
	}
	ex.metrics.Incr("export.ticket", int64(report.Tickets))
	ex.metrics.Incr("export.interaction", int64(report.Interactions))
	ex.metrics.Incr("export.staff", int64(report.Staff))
	return f, report, nil
}

func writeSheets(f *excelize.File, tickets []domain.Ticket, interactions []domain.ModeratorInteraction, staff []domain.StaffMember) error {
	if err := f.SetSheetName(f.GetSheetName(0), SheetTickets); err != nil {
		return err
	}
	for _, name := range []string{SheetInteractions, SheetStaff} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	ticketRows := make([][]any, 0, len(tickets))
	for _, t := range tickets {
		var minutes any = ""
		if t.ResponseTime.Valid {
			minutes = t.ResponseTime.Minutes
		}
		ticketRows = append(ticketRows, []any{
			t.TicketNumber,
			t.DateOfTicket.String(),
			t.TicketType,
			t.AnsweredBy,
			t.ClaimedBy,
			minutes,
			t.ClosedBy,
			t.ReviewedBy,
			t.Handled,
			t.Notes,
		})
	}
	if err := writeRows(f, SheetTickets, ticketHeaders, ticketRows); err != nil {
		return err
	}

	interactionRows := make([][]any, 0, len(interactions))
	for _, in := range interactions {
		interactionRows = append(interactionRows, []any{in.ModeratorName, in.DateOfInteraction.String(), in.InteractionType})
	}
	if err := writeRows(f, SheetInteractions, interactionHeaders, interactionRows); err != nil {
		return err
	}

	staffRows := make([][]any, 0, len(staff))
	for _, m := range staff {
		staffRows = append(staffRows, []any{m.Name, string(m.Category)})
	}
	return writeRows(f, SheetStaff, staffHeaders, staffRows)
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return err
		}
	}
	return nil
}
