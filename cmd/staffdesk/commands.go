package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/staffdesk/staffdesk/internal/domain"
	"github.com/staffdesk/staffdesk/internal/service"
)

type command func(ctx context.Context, args []string) error

func (a *app) commands() map[string]command {
	return map[string]command{
		"ticket add":          a.ticketAdd,
		"ticket exists":       a.ticketExists,
		"interaction add":     a.interactionAdd,
		"tickets search":      a.ticketsSearch,
		"interactions search": a.interactionsSearch,
		"trends tickets":      a.trendsTickets,
		"trends interactions": a.trendsInteractions,
		"staff list":          a.staffList,
		"staff add":           a.staffAdd,
		"staff remove":        a.staffRemove,
		"import":              a.importWorkbook,
		"export":              a.exportWorkbook,
	}
}

// dispatch resolves one- and two-word command names.
func (a *app) dispatch(ctx context.Context, args []string) error {
	cmds := a.commands()
	if len(args) >= 2 {
		if cmd, ok := cmds[args[0]+" "+args[1]]; ok {
			return cmd(ctx, args[2:])
		}
	}
	if cmd, ok := cmds[args[0]]; ok {
		return cmd(ctx, args[1:])
	}
	fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", strings.Join(args, " "), usageText)
	return errUsage
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

func (a *app) ticketAdd(ctx context.Context, args []string) error {
	fs := a.flags("ticket add")
	number := fs.String("number", "", "ticket number (required, unique)")
	date := fs.String("date", time.Now().Format(domain.CanonicalDateLayout), "ticket date as MM/DD/YYYY")
	ticketType := fs.String("type", "", "ticket type")
	answered := fs.String("answered", "", "answered by")
	claimed := fs.String("claimed", "", "claimed by")
	response := fs.String("response", "", "response time in minutes")
	closed := fs.String("closed", "", "closed by")
	reviewed := fs.String("reviewed", "", "reviewed by")
	handled := fs.String("handled", "", "handled")
	notes := fs.String("notes", "", "notes")
	if err := parse(fs, args); err != nil {
		return err
	}

	ticket, err := a.tickets.RecordTicket(ctx, domain.TicketInput{
		TicketNumber: *number,
		Date:         *date,
		TicketType:   *ticketType,
		AnsweredBy:   *answered,
		ResponseTime: *response,
		ClaimedBy:    *claimed,
		ClosedBy:     *closed,
		ReviewedBy:   *reviewed,
		Handled:      *handled,
		Notes:        *notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "recorded ticket %s\n", ticket.TicketNumber)
	return nil
}

func (a *app) ticketExists(ctx context.Context, args []string) error {
	fs := a.flags("ticket exists")
	number := fs.String("number", "", "ticket number")
	if err := parse(fs, args); err != nil {
		return err
	}
	exists, err := a.tickets.TicketNumberExists(ctx, *number)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, exists)
	return nil
}

func (a *app) interactionAdd(ctx context.Context, args []string) error {
	fs := a.flags("interaction add")
	moderator := fs.String("moderator", "", "moderator name (must be interaction-eligible)")
	date := fs.String("date", time.Now().Format(domain.CanonicalDateLayout), "interaction date as MM/DD/YYYY")
	interactionType := fs.String("type", "", "interaction type")
	if err := parse(fs, args); err != nil {
		return err
	}
	in, err := a.tickets.RecordInteraction(ctx, domain.InteractionInput{
		ModeratorName:   *moderator,
		Date:            *date,
		InteractionType: *interactionType,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "recorded interaction %d for %s\n", in.ID, in.ModeratorName)
	return nil
}

func (a *app) ticketsSearch(ctx context.Context, args []string) error {
	fs := a.flags("tickets search")
	moderator := fs.String("moderator", "", "answered or claimed by; empty matches all")
	month := fs.String("month", "", "month, 1-12")
	year := fs.String("year", "", "four-digit year")
	if err := parse(fs, args); err != nil {
		return err
	}
	tickets, err := a.reports.GetFilteredTickets(ctx, service.TicketQuery{Moderator: *moderator, Month: *month, Year: *year})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tDATE\tTYPE\tANSWERED\tCLAIMED\tRESPONSE\tCLOSED\tREVIEWED\tHANDLED\tNOTES")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.TicketNumber, t.DateOfTicket, t.TicketType, t.AnsweredBy, t.ClaimedBy,
			t.ResponseTime, t.ClosedBy, t.ReviewedBy, t.Handled, t.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if label := monthLabel(*month, *year); label != "" {
		fmt.Fprintf(a.stdout, "Month: %s\n", label)
	}
	fmt.Fprintf(a.stdout, "Tickets: %d\n", len(tickets))
	fmt.Fprintf(a.stdout, "Average response time: %.2f minutes\n", service.CalculateAverageResponseTime(tickets))
	return nil
}

func (a *app) interactionsSearch(ctx context.Context, args []string) error {
	fs := a.flags("interactions search")
	moderator := fs.String("moderator", "", "moderator name")
	month := fs.String("month", "", "month, 1-12")
	year := fs.String("year", "", "four-digit year")
	if err := parse(fs, args); err != nil {
		return err
	}
	interactions, err := a.reports.GetFilteredInteractions(ctx, *moderator, *month, *year)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODERATOR\tDATE\tTYPE")
	for _, in := range interactions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", in.ID, in.ModeratorName, in.DateOfInteraction, in.InteractionType)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Month: %s\n", monthLabel(*month, *year))
	fmt.Fprintf(a.stdout, "Interactions: %d\n", len(interactions))
	return nil
}

func (a *app) trendsTickets(ctx context.Context, args []string) error {
	fs := a.flags("trends tickets")
	months := fs.Int("months", 6, "trailing window in 30-day months")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	trends, err := a.reports.GetTicketTrends(ctx, *months)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(a.stdout, trends)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tTICKETS\tAVG RESPONSE")
	for _, t := range trends {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", t.Month, t.Tickets, t.AvgResponseTime)
	}
	return tw.Flush()
}

func (a *app) trendsInteractions(ctx context.Context, args []string) error {
	fs := a.flags("trends interactions")
	months := fs.Int("months", 6, "trailing window in 30-day months")
	moderator := fs.String("moderator", "", "restrict to one moderator")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	trends, err := a.reports.GetInteractionTrends(ctx, *months, *moderator)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(a.stdout, trends)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tINTERACTIONS")
	for _, t := range trends {
		fmt.Fprintf(tw, "%s\t%d\n", t.Month, t.Interactions)
	}
	return tw.Flush()
}

func (a *app) staffList(ctx context.Context, args []string) error {
	fs := a.flags("staff list")
	eligible := fs.Bool("eligible", false, "only members who may log interactions, by rank")
	if err := parse(fs, args); err != nil {
		return err
	}
	list := a.staff.List
	if *eligible {
		list = a.staff.InteractionEligible
	}
	members, err := list(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Category)
	}
	return tw.Flush()
}

func (a *app) staffAdd(ctx context.Context, args []string) error {
	fs := a.flags("staff add")
	name := fs.String("name", "", "staff name")
	category := fs.String("category", "", "one of: "+categoryList())
	if err := parse(fs, args); err != nil {
		return err
	}
	member, err := a.staff.Add(ctx, *name, *category)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "added %s to %s\n", member.Name, member.Category)
	return nil
}

func (a *app) staffRemove(ctx context.Context, args []string) error {
	fs := a.flags("staff remove")
	name := fs.String("name", "", "staff name")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := parse(fs, args); err != nil {
		return err
	}
	var confirm service.Confirmer
	if !*yes {
		confirm = a.prompt
	}
	member, err := a.staff.Remove(ctx, *name, confirm)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "removed %s from %s\n", member.Name, member.Category)
	return nil
}

// prompt asks the operator on stdin; anything but y/yes declines.
func (a *app) prompt(member domain.StaffMember) bool {
	fmt.Fprintf(a.stdout, "Remove %s (%s)? [y/N] ", member.Name, member.Category)
	line, _ := bufio.NewReader(a.stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (a *app) importWorkbook(ctx context.Context, args []string) error {
	fs := a.flags("import")
	path := fs.String("file", "", "workbook to load")
	if err := parse(fs, args); err != nil {
		return err
	}
	report, err := a.importer.ImportFile(ctx, *path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "imported %d tickets (%d without number, %d duplicate), %d interactions, %d staff (%d skipped)\n",
		report.TicketsImported, report.TicketsMissingNumber, report.TicketsDuplicate,
		report.InteractionsImported, report.StaffImported, report.StaffSkipped)
	return nil
}

func (a *app) exportWorkbook(ctx context.Context, args []string) error {
	fs := a.flags("export")
	path := fs.String("file", "", "workbook to write")
	if err := parse(fs, args); err != nil {
		return err
	}
	report, err := a.exporter.ExportFile(ctx, *path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "exported %d tickets, %d interactions, %d staff to %s\n",
		report.Tickets, report.Interactions, report.Staff, *path)
	return nil
}

func monthLabel(month, year string) string {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	y, yerr := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || yerr != nil || m < 1 || m > 12 {
		return ""
	}
	return fmt.Sprintf("%s %d", domain.NewCalendarDate(y, time.Month(m), 1).MonthName(), y)
}

func categoryList() string {
	names := make([]string, 0, len(domain.StaffCategories))
	for _, c := range domain.StaffCategories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
