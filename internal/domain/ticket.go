package domain

// Ticket is a single support request with its handling metadata.
type Ticket struct {
	TicketNumber string       `gorm:"column:ticket_number;primaryKey"`
	DateOfTicket CalendarDate `gorm:"column:date_of_ticket"`
	TicketType   string       `gorm:"column:ticket_type"`
	AnsweredBy   string       `gorm:"column:answered_by"`
	ResponseTime ResponseTime `gorm:"column:response_time"`
	ClaimedBy    string       `gorm:"column:claimed_by"`
	ClosedBy     string       `gorm:"column:closed_by"`
	ReviewedBy   string       `gorm:"column:reviewed_by"`
	Handled      string       `gorm:"column:handled"`
	Notes        string       `gorm:"column:notes"`
}

// TableName implements schema.Tabler.
func (Ticket) TableName() string { return "tickets" }

// TicketInput carries raw, loosely typed field values for a new ticket.
// Date accepts "MM/DD/YYYY" text or a structured date; ResponseTime accepts
// numbers or integer text.
type TicketInput struct {
	TicketNumber string
	Date         any
	TicketType   string
	AnsweredBy   string
	ResponseTime any
	ClaimedBy    string
	ClosedBy     string
	ReviewedBy   string
	Handled      string
	Notes        string
}

// NewTicket normalizes the date and response time. Other fields, including
// the ticket number, are taken as given.
func NewTicket(in TicketInput) Ticket {
	return Ticket{
		TicketNumber: in.TicketNumber,
		DateOfTicket: ToCalendarDate(in.Date),
		TicketType:   in.TicketType,
		AnsweredBy:   in.AnsweredBy,
		ResponseTime: ToResponseTime(in.ResponseTime),
		ClaimedBy:    in.ClaimedBy,
		ClosedBy:     in.ClosedBy,
		ReviewedBy:   in.ReviewedBy,
		Handled:      in.Handled,
		Notes:        in.Notes,
	}
}

// HandledBy reports whether name answered or claimed the ticket.
func (t Ticket) HandledBy(name string) bool {
	return t.AnsweredBy == name || t.ClaimedBy == name
}
