package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the textual form every stored and displayed date uses.
const CanonicalDateLayout = "01/02/2006"

const (
	isoDateLayout    = "2006-01-02"
	usParseLayout    = "1/2/2006"
	monthLabelLayout = "01-2006"
)

// CalendarDate is a day without time of day. The zero value is an absent date
// and persists as NULL.
type CalendarDate struct {
	Time  time.Time
	Valid bool
}

// NewCalendarDate builds a valid date for the given day.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) CalendarDate {
	return NewCalendarDate(t.Year(), t.Month(), t.Day())
}

// ParseCanonicalDate parses "MM/DD/YYYY" strictly. Single-digit month and day
// are accepted; anything else yields an absent date.
func ParseCanonicalDate(s string) CalendarDate {
	t, err := time.Parse(usParseLayout, strings.TrimSpace(s))
	if err != nil {
		return CalendarDate{}
	}
	return DateOf(t)
}

// ToCalendarDate applies the record construction rule: text is parsed as
// "MM/DD/YYYY", structured dates pass through, everything else is absent.
func ToCalendarDate(v any) CalendarDate {
	switch d := v.(type) {
	case CalendarDate:
		return d
	case *CalendarDate:
		if d == nil {
			return CalendarDate{}
		}
		return *d
	case time.Time:
		if d.IsZero() {
			return CalendarDate{}
		}
		return DateOf(d)
	case *time.Time:
		if d == nil || d.IsZero() {
			return CalendarDate{}
		}
		return DateOf(*d)
	case string:
		return ParseCanonicalDate(d)
	default:
		return CalendarDate{}
	}
}

// String renders the canonical form, or "" for an absent date.
func (d CalendarDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(CanonicalDateLayout)
}

// MonthLabel renders "MM-YYYY", the trend grouping key.
func (d CalendarDate) MonthLabel() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(monthLabelLayout)
}

// MonthName is the full English month name, or "" for an absent date.
func (d CalendarDate) MonthName() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Month().String()
}

// Before reports whether d falls on an earlier day than o.
func (d CalendarDate) Before(o CalendarDate) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d falls on a later day than o.
func (d CalendarDate) After(o CalendarDate) bool {
	return d.Time.After(o.Time)
}

// GormDataType keeps dates as text columns on every dialect.
func (CalendarDate) GormDataType() string {
	return "text"
}

// Value implements driver.Valuer.
func (d CalendarDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner. Canonical and legacy ISO text are both
// understood; unparsable text scans as absent rather than failing the row.
func (d *CalendarDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = CalendarDate{}
	case string:
		*d = parseStoredDate(v)
	case []byte:
		*d = parseStoredDate(string(v))
	case time.Time:
		*d = DateOf(v)
	default:
		return fmt.Errorf("calendar date: unsupported source type %T", src)
	}
	return nil
}

func parseStoredDate(s string) CalendarDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}
	}
	if d := ParseCanonicalDate(s); d.Valid {
		return d
	}
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return DateOf(t)
	}
	return CalendarDate{}
}

// NormalizeMonth turns "3" or "03" into "03". Input outside 1..12 is returned
// trimmed and unchanged so that it simply matches nothing.
func NormalizeMonth(m string) string {
	m = strings.TrimSpace(m)
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > 12 {
		return m
	}
	return fmt.Sprintf("%02d", n)
}
