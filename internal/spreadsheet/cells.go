package spreadsheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/staffdesk/staffdesk/internal/domain"
)

// serialEpoch is day zero for spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// textDateLayouts are tried in order; the first that parses wins.
var textDateLayouts = []string{
	"2006-1-2", // ISO
	"1/2/2006", // MM/DD/YYYY
	"2/1/2006", // DD/MM/YYYY
}

type cellKind int

const (
	cellBlank cellKind = iota
	cellString
	cellNumber
	cellDate
	cellOther
)

// cell is one worksheet value with the type excelize reports for it.
type cell struct {
	kind cellKind
	raw  string
}

func readCell(f *excelize.File, sheet string, col, row int) (cell, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return cell{}, err
	}
	raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return cell{}, err
	}
	if raw == "" {
		return cell{kind: cellBlank}, nil
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return cell{}, err
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return cell{kind: cellString, raw: raw}, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return cell{kind: cellNumber, raw: raw}, nil
	case excelize.CellTypeDate:
		return cell{kind: cellDate, raw: raw}, nil
	default:
		return cell{kind: cellOther, raw: raw}, nil
	}
}

// textOr returns the trimmed text of a string cell, and def for blank or
// non-string cells.
func textOr(c cell, def string) string {
	if c.kind != cellString {
		return def
	}
	return strings.TrimSpace(c.raw)
}

// identifier renders any non-blank cell as trimmed text.
func identifier(c cell) string {
	if c.kind == cellBlank {
		return ""
	}
	return strings.TrimSpace(c.raw)
}

// integerOr returns the value of a whole-number cell, and 0 for anything else.
func integerOr(c cell) int {
	if c.kind != cellNumber {
		return 0
	}
	n, err := strconv.Atoi(c.raw)
	if err != nil {
		return 0
	}
	return n
}

// cellDateValue converts a date cell. Numbers are serial day counts, date
// typed cells carry ISO 8601 text, and strings go through ParseTextDate.
func cellDateValue(c cell) domain.CalendarDate {
	switch c.kind {
	case cellNumber:
		serial, err := strconv.ParseFloat(c.raw, 64)
		if err != nil {
			return domain.CalendarDate{}
		}
		return SerialToDate(serial)
	case cellDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, c.raw); err == nil {
				return domain.DateOf(t)
			}
		}
		return domain.CalendarDate{}
	case cellString:
		return ParseTextDate(c.raw)
	default:
		return domain.CalendarDate{}
	}
}

// SerialToDate converts a spreadsheet serial day count. The fractional time
// of day is dropped.
func SerialToDate(serial float64) domain.CalendarDate {
	return domain.DateOf(serialEpoch.AddDate(0, 0, int(serial)))
}

// ParseTextDate accepts "YYYY-MM-DD", "MM/DD/YYYY" and "DD/MM/YYYY", in that
// order. Ambiguous slash dates therefore read as month first.
func ParseTextDate(s string) domain.CalendarDate {
	s = strings.TrimSpace(s)
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t)
		}
	}
	return domain.CalendarDate{}
}
