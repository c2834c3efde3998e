package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ResponseTime is a ticket's response time in whole minutes. Valid is false
// only for stored values that were not integers when written by other tools.
type ResponseTime struct {
	Minutes int
	Valid   bool
}

// Minutes builds a valid response time.
func Minutes(n int) ResponseTime {
	return ResponseTime{Minutes: n, Valid: true}
}

// ToResponseTime converts loosely typed input to minutes. It never fails:
// anything that is not a non-negative integer becomes 0.
func ToResponseTime(v any) ResponseTime {
	n, ok := parseMinutes(v)
	if !ok || n < 0 {
		return Minutes(0)
	}
	return Minutes(n)
}

func parseMinutes(v any) (int, bool) {
	switch x := v.(type) {
	case ResponseTime:
		return x.Minutes, x.Valid
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		return int(x), true
	case float32:
		return truncate(float64(x))
	case float64:
		return truncate(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	case []byte:
		return parseMinutes(string(x))
	default:
		return 0, false
	}
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// String renders the minutes, or "" when missing.
func (r ResponseTime) String() string {
	if !r.Valid {
		return ""
	}
	return strconv.Itoa(r.Minutes)
}

// GormDataType implements schema.GormDataTypeInterface.
func (ResponseTime) GormDataType() string {
	return "integer"
}

// Value implements driver.Valuer.
func (r ResponseTime) Value() (driver.Value, error) {
	if !r.Valid {
		return nil, nil
	}
	return int64(r.Minutes), nil
}

// Scan implements sql.Scanner. SQLite keeps whatever was written, so text
// such as "N/A" can come back from an integer column; it scans as missing.
func (r *ResponseTime) Scan(src any) error {
	if src == nil {
		*r = ResponseTime{}
		return nil
	}
	switch src.(type) {
	case int64, float64, string, []byte:
	default:
		return fmt.Errorf("response time: unsupported source type %T", src)
	}
	n, ok := parseMinutes(src)
	*r = ResponseTime{Minutes: n, Valid: ok}
	return nil
}
