package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-06",
	"02/01/2006",
	"2 Jan 2006",
	time.RFC3339,
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// cellFloat reads a number, tolerating currency symbols and separators.
// Anything unparsable is 0.
func cellFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(t)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func cellInt(v any) int {
	return int(math.Round(cellFloat(v)))
}

// cellDate accepts sheet serial numbers and the text layouts staff type.
// An empty cell is the zero time.
func cellDate(v any, loc *time.Location) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case float64:
		return serialDate(t, loc), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if d, err := time.ParseInLocation(layout, s, loc); err == nil {
				return d, nil
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(f, loc), nil
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return time.Time{}, fmt.Errorf("unsupported date cell %T", v)
}

// serialDate converts a spreadsheet day serial; the time of day is dropped.
func serialDate(serial float64, loc *time.Location) time.Time {
	return time.Date(1899, 12, 30, 0, 0, 0, 0, loc).AddDate(0, 0, int(math.Floor(serial)))
}
