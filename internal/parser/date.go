package parser

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial day numbers count from 1899-12-30.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	minSerial = 1
	maxSerial = 2958465 // 9999-12-31

	// Serial days written as text must fall on or after 1950-01-01, so bare
	// year or account-number cells are not read as early-1900s dates.
	minTextSerial = 18264

	twoDigitYearPivot = 70
)

var (
	delimitedDate = regexp.MustCompile(`^(\d{1,4})[/.\-](\d{1,2})[/.\-](\d{1,4})(?:[ T].*)?$`)
	numericOnly   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"20060102",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate parses a cell into a UTC calendar date.
//
// An explicit format (tokens such as DD/MM/YYYY, or a Go layout) is tried
// first. Otherwise slash, dot or dash delimited dates resolve day/month by
// the position greater than 12, defaulting to day-first. Numbers are
// spreadsheet serial days. Anything else goes through a list of generic
// textual layouts. ok is false when nothing matched.
func ParseDate(value any, format string) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return truncateDay(v), !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return truncateDay(*v), !v.IsZero()
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case json.Number:
		return parseDateString(string(v), format)
	case string:
		return parseDateString(v, format)
	default:
		return time.Time{}, false
	}
}

func parseDateString(raw, format string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if format = strings.TrimSpace(format); format != "" {
		if t, err := time.Parse(formatToLayout(format), s); err == nil {
			return truncateDay(t), true
		}
	}

	if m := delimitedDate.FindStringSubmatch(s); m != nil {
		if t, ok := fromParts(m[1], m[2], m[3]); ok {
			return t, true
		}
	}

	if numericOnly.MatchString(s) && len(s) != 8 {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < minTextSerial {
			return time.Time{}, false
		}
		return fromSerial(f)
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}

	return time.Time{}, false
}

// fromParts resolves a three-part numeric date.
func fromParts(a, b, c string) (time.Time, bool) {
	first, _ := strconv.Atoi(a)
	second, _ := strconv.Atoi(b)
	third, _ := strconv.Atoi(c)

	if len(a) == 4 {
		if len(c) > 2 {
			return time.Time{}, false
		}
		return makeDate(first, second, third)
	}

	if len(c) == 3 {
		return time.Time{}, false
	}

	year := expandYear(third, len(c))

	switch {
	case first > 12 && second > 12:
		return time.Time{}, false
	case second > 12:
		return makeDate(year, first, second)
	default:
		return makeDate(year, second, first)
	}
}

func expandYear(y, digits int) int {
	if digits > 2 {
		return y
	}

	if y < twoDigitYearPivot {
		return 2000 + y
	}

	return 1900 + y
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}

	return t, true
}

func fromSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}

	days := int(math.Floor(f))
	if days < minSerial || days > maxSerial {
		return time.Time{}, false
	}

	return serialEpoch.AddDate(0, 0, days), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// formatToLayout converts DD/MM/YYYY style tokens into a Go layout.
// A format that already looks like a Go layout is returned unchanged.
func formatToLayout(format string) string {
	if strings.Contains(format, "2006") || strings.Contains(format, "Jan") {
		return format
	}

	f := strings.ToUpper(format)
	r := strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MMMM", "January",
		"MMM", "Jan",
		"MM", "1",
		"M", "1",
		"DD", "2",
		"D", "2",
	)

	return r.Replace(f)
}
