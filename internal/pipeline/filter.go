package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/leadscan/internal/contracts"
)

// dateLayouts are tried in order. Slash/dash numeric forms are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses an ISO or day-first date string into a calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return contracts.CalendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FilterByDateRange keeps records whose date lies in [start, end], inclusive
func FilterByDateRange(records []contracts.PriceRecord, start, end time.Time) []contracts.PriceRecord {
	start = contracts.CalendarDate(start)
	end = contracts.CalendarDate(end)

	out := make([]contracts.PriceRecord, 0, len(records))
	for _, r := range records {
		d := contracts.CalendarDate(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterSymbols keeps records whose symbol is listed. An empty list means no filter.
func FilterSymbols(records []contracts.PriceRecord, symbols []string) []contracts.PriceRecord {
	return filterValues(records, symbols, func(r contracts.PriceRecord) string { return r.Symbol })
}

// FilterByColumn keeps records whose value in column is one of values.
// An empty values list returns the input unchanged.
func FilterByColumn(records []contracts.PriceRecord, column string, values []string) ([]contracts.PriceRecord, error) {
	switch column {
	case "Symbol", "Eq_Symbol":
		return FilterSymbols(records, values), nil
	case "Date", "Eq_Date":
		return filterValues(records, values, func(r contracts.PriceRecord) string {
			return r.Date.Format(contracts.DateLayout)
		}), nil
	default:
		return nil, fmt.Errorf("filter: unknown column %q", column)
	}
}

func filterValues(records []contracts.PriceRecord, values []string, get func(contracts.PriceRecord) string) []contracts.PriceRecord {
	if len(values) == 0 {
		return records
	}

	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[strings.TrimSpace(v)] = struct{}{}
	}

	out := make([]contracts.PriceRecord, 0, len(records))
	for _, r := range records {
		if _, ok := allowed[get(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}
