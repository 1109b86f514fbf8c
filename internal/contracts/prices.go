package contracts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrDuplicateRecord is returned when two records share a (date, symbol) pair
var ErrDuplicateRecord = errors.New("duplicate price record")

// DateLayout is the canonical calendar date format used in output
const DateLayout = "2006-01-02"

// PriceRecord is one row of daily market data
// ⭐ SSOT: 일별 시세 레코드는 이 구조체로만 전달
type PriceRecord struct {
	Date      time.Time `json:"date"`
	Symbol    string    `json:"symbol"`
	PrevClose float64   `json:"prev_close"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// PriceKey is the (date, symbol) join key of a PriceRecord
type PriceKey struct {
	Date   time.Time
	Symbol string
}

// Key returns the record's join key
func (p PriceRecord) Key() PriceKey {
	return PriceKey{Date: CalendarDate(p.Date), Symbol: p.Symbol}
}

// CalendarDate drops the time of day, keeping the calendar date as UTC midnight
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PriceSource loads the full price table once per process
type PriceSource interface {
	Load(ctx context.Context) (*PriceTable, error)
}

// PriceTable is the read-only source table shared by every pipeline run
type PriceTable struct {
	records []PriceRecord
	index   map[PriceKey]int
}

// NewPriceTable builds a table from records, normalizing dates to calendar dates.
// The input slice is copied; (date, symbol) pairs must be unique.
func NewPriceTable(records []PriceRecord) (*PriceTable, error) {
	t := &PriceTable{
		records: make([]PriceRecord, len(records)),
		index:   make(map[PriceKey]int, len(records)),
	}

	for i, r := range records {
		r.Date = CalendarDate(r.Date)
		key := r.Key()
		if prev, exists := t.index[key]; exists {
			return nil, fmt.Errorf("%w: %s %s (rows %d and %d)",
				ErrDuplicateRecord, key.Symbol, key.Date.Format(DateLayout), prev+1, i+1)
		}
		t.records[i] = r
		t.index[key] = i
	}

	return t, nil
}

// Len returns the number of records
func (t *PriceTable) Len() int {
	return len(t.records)
}

// Records returns a copy of all records in load order
func (t *PriceTable) Records() []PriceRecord {
	out := make([]PriceRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Lookup returns the record for a symbol on a calendar date
func (t *PriceTable) Lookup(date time.Time, symbol string) (PriceRecord, bool) {
	i, ok := t.index[PriceKey{Date: CalendarDate(date), Symbol: symbol}]
	if !ok {
		return PriceRecord{}, false
	}
	return t.records[i], true
}

// Symbols returns the distinct symbols, sorted
func (t *PriceTable) Symbols() []string {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)
	for _, r := range t.records {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		symbols = append(symbols, r.Symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// DateRange returns the earliest and latest dates in the table
func (t *PriceTable) DateRange() (from, to time.Time, ok bool) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}, false
	}

	from, to = t.records[0].Date, t.records[0].Date
	for _, r := range t.records[1:] {
		if r.Date.Before(from) {
			from = r.Date
		}
		if r.Date.After(to) {
			to = r.Date
		}
	}
	return from, to, true
}

// TradingDays returns the number of distinct dates
func (t *PriceTable) TradingDays() int {
	days := make(map[time.Time]struct{})
	for _, r := range t.records {
		days[r.Date] = struct{}{}
	}
	return len(days)
}
