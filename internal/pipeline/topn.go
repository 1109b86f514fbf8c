package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/leadscan/internal/contracts"
)

// ErrInvalidTopN is returned when N < 1
var ErrInvalidTopN = errors.New("top n must be >= 1")

// SelectTopN ranks each day's records by ProfitPct descending and keeps the first n.
// LeadDate is the Date of the following row in the truncated sequence, not the next calendar day.
func SelectTopN(records []contracts.PriceRecord, n int) ([]contracts.SignalRow, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}

	rows := make([]contracts.SignalRow, len(records))
	for i, r := range records {
		r.Date = contracts.CalendarDate(r.Date)
		rows[i] = contracts.SignalRow{
			PriceRecord: r,
			Profit:      r.Close - r.PrevClose,
			ProfitPct:   profitPct(r),
		}
	}

	// stable: equal ProfitPct keeps input order
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rankedAbove(rows[i].ProfitPct, rows[j].ProfitPct)
	})

	top := make([]contracts.SignalRow, 0, len(rows))
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && rows[j].Date.Equal(rows[i].Date) {
			j++
		}
		end := i + n
		if end > j {
			end = j
		}
		top = append(top, rows[i:end]...)
		i = j
	}

	for i := 0; i+1 < len(top); i++ {
		lead := top[i+1].Date
		top[i].LeadDate = &lead
	}

	return top, nil
}

// profitPct is (Close - PrevClose) / Close * 100.
// A zero close gives ±Inf, or NaN when PrevClose is also zero.
func profitPct(r contracts.PriceRecord) float64 {
	return (r.Close - r.PrevClose) / r.Close * 100
}

// rankedAbove orders descending with NaN last
func rankedAbove(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
