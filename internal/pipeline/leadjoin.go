package pipeline

import (
	"github.com/wonny/leadscan/internal/contracts"
)

// LeadJoin inner-joins signals on (LeadDate, Symbol) against the full table.
// Surviving rows carry only the matched lead-day record; the signal's own prices are discarded.
// Rows without a LeadDate or without a match are dropped.
func LeadJoin(signals []contracts.SignalRow, table *contracts.PriceTable) []contracts.SignalRow {
	out := make([]contracts.SignalRow, 0, len(signals))
	for _, s := range signals {
		if s.LeadDate == nil {
			continue
		}
		rec, ok := table.Lookup(*s.LeadDate, s.Symbol)
		if !ok {
			continue
		}
		out = append(out, contracts.SignalRow{PriceRecord: rec})
	}
	return out
}
