package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/leadscan/internal/contracts"
)

// ApplyOrderStopLoss fills OpenOrder, StopLoss and NewStopLoss on a copy of rows.
//
//	OpenOrder = Open * order * 0.01 + Open
//	StopLoss  = OpenOrder * stop * 0.01 + OpenOrder
//
// NewStopLoss is decided once for the whole table: if any row has StopLoss < Low,
// every row gets 0, otherwise every row keeps its own StopLoss.
// The returned flag reports whether that breach happened.
func ApplyOrderStopLoss(rows []contracts.SignalRow, orderPct, stopLossPct int) ([]contracts.SignalRow, bool) {
	out := make([]contracts.SignalRow, len(rows))
	copy(out, rows)

	orderRate := decimal.New(int64(orderPct), -2)
	stopRate := decimal.New(int64(stopLossPct), -2)

	breached := false
	for i := range out {
		open := decimal.NewFromFloat(out[i].Open)
		openOrder := open.Mul(orderRate).Add(open)
		stopLoss := openOrder.Mul(stopRate).Add(openOrder)

		if stopLoss.LessThan(decimal.NewFromFloat(out[i].Low)) {
			breached = true
		}

		out[i].OpenOrder = openOrder.InexactFloat64()
		out[i].StopLoss = stopLoss.InexactFloat64()
	}

	for i := range out {
		if breached {
			out[i].NewStopLoss = 0
		} else {
			out[i].NewStopLoss = out[i].StopLoss
		}
	}

	return out, breached
}
