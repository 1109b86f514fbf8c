package contracts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidParams wraps every parameter validation failure
var ErrInvalidParams = errors.New("invalid analysis parameters")

// MinPercent is the lowest order / stop-loss offset accepted
const MinPercent = -100

// Mover selects gainers or losers. Accepted but not used by the computation yet.
type Mover string

const (
	MoverGainer Mover = "gainer"
	MoverLoser  Mover = "loser"
)

// Side selects buy or sell. Accepted but not used by the computation yet.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Params are the user-chosen inputs of one pipeline run
type Params struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Symbols     []string  `json:"symbols"`
	TopN        int       `json:"top_n"`
	OrderPct    int       `json:"order_pct"`
	StopLossPct int       `json:"stop_loss_pct"`
	Mover       Mover     `json:"mover"`
	Side        Side      `json:"side"`
}

// DefaultParams returns params with the documented defaults and no date window
func DefaultParams() Params {
	return Params{
		TopN:        1,
		OrderPct:    1,
		StopLossPct: 1,
		Mover:       MoverGainer,
		Side:        SideBuy,
	}
}

// Normalize trims symbols, truncates dates and fills empty toggles
func (p Params) Normalize() Params {
	p.Start = CalendarDate(p.Start)
	p.End = CalendarDate(p.End)

	symbols := make([]string, 0, len(p.Symbols))
	for _, s := range p.Symbols {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	p.Symbols = symbols

	if p.Mover == "" {
		p.Mover = MoverGainer
	}
	if p.Side == "" {
		p.Side = SideBuy
	}
	p.Mover = Mover(strings.ToLower(string(p.Mover)))
	p.Side = Side(strings.ToLower(string(p.Side)))
	return p
}

// Validate checks the boundary rules. An end before start is allowed and yields an empty table.
func (p Params) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidParams)
	}
	if p.TopN < 1 {
		return fmt.Errorf("%w: top_n must be >= 1, got %d", ErrInvalidParams, p.TopN)
	}
	if p.OrderPct < MinPercent {
		return fmt.Errorf("%w: order must be >= %d, got %d", ErrInvalidParams, MinPercent, p.OrderPct)
	}
	if p.StopLossPct < MinPercent {
		return fmt.Errorf("%w: stop_loss must be >= %d, got %d", ErrInvalidParams, MinPercent, p.StopLossPct)
	}
	switch p.Mover {
	case MoverGainer, MoverLoser:
	default:
		return fmt.Errorf("%w: mover must be gainer or loser, got %q", ErrInvalidParams, p.Mover)
	}
	switch p.Side {
	case SideBuy, SideSell:
	default:
		return fmt.Errorf("%w: side must be buy or sell, got %q", ErrInvalidParams, p.Side)
	}
	return nil
}
