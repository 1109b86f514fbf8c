package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/config"
)

// Query parameter names shared by the JSON API, the dashboard form and the websocket session
const (
	ParamStart    = "start"
	ParamEnd      = "end"
	ParamSymbols  = "symbols"
	ParamTopN     = "top_n"
	ParamOrder    = "order"
	ParamStopLoss = "stop_loss"
	ParamMover    = "mover"
	ParamSide     = "side"
)

// ParseParams builds analysis params from query values.
// Omitted numeric values fall back to defaults; symbols may be repeated or comma-separated.
func ParseParams(q url.Values, defaults config.PipelineConfig) (contracts.Params, error) {
	params := contracts.DefaultParams()
	params.TopN = defaults.TopN
	params.OrderPct = defaults.OrderPct
	params.StopLossPct = defaults.StopLossPct

	var err error
	if params.Start, err = parseDateParam(q, ParamStart); err != nil {
		return params, err
	}
	if params.End, err = parseDateParam(q, ParamEnd); err != nil {
		return params, err
	}

	for _, raw := range q[ParamSymbols] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				params.Symbols = append(params.Symbols, s)
			}
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{ParamTopN, &params.TopN},
		{ParamOrder, &params.OrderPct},
		{ParamStopLoss, &params.StopLossPct},
	}
	for _, p := range ints {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("%w: %s must be an integer, got %q", contracts.ErrInvalidParams, p.name, raw)
		}
		*p.dst = v
	}

	if v := q.Get(ParamMover); v != "" {
		params.Mover = contracts.Mover(v)
	}
	if v := q.Get(ParamSide); v != "" {
		params.Side = contracts.Side(v)
	}

	return params.Normalize(), nil
}

func parseDateParam(q url.Values, name string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", contracts.ErrInvalidParams, name)
	}
	t, err := pipeline.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", contracts.ErrInvalidParams, name, err)
	}
	return t, nil
}

// Values renders params back into query form
func Values(p contracts.Params) url.Values {
	q := url.Values{}
	if !p.Start.IsZero() {
		q.Set(ParamStart, p.Start.Format(contracts.DateLayout))
	}
	if !p.End.IsZero() {
		q.Set(ParamEnd, p.End.Format(contracts.DateLayout))
	}
	if len(p.Symbols) > 0 {
		q.Set(ParamSymbols, strings.Join(p.Symbols, ","))
	}
	q.Set(ParamTopN, strconv.Itoa(p.TopN))
	q.Set(ParamOrder, strconv.Itoa(p.OrderPct))
	q.Set(ParamStopLoss, strconv.Itoa(p.StopLossPct))
	q.Set(ParamMover, string(p.Mover))
	q.Set(ParamSide, string(p.Side))
	return q
}
