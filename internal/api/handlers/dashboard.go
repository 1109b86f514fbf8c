package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

// DashboardHandler renders the filter form and the date-indexed result table
type DashboardHandler struct {
	pipeline *pipeline.Pipeline
	defaults config.PipelineConfig
	logger   *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(p *pipeline.Pipeline, defaults config.PipelineConfig, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		pipeline: p,
		defaults: defaults,
		logger:   log,
	}
}

type symbolOption struct {
	Name     string
	Selected bool
}

type dashboardView struct {
	Params  contracts.Params
	Start   string
	End     string
	Symbols []symbolOption
	Columns []string
	Rows    []contracts.AnalysisRow
	Stats   *contracts.StageStats
	Error   string
}

// Render runs the pipeline for the form values and writes the page.
// Missing dates default to the table's full range. With an empty table and
// no dates in the query only the form is rendered.
// GET /
func (h *DashboardHandler) Render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table := h.pipeline.Table()
	from, to, ok := table.DateRange()
	formOnly := !ok && q.Get(ParamStart) == "" && q.Get(ParamEnd) == ""
	if ok {
		if q.Get(ParamStart) == "" {
			q.Set(ParamStart, from.Format(contracts.DateLayout))
		}
		if q.Get(ParamEnd) == "" {
			q.Set(ParamEnd, to.Format(contracts.DateLayout))
		}
	}

	view := dashboardView{Columns: contracts.AnalysisColumns}
	params, err := ParseParams(q, h.defaults)
	view.Params = params
	view.Start = q.Get(ParamStart)
	view.End = q.Get(ParamEnd)
	view.Symbols = symbolOptions(table.Symbols(), params.Symbols)

	status := http.StatusOK
	if formOnly {
		view.Rows = []contracts.AnalysisRow{}
	} else if err != nil {
		view.Error = err.Error()
		status = http.StatusBadRequest
	} else if result, err := h.pipeline.Run(r.Context(), params); err != nil {
		view.Error = err.Error()
		status = http.StatusBadRequest
		if !isBadRequest(err) {
			h.logger.WithError(err).Error("Failed to run dashboard analysis")
			status = http.StatusInternalServerError
		}
	} else {
		view.Rows = result.Output()
		view.Stats = &result.Stats
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		h.logger.WithError(err).Error("Failed to render dashboard")
		respondError(w, http.StatusInternalServerError, "Failed to render dashboard")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func symbolOptions(all, selected []string) []symbolOption {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	opts := make([]symbolOption, len(all))
	for i, s := range all {
		opts[i] = symbolOption{Name: s, Selected: chosen[s]}
	}
	return opts
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"price": formatPrice,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Lead Scan</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
form { display: grid; grid-template-columns: repeat(4, auto); gap: .5rem 1rem; align-items: center; }
table { border-collapse: collapse; margin-top: 1.5rem; }
th, td { border: 1px solid #ccc; padding: .25rem .5rem; text-align: right; }
th:first-child, td:first-child, td.symbol { text-align: left; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>Lead Scan</h1>
<form id="filters" method="get" action="/">
  <label for="start">Start date</label>
  <input type="date" id="start" name="start" value="{{.Start}}">
  <label for="end">End date</label>
  <input type="date" id="end" name="end" value="{{.End}}">
  <label for="symbols">Symbols</label>
  <select id="symbols" name="symbols" multiple>
    {{- range .Symbols}}
    <option value="{{.Name}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>
    {{- end}}
  </select>
  <label for="top_n">Top N</label>
  <input type="number" id="top_n" name="top_n" min="1" step="1" value="{{.Params.TopN}}">
  <label for="order">Order %</label>
  <input type="number" id="order" name="order" min="-100" step="1" value="{{.Params.OrderPct}}">
  <label for="stop_loss">Stop loss %</label>
  <input type="number" id="stop_loss" name="stop_loss" min="-100" step="1" value="{{.Params.StopLossPct}}">
  <fieldset id="mover">
    <label><input type="radio" name="mover" value="gainer"{{if eq .Params.Mover "gainer"}} checked{{end}}> Gainer</label>
    <label><input type="radio" name="mover" value="loser"{{if eq .Params.Mover "loser"}} checked{{end}}> Loser</label>
  </fieldset>
  <fieldset id="side">
    <label><input type="radio" name="side" value="buy"{{if eq .Params.Side "buy"}} checked{{end}}> Buy</label>
    <label><input type="radio" name="side" value="sell"{{if eq .Params.Side "sell"}} checked{{end}}> Sell</label>
  </fieldset>
  <button type="submit">Run</button>
</form>
{{- if .Error}}
<p class="error" id="error">{{.Error}}</p>
{{- end}}
{{- with .Stats}}
<p id="stats">{{.DateFiltered}} rows in range, {{.Signals}} signals, {{.Joined}} joined{{if .StopLossBreached}}, stop loss breached{{end}}</p>
{{- end}}
<table id="results">
  <thead>
    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
    {{- range .Rows}}
    <tr>
      <th scope="row">{{.Date}}</th>
      <td class="symbol">{{.Symbol}}</td>
      <td>{{price .PrevClose}}</td>
      <td>{{price .Open}}</td>
      <td>{{price .High}}</td>
      <td>{{price .Low}}</td>
      <td>{{price .Close}}</td>
      <td>{{price .OpenOrder}}</td>
      <td>{{price .StopLoss}}</td>
      <td>{{price .NewStopLoss}}</td>
    </tr>
    {{- end}}
  </tbody>
</table>
</body>
</html>
`))
