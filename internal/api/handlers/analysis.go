package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

// AnalysisHandler handles the analysis JSON endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	pipeline *pipeline.Pipeline
	defaults config.PipelineConfig
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(p *pipeline.Pipeline, defaults config.PipelineConfig, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline: p,
		defaults: defaults,
		logger:   log,
	}
}

// AnalysisData is the payload of one analysis response
type AnalysisData struct {
	Params contracts.Params        `json:"params"`
	Stats  contracts.StageStats    `json:"stats"`
	Count  int                     `json:"count"`
	Rows   []contracts.AnalysisRow `json:"rows"`
}

// AnalysisResponse represents the analysis endpoint response
type AnalysisResponse struct {
	Success bool         `json:"success"`
	Data    AnalysisData `json:"data"`
}

// NewAnalysisData renders a pipeline result
func NewAnalysisData(result *contracts.AnalysisResult) AnalysisData {
	rows := result.Output()
	return AnalysisData{
		Params: result.Params,
		Stats:  result.Stats,
		Count:  len(rows),
		Rows:   rows,
	}
}

// GetAnalysis runs the pipeline for the query parameters
// GET /api/analysis?start=2024-01-01&end=2024-01-31&symbols=AAA,BBB&top_n=1&order=1&stop_loss=1
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	params, err := ParseParams(r.URL.Query(), h.defaults)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.pipeline.Run(r.Context(), params)
	if err != nil {
		if isBadRequest(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).WithField("query", r.URL.RawQuery).Error("Failed to run analysis")
		respondError(w, http.StatusInternalServerError, "Failed to run analysis")
		return
	}

	respondJSON(w, http.StatusOK, AnalysisResponse{
		Success: true,
		Data:    NewAnalysisData(result),
	})
}

// SymbolsData describes the loaded table
type SymbolsData struct {
	Symbols []string `json:"symbols"`
	Records int      `json:"records"`
	From    string   `json:"from,omitempty"`
	To      string   `json:"to,omitempty"`
}

// GetSymbols returns the distinct symbols and date coverage of the table
// GET /api/symbols
func (h *AnalysisHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    NewSymbolsData(h.pipeline.Table()),
	})
}

// NewSymbolsData summarizes a table
func NewSymbolsData(table *contracts.PriceTable) SymbolsData {
	data := SymbolsData{
		Symbols: table.Symbols(),
		Records: table.Len(),
	}
	if from, to, ok := table.DateRange(); ok {
		data.From = from.Format(contracts.DateLayout)
		data.To = to.Format(contracts.DateLayout)
	}
	return data
}

// Health returns server health status with the table size
// GET /health
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "leadscan-api",
		"records": h.pipeline.Table().Len(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func isBadRequest(err error) bool {
	return errors.Is(err, contracts.ErrInvalidParams) || errors.Is(err, pipeline.ErrInvalidTopN)
}
