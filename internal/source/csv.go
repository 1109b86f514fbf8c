package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/httputil"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing required column")

// Input file column names
const (
	ColDate      = "Eq_Date"
	ColSymbol    = "Eq_Symbol"
	ColPrevClose = "Eq_PrevClose"
	ColOpen      = "Eq_Open"
	ColHigh      = "Eq_High"
	ColLow       = "Eq_Low"
	ColClose     = "Eq_Close"
)

var requiredColumns = []string{ColDate, ColSymbol, ColPrevClose, ColOpen, ColHigh, ColLow, ColClose}

// CSVSource loads the price table from a delimited file or an http(s) URL
type CSVSource struct {
	path string
	http *httputil.Client
}

// NewCSVSource creates a CSV price source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// WithHTTPClient sets the client used when path is a URL
func (s *CSVSource) WithHTTPClient(c *httputil.Client) *CSVSource {
	s.http = c
	return s
}

// IsRemote reports whether path is an http(s) URL
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (s *CSVSource) open(ctx context.Context) (io.ReadCloser, error) {
	if !IsRemote(s.path) {
		return os.Open(s.path)
	}
	if s.http == nil {
		return nil, fmt.Errorf("%s: remote source needs an HTTP client", s.path)
	}
	return s.http.Fetch(ctx, s.path)
}

// Load reads and parses the whole file
func (s *CSVSource) Load(ctx context.Context) (*contracts.PriceTable, error) {
	f, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	records, err := ParseCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	table, err := contracts.NewPriceTable(records)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return table, nil
}

// ParseCSV reads Eq_* columns in any order; extra columns are ignored.
// Eq_Date is day-first.
func ParseCSV(ctx context.Context, r io.Reader) ([]contracts.PriceRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	records := make([]contracts.PriceRecord, 0)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, cols map[string]int) (contracts.PriceRecord, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(row) {
			return "", fmt.Errorf("%s: field missing", name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	var rec contracts.PriceRecord

	dateStr, err := field(ColDate)
	if err != nil {
		return rec, err
	}
	rec.Date, err = pipeline.ParseDate(dateStr)
	if err != nil {
		return rec, fmt.Errorf("%s: %w", ColDate, err)
	}

	rec.Symbol, err = field(ColSymbol)
	if err != nil {
		return rec, err
	}
	if rec.Symbol == "" {
		return rec, fmt.Errorf("%s: empty symbol", ColSymbol)
	}

	prices := []struct {
		name string
		dst  *float64
	}{
		{ColPrevClose, &rec.PrevClose},
		{ColOpen, &rec.Open},
		{ColHigh, &rec.High},
		{ColLow, &rec.Low},
		{ColClose, &rec.Close},
	}
	for _, p := range prices {
		raw, err := field(p.name)
		if err != nil {
			return rec, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return rec, fmt.Errorf("%s: invalid number %q", p.name, raw)
		}
		*p.dst = v
	}

	return rec, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
