package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/httputil"
	"github.com/wonny/leadscan/pkg/logger"
)

const sampleCSV = `Eq_Date,Eq_Symbol,Eq_Series,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close
01-01-2024,AAA,EQ,100,101,111,99,110
01-01-2024,BBB,EQ,50,50,52,49,51
02-01-2024,AAA,EQ,110,115,118,110,112
02-01-2024,BBB,EQ,51,"1,051",1052,49,52
`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 4)

	// day-first dates
	assert.Equal(t, date(2024, 1, 1), records[0].Date)
	assert.Equal(t, date(2024, 1, 2), records[2].Date)

	assert.Equal(t, contracts.PriceRecord{
		Date: date(2024, 1, 2), Symbol: "AAA", PrevClose: 110, Open: 115, High: 118, Low: 110, Close: 112,
	}, records[2])

	// thousands separators are stripped
	assert.Equal(t, 1051.0, records[3].Open)
}

func TestParseCSV_ColumnOrderAndBOM(t *testing.T) {
	input := "\ufeffEq_Symbol,Eq_Close,Eq_Low,Eq_High,Eq_Open,Eq_PrevClose,Eq_Date\n" +
		"AAA,10,9,11,9.5,9.8,15/03/2024\n\n" +
		",,,,,,\n"

	records, err := ParseCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, date(2024, 3, 15), records[0].Date)
	assert.Equal(t, 9.8, records[0].PrevClose)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "missing column",
			input:   "Eq_Date,Eq_Symbol,Eq_Open\n01-01-2024,AAA,1\n",
			wantErr: ErrMissingColumn,
			wantMsg: "Eq_PrevClose",
		},
		{
			name:    "bad date",
			input:   "Eq_Date,Eq_Symbol,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close\nsomeday,AAA,1,1,1,1,1\n",
			wantMsg: "line 2",
		},
		{
			name:    "bad number",
			input:   "Eq_Date,Eq_Symbol,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close\n01-01-2024,AAA,1,1,1,1,1\n02-01-2024,AAA,1,x,1,1,1\n",
			wantMsg: "line 3: Eq_Open",
		},
		{
			name:    "short row",
			input:   "Eq_Date,Eq_Symbol,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close\n01-01-2024,AAA,1\n",
			wantMsg: "field missing",
		},
		{
			name:    "empty symbol",
			input:   "Eq_Date,Eq_Symbol,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close\n01-01-2024, ,1,1,1,1,1\n",
			wantMsg: "empty symbol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Equitydata.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_Load(t *testing.T) {
	table, err := NewCSVSource(writeCSV(t, sampleCSV)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []string{"AAA", "BBB"}, table.Symbols())

	rec, ok := table.Lookup(date(2024, 1, 2), "AAA")
	require.True(t, ok)
	assert.Equal(t, 115.0, rec.Open)
}

func TestCSVSource_LoadErrors(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	assert.Error(t, err)

	dup := "Eq_Date,Eq_Symbol,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close\n" +
		"01-01-2024,AAA,1,1,1,1,1\n" +
		"2024-01-01,AAA,1,1,1,1,1\n"
	_, err = NewCSVSource(writeCSV(t, dup)).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDuplicateRecord))
}

func TestValidate(t *testing.T) {
	table, err := contracts.NewPriceTable([]contracts.PriceRecord{
		{Date: date(2024, 1, 1), Symbol: "AAA", PrevClose: 10, Open: 10, High: 11, Low: 9, Close: 10.5},
		{Date: date(2024, 1, 1), Symbol: "BBB", PrevClose: 10, Open: 12, High: 11, Low: 9, Close: 10},
		{Date: date(2024, 1, 2), Symbol: "AAA", PrevClose: 10, Open: 10, High: 9, Low: 11, Close: 10},
		{Date: date(2024, 1, 3), Symbol: "AAA", PrevClose: 0, Open: 10, High: 11, Low: 9, Close: 10},
	})
	require.NoError(t, err)

	report := Validate(table)
	assert.False(t, report.Passed())
	assert.Equal(t, 4, report.Records)
	assert.Equal(t, 2, report.Symbols)
	assert.Equal(t, 3, report.TradingDays)
	assert.Equal(t, date(2024, 1, 1), report.From)
	assert.Equal(t, date(2024, 1, 3), report.To)
	assert.InDelta(t, 4.0/6.0, report.Coverage, 1e-9)
	assert.InDelta(t, 0.25, report.QualityScore, 1e-9)

	kinds := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		kinds = append(kinds, issue.Kind)
	}
	assert.Equal(t, []string{IssueOutsideRange, IssueHighBelowLow, IssueNonPositivePrice}, kinds)
}

func TestValidate_Empty(t *testing.T) {
	table, err := contracts.NewPriceTable(nil)
	require.NoError(t, err)

	report := Validate(table)
	assert.True(t, report.Passed())
	assert.Zero(t, report.Coverage)
}

func TestLoadTable_CSV(t *testing.T) {
	cfg := &config.Config{
		Env:  "test",
		Data: config.DataConfig{Source: config.SourceCSV, CSVPath: writeCSV(t, sampleCSV)},
	}

	table, report, err := LoadTable(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, 4, report.Records)
}

func TestPostgresSource_Load(t *testing.T) {
	// Skip if running in CI without database
	url := os.Getenv("DATABASE_URL")
	if testing.Short() || url == "" {
		t.Skip("skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err, "database connection failed")
	defer pool.Close()

	table, err := NewPostgresSource(pool).Load(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, table.Len(), 0)
}

func TestCSVSource_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Equitydata.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	cfg := &config.Config{
		Env: "test",
		Data: config.DataConfig{
			Source:       config.SourceCSV,
			CSVPath:      server.URL + "/Equitydata.csv",
			FetchTimeout: 5 * time.Second,
		},
	}

	table, _, err := LoadTable(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())

	client := httputil.New(cfg, logger.Nop()).DisableRetry()
	_, err = NewCSVSource(server.URL+"/missing.csv").WithHTTPClient(client).Load(context.Background())
	assert.Error(t, err)

	// no client configured
	_, err = NewCSVSource(server.URL + "/Equitydata.csv").Load(context.Background())
	assert.Error(t, err)
	assert.True(t, IsRemote(server.URL))
	assert.False(t, IsRemote("Equitydata.csv"))
}
