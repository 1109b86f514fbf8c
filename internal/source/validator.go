package source

import (
	"fmt"
	"time"

	"github.com/wonny/leadscan/internal/contracts"
)

// Issue kinds
const (
	IssueNonPositivePrice = "non_positive_price"
	IssueHighBelowLow     = "high_below_low"
	IssueOutsideRange     = "outside_range"
)

// Issue is a quality problem found on one record
type Issue struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
}

// QualityReport summarizes a loaded table
type QualityReport struct {
	Records      int       `json:"records"`
	Symbols      int       `json:"symbols"`
	TradingDays  int       `json:"trading_days"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Coverage     float64   `json:"coverage"`      // records / (symbols * days)
	QualityScore float64   `json:"quality_score"` // share of records without issues
	Issues       []Issue   `json:"issues"`
}

// Passed reports whether no record had an issue
func (r *QualityReport) Passed() bool {
	return len(r.Issues) == 0
}

// Validate checks each record for price sanity. Issues are warnings; duplicates
// are already rejected when the table is built.
func Validate(table *contracts.PriceTable) *QualityReport {
	report := &QualityReport{
		Records:     table.Len(),
		Symbols:     len(table.Symbols()),
		TradingDays: table.TradingDays(),
		Issues:      make([]Issue, 0),
	}
	report.From, report.To, _ = table.DateRange()

	if report.Records == 0 {
		return report
	}

	bad := 0
	for _, r := range table.Records() {
		issues := checkRecord(r)
		if len(issues) > 0 {
			bad++
			report.Issues = append(report.Issues, issues...)
		}
	}

	report.Coverage = float64(report.Records) / float64(report.Symbols*report.TradingDays)
	report.QualityScore = 1 - float64(bad)/float64(report.Records)
	return report
}

func checkRecord(r contracts.PriceRecord) []Issue {
	var issues []Issue
	add := func(kind, format string, args ...interface{}) {
		issues = append(issues, Issue{
			Date:   r.Date,
			Symbol: r.Symbol,
			Kind:   kind,
			Detail: fmt.Sprintf(format, args...),
		})
	}

	if r.PrevClose <= 0 || r.Open <= 0 || r.High <= 0 || r.Low <= 0 || r.Close <= 0 {
		add(IssueNonPositivePrice, "prev=%.4f open=%.4f high=%.4f low=%.4f close=%.4f",
			r.PrevClose, r.Open, r.High, r.Low, r.Close)
	}
	if r.High < r.Low {
		add(IssueHighBelowLow, "high %.4f < low %.4f", r.High, r.Low)
		return issues
	}
	if r.Open < r.Low || r.Open > r.High {
		add(IssueOutsideRange, "open %.4f outside [%.4f, %.4f]", r.Open, r.Low, r.High)
	}
	if r.Close < r.Low || r.Close > r.High {
		add(IssueOutsideRange, "close %.4f outside [%.4f, %.4f]", r.Close, r.Low, r.High)
	}
	return issues
}
