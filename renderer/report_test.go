package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/chanv/portrack"
)

func testReport() *portrack.Report {
	d1 := portrack.NewDate(2025, time.March, 3)
	d2 := portrack.NewDate(2025, time.March, 4)
	return &portrack.Report{
		Records: []portrack.DailyRecord{
			{Date: d1, Value: portrack.M(1000, "USD"), Cost: portrack.M(1000, "USD"), TWR: 1, BenchmarkTWR: 1},
			{Date: d2, Value: portrack.M(1100, "USD"), Cost: portrack.M(1000, "USD"),
				CurrentPnL: portrack.M(100, "USD"), OverallPnL: portrack.M(120, "USD"),
				ClosedPnL:   portrack.M(20, "USD"),
				DailyChange: portrack.M(120, "USD"),
				NetInvested: portrack.M(1000, "USD"),
				TWR:         1.1, BenchmarkTWR: 1.02, Drawdown: 0.05},
		},
		Open: []portrack.OpenPosition{{
			Symbol: "AAPL", PortfolioPct: 100, Quantity: portrack.Q(10),
			Price: portrack.M(110, "USD"), Cost: portrack.M(1000, "USD"),
			Value: portrack.M(1100, "USD"), PnL: portrack.M(100, "USD"),
		}},
		Closed: []portrack.ClosedTrade{{
			Ticker: "MSFT", Quantity: portrack.Q(2),
			Cost: portrack.M(400, "USD"), SellPrice: portrack.M(210, "USD"),
			SellDate: d2, PnL: portrack.M(20, "USD"),
		}},
		Metrics: portrack.AdvancedMetrics{SharpeRatio: 1.25, Beta: 0.9},
	}
}

func TestReportMarkdown(t *testing.T) {
	out := ReportMarkdown(testReport())

	for _, want := range []string{
		"# Portfolio Report",
		"Value at 2025-03-04",
		"$1,100.00",
		"## Open Positions",
		"AAPL",
		"100.00%",
		"## Closed Positions",
		"MSFT",
		"+$20.00",
		"## Risk Statistics",
		"1.25",
		"+10.00%", // TWR - 1
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestReportMarkdown_EmptyRun(t *testing.T) {
	out := ReportMarkdown(&portrack.Report{})
	if !strings.Contains(out, "No trading dates in range.") {
		t.Errorf("empty report output:\n%s", out)
	}
}

func TestHistoryMarkdown_TailOnly(t *testing.T) {
	out := HistoryMarkdown(testReport(), 1)
	if strings.Contains(out, "2025-03-03") {
		t.Error("history of 1 day still shows the first date")
	}
	if !strings.Contains(out, "2025-03-04") {
		t.Errorf("history missing the last date:\n%s", out)
	}
	if !strings.Contains(out, "# Daily History") {
		t.Errorf("history missing heading:\n%s", out)
	}
}
