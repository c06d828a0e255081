package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chanv/portrack"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "portrack.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport() *portrack.Report {
	d1 := portrack.NewDate(2025, time.March, 3)
	d2 := portrack.NewDate(2025, time.March, 4)
	return &portrack.Report{
		Records: []portrack.DailyRecord{
			{
				Date:        d1,
				Value:       portrack.M(1000, "USD"),
				Cost:        portrack.M(1001, "USD"),
				CurrentPnL:  portrack.M(-1, "USD"),
				OverallPnL:  portrack.M(-1, "USD"),
				CashIn:      portrack.M(1001, "USD"),
				NetInvested: portrack.M(1001, "USD"),
				TWR:         1,
				BenchmarkTWR: 1,
			},
			{
				Date:         d2,
				Value:        portrack.M(1100, "USD"),
				Cost:         portrack.M(1001, "USD"),
				CurrentPnL:   portrack.M(99, "USD"),
				OverallPnL:   portrack.M(99, "USD"),
				DailyChange:  portrack.M(100, "USD"),
				CashIn:       portrack.M(1001, "USD"),
				NetInvested:  portrack.M(1001, "USD"),
				DailyReturn:  0.1,
				TWR:          1.1,
				BenchmarkTWR: 1.02,
			},
		},
		Open: []portrack.OpenPosition{{
			Symbol:       "AAPL",
			PortfolioPct: 100,
			Quantity:     portrack.Q(10),
			Price:        portrack.M(110, "USD"),
			Cost:         portrack.M(1001, "USD"),
			Value:        portrack.M(1100, "USD"),
			PnL:          portrack.M(99, "USD"),
		}},
		Closed: []portrack.ClosedTrade{{
			Ticker:    "MSFT",
			Quantity:  portrack.Q(2),
			Cost:      portrack.M(400, "USD"),
			SellPrice: portrack.M(210, "USD"),
			SellDate:  d2,
			PnL:       portrack.M(20, "USD"),
		}},
		Metrics: portrack.AdvancedMetrics{SharpeRatio: 1.5, Beta: 0.8},
	}
}

func TestSaveReportRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveReport(ctx, testReport()); err != nil {
		t.Fatalf("SaveReport() failed: %v", err)
	}

	recs, err := s.DailyRecords(ctx)
	if err != nil {
		t.Fatalf("DailyRecords() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d daily rows, want 2", len(recs))
	}
	if recs[0].Date != "2025-03-03" || recs[1].Date != "2025-03-04" {
		t.Errorf("dates out of order: %q, %q", recs[0].Date, recs[1].Date)
	}
	if recs[1].Value != 1100 || recs[1].TWR != 1.1 {
		t.Errorf("row 1 = %+v", recs[1])
	}

	open, err := s.OpenPositions(ctx)
	if err != nil {
		t.Fatalf("OpenPositions() failed: %v", err)
	}
	if len(open) != 1 || open[0].Symbol != "AAPL" || open[0].Value != 1100 {
		t.Errorf("open positions = %+v", open)
	}
	if open[0].Quantity != "10" {
		t.Errorf("quantity = %q, want 10", open[0].Quantity)
	}

	closed, err := s.ClosedPositions(ctx)
	if err != nil {
		t.Fatalf("ClosedPositions() failed: %v", err)
	}
	if len(closed) != 1 || closed[0].Symbol != "MSFT" || closed[0].PnL != 20 {
		t.Errorf("closed positions = %+v", closed)
	}
	if closed[0].SellDate != "2025-03-04" {
		t.Errorf("sell date = %q", closed[0].SellDate)
	}

	m, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics() failed: %v", err)
	}
	if m.SharpeRatio != 1.5 || m.Beta != 0.8 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestSaveReportReplacesPreviousRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveReport(ctx, testReport()); err != nil {
		t.Fatal(err)
	}

	// A shorter second run must fully replace the first.
	second := testReport()
	second.Records = second.Records[:1]
	second.Open = nil
	second.Closed = nil
	second.Metrics = portrack.AdvancedMetrics{Beta: 2}
	if err := s.SaveReport(ctx, second); err != nil {
		t.Fatal(err)
	}

	recs, err := s.DailyRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("got %d daily rows after replace, want 1", len(recs))
	}
	if open, _ := s.OpenPositions(ctx); len(open) != 0 {
		t.Errorf("open positions survived the replace: %+v", open)
	}
	if closed, _ := s.ClosedPositions(ctx); len(closed) != 0 {
		t.Errorf("closed positions survived the replace: %+v", closed)
	}
	m, err := s.Metrics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.Beta != 2 || m.SharpeRatio != 0 {
		t.Errorf("metrics = %+v, want only beta 2", m)
	}
}

func TestMetricsEmptyStore(t *testing.T) {
	s := openTestStore(t)
	m, err := s.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics() on empty store failed: %v", err)
	}
	if m != (portrack.AdvancedMetrics{}) {
		t.Errorf("empty store returned %+v", m)
	}
}
