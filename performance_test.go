package portrack

import (
	"math"
	"testing"
)

// flatTable quotes SPY and the given tickers at fixed prices over days.
func flatTable(t *testing.T, days []int, prices map[string][]float64) *PriceTable {
	t.Helper()
	table := NewPriceTable("SPY", "USD")
	for ticker, series := range prices {
		if len(series) != len(days) {
			t.Fatalf("%s has %d prices for %d days", ticker, len(series), len(days))
		}
		for i, day := range days {
			table.Set(ticker, d(day), series[i])
		}
	}
	return table
}

func mustCompute(t *testing.T, ledger *Ledger, prices *PriceTable, opts Options) *Report {
	t.Helper()
	report, err := Compute(ledger, prices, opts)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	return report
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCompute_SingleBuyFlatPrice(t *testing.T) {
	prices := flatTable(t, []int{1, 2}, map[string][]float64{
		"SPY":  {100, 100},
		"AAPL": {100, 100},
	})
	ledger := NewLedger()
	if err := ledger.Append(NewBuy(d(1), "AAPL", Q(10), M(100, "USD"), M(1, "USD"))); err != nil {
		t.Fatal(err)
	}

	report := mustCompute(t, ledger, prices, Options{})
	if len(report.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(report.Records))
	}

	day0, day1 := report.Records[0], report.Records[1]

	if got := day0.Value.AsFloat(); got != 1000 {
		t.Errorf("day0 value = %v, want 1000", got)
	}
	if got := day0.Cost.AsFloat(); got != 1001 {
		t.Errorf("day0 cost = %v, want 1001", got)
	}
	if got := day0.CurrentPnL.AsFloat(); got != -1 {
		t.Errorf("day0 current pnl = %v, want -1", got)
	}
	if got := day0.CashIn.AsFloat(); got != 1001 {
		t.Errorf("day0 cash in = %v, want 1001", got)
	}
	if got := day0.TWR; got != 1.0 {
		t.Errorf("day0 TWR = %v, want 1", got)
	}

	// Flat price, no transactions on day1: everything carries.
	if got := day1.OverallPnL.AsFloat(); got != -1 {
		t.Errorf("day1 overall pnl = %v, want -1", got)
	}
	if got := day1.DailyChange.AsFloat(); got != 0 {
		t.Errorf("day1 daily change = %v, want 0", got)
	}
	if got := day1.TWR; got != 1.0 {
		t.Errorf("day1 TWR = %v, want 1", got)
	}
	if got := day1.BenchmarkTWR; got != 1.0 {
		t.Errorf("day1 benchmark TWR = %v, want 1", got)
	}
	if got := day1.PnLNegative.AsFloat(); got != -1 {
		t.Errorf("day1 pnl negative = %v, want -1", got)
	}
	if got := day1.PnLPositive.AsFloat(); got != 0 {
		t.Errorf("day1 pnl positive = %v, want 0", got)
	}
}

func TestCompute_SellRealizesAndAdjustsTWR(t *testing.T) {
	prices := flatTable(t, []int{1, 2, 3}, map[string][]float64{
		"SPY":  {100, 100, 100},
		"AAPL": {100, 110, 120},
	})
	ledger := NewLedger()
	if err := ledger.Append(
		NewBuy(d(1), "AAPL", Q(10), M(100, "USD"), M(0, "USD")),
		NewSell(d(3), "AAPL", Q(5), M(120, "USD"), M(1, "USD")),
	); err != nil {
		t.Fatal(err)
	}

	report := mustCompute(t, ledger, prices, Options{})
	day1, day2 := report.Records[1], report.Records[2]

	// Day1: simple return, no flows.
	if !closeTo(day1.DailyReturn, 0.1) {
		t.Errorf("day1 return = %v, want 0.1", day1.DailyReturn)
	}
	if day1.TWR != 1.1 {
		t.Errorf("day1 TWR = %v, want 1.1", day1.TWR)
	}

	// Day2: sell 5 @ 120 with 1 commission.
	if got := day2.ClosedPnL.AsFloat(); got != 99 {
		t.Errorf("day2 closed pnl = %v, want 99", got)
	}
	if got := day2.Value.AsFloat(); got != 600 {
		t.Errorf("day2 value = %v, want 600", got)
	}
	if got := day2.CurrentPnL.AsFloat(); got != 100 {
		t.Errorf("day2 current pnl = %v, want 100", got)
	}
	if got := day2.OverallPnL.AsFloat(); got != 199 {
		t.Errorf("day2 overall pnl = %v, want 199", got)
	}
	if got := day2.DailyChange.AsFloat(); got != 99 {
		t.Errorf("day2 daily change = %v, want 99", got)
	}
	if got := day2.CashOut.AsFloat(); got != 599 {
		t.Errorf("day2 cash out = %v, want 599", got)
	}
	if got := day2.NetInvested.AsFloat(); got != 401 {
		t.Errorf("day2 net invested = %v, want 401", got)
	}
	// (600 + 99 - 401) / 401, rounded to 4 decimals.
	if !closeTo(day2.AdjustedReturn, 0.7431) {
		t.Errorf("day2 adjusted return = %v, want 0.7431", day2.AdjustedReturn)
	}
	// Cash-flow adjusted start: 1100 + 600 = 1700.
	wantReturn := (600.0 - 1700.0) / 1700.0
	if !closeTo(day2.DailyReturn, wantReturn) {
		t.Errorf("day2 return = %v, want %v", day2.DailyReturn, wantReturn)
	}
	if got, want := day2.TWR, round4(1.1*(1+wantReturn)); got != want {
		t.Errorf("day2 TWR = %v, want %v", got, want)
	}

	if len(report.Closed) != 1 {
		t.Fatalf("closed trades = %d, want 1", len(report.Closed))
	}
	if got := report.Closed[0].PnL.AsFloat(); got != 99 {
		t.Errorf("closed trade pnl = %v, want 99", got)
	}
}

func TestCompute_OverallEqualsCurrentPlusClosed(t *testing.T) {
	prices := flatTable(t, []int{1, 2, 3, 4}, map[string][]float64{
		"SPY":  {100, 101, 99, 103},
		"AAPL": {50, 55, 52, 60},
		"MSFT": {200, 210, 190, 220},
	})
	ledger := NewLedger()
	if err := ledger.Append(
		NewBuy(d(1), "AAPL", Q(10), M(50, "USD"), M(1, "USD")),
		NewBuy(d(1), "MSFT", Q(2), M(200, "USD"), M(1, "USD")),
		NewSell(d(2), "AAPL", Q(4), M(55, "USD"), M(1, "USD")),
		NewBuy(d(3), "AAPL", Q(5), M(52, "USD"), M(0.5, "USD")),
		NewSell(d(4), "MSFT", Q(2), M(220, "USD"), M(1, "USD")),
	); err != nil {
		t.Fatal(err)
	}

	report := mustCompute(t, ledger, prices, Options{})
	for i, rec := range report.Records {
		want := rec.CurrentPnL.Add(rec.ClosedPnL).AsFloat()
		if got := rec.OverallPnL.AsFloat(); !closeTo(got, want) {
			t.Errorf("record %d: overall pnl = %v, want current+closed = %v", i, got, want)
		}
		if !closeTo(rec.NetInvested.AsFloat(), rec.CashIn.Sub(rec.CashOut).AsFloat()) {
			t.Errorf("record %d: net invested mismatch", i)
		}
	}
}

func TestCompute_MissingQuoteExcludesValueAndCost(t *testing.T) {
	prices := flatTable(t, []int{1, 2}, map[string][]float64{
		"SPY":  {100, 100},
		"AAPL": {100, math.NaN()},
	})
	ledger := NewLedger()
	if err := ledger.Append(NewBuy(d(1), "AAPL", Q(10), M(100, "USD"), M(0, "USD"))); err != nil {
		t.Fatal(err)
	}

	report := mustCompute(t, ledger, prices, Options{})
	day1 := report.Records[1]

	if got := day1.Value.AsFloat(); got != 0 {
		t.Errorf("day1 value = %v, want 0 with no quote", got)
	}
	if got := day1.Cost.AsFloat(); got != 0 {
		t.Errorf("day1 cost = %v, want 0 with no quote", got)
	}
	if got := day1.CurrentPnL.AsFloat(); got != 0 {
		t.Errorf("day1 current pnl = %v, want 0", got)
	}
}

func TestCompute_DrawdownFromRunningPeak(t *testing.T) {
	prices := flatTable(t, []int{1, 2, 3}, map[string][]float64{
		"SPY":  {100, 100, 100},
		"AAPL": {100, 80, 120},
	})
	ledger := NewLedger()
	if err := ledger.Append(NewBuy(d(1), "AAPL", Q(10), M(100, "USD"), M(0, "USD"))); err != nil {
		t.Fatal(err)
	}

	report := mustCompute(t, ledger, prices, Options{})
	want := []float64{0, 0.2, 0}
	for i, rec := range report.Records {
		if !closeTo(rec.Drawdown, want[i]) {
			t.Errorf("record %d drawdown = %v, want %v", i, rec.Drawdown, want[i])
		}
	}
	if got := report.MaxDrawdown(); !closeTo(got, 0.2) {
		t.Errorf("max drawdown = %v, want 0.2", got)
	}
}

func TestCompute_BenchmarkTWRCarriesOverGaps(t *testing.T) {
	prices := flatTable(t, []int{1, 2, 3}, map[string][]float64{
		"SPY": {100, math.NaN(), 110},
	})
	// NaN keeps d2 on the axis but without a usable close.
	ledger := NewLedger()

	report := mustCompute(t, ledger, prices, Options{})
	if len(report.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(report.Records))
	}
	if got := report.Records[1].BenchmarkTWR; got != 1.0 {
		t.Errorf("gap day benchmark TWR = %v, want carried 1.0", got)
	}
	// d2->d3 also has no adjacent pair, so the chain still carries.
	if got := report.Records[2].BenchmarkTWR; got != 1.0 {
		t.Errorf("post-gap benchmark TWR = %v, want carried 1.0", got)
	}
	if report.Records[2].BenchmarkQuoted {
		t.Error("post-gap day should not count as a benchmark return observation")
	}
}

func TestCompute_OpenPositionSnapshot(t *testing.T) {
	prices := flatTable(t, []int{1, 2}, map[string][]float64{
		"SPY":  {100, 100},
		"AAPL": {100, 110},
		"MSFT": {200, math.NaN()},
	})
	ledger := NewLedger()
	if err := ledger.Append(
		NewBuy(d(1), "AAPL", Q(10), M(100, "USD"), M(0, "USD")),
		NewBuy(d(1), "MSFT", Q(5), M(200, "USD"), M(0, "USD")),
	); err != nil {
		t.Fatal(err)
	}

	report := mustCompute(t, ledger, prices, Options{})
	if len(report.Open) != 2 {
		t.Fatalf("open positions = %d, want 2", len(report.Open))
	}

	aapl := report.Open[0]
	if aapl.Symbol != "AAPL" {
		t.Fatalf("positions not sorted: %+v", report.Open)
	}
	if got := aapl.Value.AsFloat(); got != 1100 {
		t.Errorf("AAPL value = %v, want 1100", got)
	}
	if got := aapl.PnL.AsFloat(); got != 100 {
		t.Errorf("AAPL pnl = %v, want 100", got)
	}

	// MSFT has no quote on the last day; its last known close applies.
	msft := report.Open[1]
	if got := msft.Price.AsFloat(); got != 200 {
		t.Errorf("MSFT price = %v, want last known 200", got)
	}
	if got := msft.Value.AsFloat(); got != 1000 {
		t.Errorf("MSFT value = %v, want 1000", got)
	}
}

func TestCompute_RejectsOversellByDefault(t *testing.T) {
	prices := flatTable(t, []int{1}, map[string][]float64{
		"SPY":  {100},
		"AAPL": {100},
	})
	ledger := NewLedger()
	if err := ledger.Append(NewSell(d(1), "AAPL", Q(1), M(100, "USD"), M(0, "USD"))); err != nil {
		t.Fatal(err)
	}

	if _, err := Compute(ledger, prices, Options{}); err == nil {
		t.Fatal("Compute accepted an oversell with the default policy")
	}
	if report, err := Compute(ledger, prices, Options{SellPolicy: SkipOversell}); err != nil {
		t.Fatalf("skip policy failed: %v", err)
	} else if len(report.Closed) != 0 {
		t.Errorf("skipped sell produced %d closed trades", len(report.Closed))
	}
}

func TestCompute_BenchmarkMismatch(t *testing.T) {
	prices := flatTable(t, []int{1}, map[string][]float64{"SPY": {100}})
	if _, err := Compute(NewLedger(), prices, Options{Benchmark: "QQQ"}); err == nil {
		t.Fatal("Compute accepted a price table indexed on another benchmark")
	}
}
