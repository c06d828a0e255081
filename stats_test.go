package portrack

import (
	"math"
	"testing"
)

// series builds records carrying just the return fields the statistics
// read. The benchmark series may be shorter; missing entries become
// unquoted dates.
func series(portfolio, benchmark []float64) []DailyRecord {
	records := make([]DailyRecord, len(portfolio)+1) // leading no-return record
	for i, r := range portfolio {
		rec := DailyRecord{DailyReturn: r}
		if i < len(benchmark) {
			rec.BenchmarkReturn = benchmark[i]
			rec.BenchmarkQuoted = true
		}
		records[i+1] = rec
	}
	return records
}

func TestComputeMetrics_Regression(t *testing.T) {
	// Portfolio moves exactly twice the benchmark: beta 2, and the
	// intercept is 0 so annualized alpha is 0 too.
	bench := []float64{0.01, 0.02, 0.03}
	port := []float64{0.02, 0.04, 0.06}

	m := computeMetrics(series(port, bench), 0.02, 252)
	if m.Beta != 2 {
		t.Errorf("beta = %v, want 2", m.Beta)
	}
	if m.Alpha != 0 {
		t.Errorf("alpha = %v, want 0", m.Alpha)
	}

	// All returns are above the daily risk-free rate: no downside
	// observations, so Sortino stays 0 while Sharpe does not.
	if m.SortinoRatio != 0 {
		t.Errorf("sortino = %v, want 0 with no downside returns", m.SortinoRatio)
	}
	rf := 0.02 / 252
	want := round2((mean(port) - rf) / stdev(port) * math.Sqrt(252))
	if m.SharpeRatio != want {
		t.Errorf("sharpe = %v, want %v", m.SharpeRatio, want)
	}
}

func TestComputeMetrics_ZeroVariance(t *testing.T) {
	port := []float64{0.01, 0.01, 0.01}
	bench := []float64{0.005, 0.005, 0.005}

	m := computeMetrics(series(port, bench), 0.02, 252)
	if m != (AdvancedMetrics{}) {
		t.Errorf("constant series produced %+v, want all zeros", m)
	}
}

func TestComputeMetrics_SortinoUsesDownsideOnly(t *testing.T) {
	// Two returns below the daily risk-free rate, one above.
	port := []float64{-0.02, 0.05, -0.01}
	m := computeMetrics(series(port, nil), 0.02, 252)

	rf := 0.02 / 252
	downside := []float64{-0.02, -0.01}
	want := round2((mean(port) - rf) / stdev(downside) * math.Sqrt(252))
	if m.SortinoRatio != want {
		t.Errorf("sortino = %v, want %v", m.SortinoRatio, want)
	}
	// No quoted benchmark dates at all: regression cannot run.
	if m.Beta != 0 || m.Alpha != 0 {
		t.Errorf("beta/alpha = %v/%v, want 0/0 without benchmark data", m.Beta, m.Alpha)
	}
}

func TestComputeMetrics_TooFewRecords(t *testing.T) {
	if m := computeMetrics(nil, 0.02, 252); m != (AdvancedMetrics{}) {
		t.Errorf("empty series produced %+v", m)
	}
	one := []DailyRecord{{DailyReturn: 0.5}}
	if m := computeMetrics(one, 0.02, 252); m != (AdvancedMetrics{}) {
		t.Errorf("single record produced %+v", m)
	}
}

func TestComputeMetrics_SingleBenchmarkPair(t *testing.T) {
	// One quoted benchmark date is not enough for a regression.
	port := []float64{0.01, 0.02, 0.03}
	bench := []float64{0.01}
	m := computeMetrics(series(port, bench), 0.02, 252)
	if m.Beta != 0 || m.Alpha != 0 {
		t.Errorf("beta/alpha = %v/%v, want 0/0 with one pair", m.Beta, m.Alpha)
	}
}

func TestRegress(t *testing.T) {
	slope, intercept, ok := regress([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	if !ok {
		t.Fatal("regress reported a degenerate fit")
	}
	if !closeTo(slope, 2) || !closeTo(intercept, 1) {
		t.Errorf("fit = %v + %v*x, want 1 + 2*x", intercept, slope)
	}

	if _, _, ok := regress([]float64{5, 5, 5}, []float64{1, 2, 3}); ok {
		t.Error("regress accepted constant x")
	}
}
