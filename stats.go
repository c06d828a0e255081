package portrack

import "math"

// AdvancedMetrics are the risk-adjusted statistics derived from the
// completed daily series. Sharpe, Sortino and alpha are annualized.
type AdvancedMetrics struct {
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	Beta         float64 `json:"beta"`
	Alpha        float64 `json:"alpha"`
}

// computeMetrics derives the risk statistics from the daily records.
// The first record carries no return and is skipped; the regression
// uses only dates where the benchmark was quoted.
func computeMetrics(records []DailyRecord, riskFreeAnnual float64, tradingDays int) AdvancedMetrics {
	if len(records) < 2 {
		return AdvancedMetrics{}
	}

	riskFreeDaily := riskFreeAnnual / float64(tradingDays)
	annualize := math.Sqrt(float64(tradingDays))

	returns := make([]float64, 0, len(records)-1)
	var portfolio, benchmark []float64 // regression pairs
	for _, rec := range records[1:] {
		returns = append(returns, rec.DailyReturn)
		if rec.BenchmarkQuoted {
			portfolio = append(portfolio, rec.DailyReturn)
			benchmark = append(benchmark, rec.BenchmarkReturn)
		}
	}

	var m AdvancedMetrics
	meanReturn := mean(returns)
	excess := meanReturn - riskFreeDaily

	if sd := stdev(returns); sd > 0 {
		m.SharpeRatio = round2(excess / sd * annualize)
	}

	var downside []float64
	for _, r := range returns {
		if r < riskFreeDaily {
			downside = append(downside, r)
		}
	}
	if sd := stdev(downside); sd > 0 {
		m.SortinoRatio = round2(excess / sd * annualize)
	}

	if slope, intercept, ok := regress(benchmark, portfolio); ok {
		m.Beta = round2(slope)
		m.Alpha = round2(intercept * float64(tradingDays))
	}
	return m
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation, 0 when fewer than two points.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// regress fits y = intercept + slope*x by ordinary least squares.
// ok is false with fewer than two points or a degenerate x.
func regress(x, y []float64) (slope, intercept float64, ok bool) {
	if len(x) < 2 || len(x) != len(y) {
		return 0, 0, false
	}
	mx, my := mean(x), mean(y)
	var cov, varx float64
	for i := range x {
		cov += (x[i] - mx) * (y[i] - my)
		varx += (x[i] - mx) * (x[i] - mx)
	}
	if varx == 0 {
		return 0, 0, false
	}
	slope = cov / varx
	intercept = my - slope*mx
	return slope, intercept, true
}
