package portrack

import "fmt"

// Options tune a valuation run. The zero value is completed by
// defaults: SPY benchmark, USD, 2% risk-free, 252 trading days, and
// oversells rejected.
type Options struct {
	Benchmark   string
	Currency    string
	SellPolicy  SellPolicy
	RiskFree    float64 // annual risk-free rate, e.g. 0.02
	TradingDays int     // trading days per year
}

func (o Options) withDefaults() Options {
	if o.Benchmark == "" {
		o.Benchmark = "SPY"
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.RiskFree == 0 {
		o.RiskFree = 0.02
	}
	if o.TradingDays == 0 {
		o.TradingDays = 252
	}
	return o
}

// OpenPosition is the end-of-period snapshot of one open holding.
type OpenPosition struct {
	Symbol       string   `json:"symbol"`
	PortfolioPct float64  `json:"portfolio_pct"`
	Quantity     Quantity `json:"quantity"`
	Price        Money    `json:"price"`
	Cost         Money    `json:"cost"`
	Value        Money    `json:"value"`
	PnL          Money    `json:"pnl"`
}

// Report is the complete outcome of a valuation run.
type Report struct {
	Records []DailyRecord   `json:"records"`
	Open    []OpenPosition  `json:"open_positions"`
	Closed  []ClosedTrade   `json:"closed_positions"`
	Metrics AdvancedMetrics `json:"metrics"`
}

// MaxDrawdown returns the deepest drawdown of the run as a fraction.
func (r *Report) MaxDrawdown() float64 {
	var max float64
	for _, rec := range r.Records {
		if rec.Drawdown > max {
			max = rec.Drawdown
		}
	}
	return max
}

// Last returns the final daily record, or false on an empty run.
func (r *Report) Last() (DailyRecord, bool) {
	if len(r.Records) == 0 {
		return DailyRecord{}, false
	}
	return r.Records[len(r.Records)-1], true
}

// Compute runs the full valuation: it walks the benchmark's trading
// dates in order, applies each date's transactions to a fresh book,
// values the portfolio, chains the return series, then derives the
// open-position snapshot and risk statistics. The ledger and price
// table are read-only inputs; the returned report is independent of
// both.
func Compute(ledger *Ledger, prices *PriceTable, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if prices.Benchmark() != opts.Benchmark {
		return nil, fmt.Errorf("price table is indexed on %q, options want benchmark %q", prices.Benchmark(), opts.Benchmark)
	}

	book := NewBook(opts.SellPolicy)
	state := newCarried()
	report := &Report{}

	for on := range prices.Dates() {
		txs := ledger.On(on)
		realized, cashIn, cashOut, err := book.Apply(on, txs)
		if err != nil {
			return nil, err
		}
		state.cashIn = state.cashIn.Add(cashIn).RoundCents()
		state.cashOut = state.cashOut.Add(cashOut).RoundCents()

		report.Records = append(report.Records, state.valueDay(on, book, prices, txs, realized))
	}

	report.Open = snapshot(book, prices, report)
	report.Closed = book.ClosedTrades()
	report.Metrics = computeMetrics(report.Records, opts.RiskFree, opts.TradingDays)
	return report, nil
}

// snapshot values the surviving positions at the last available price.
func snapshot(book *Book, prices *PriceTable, report *Report) []OpenPosition {
	last, ok := report.Last()
	if !ok {
		return nil
	}
	total := last.Value.AsFloat()

	var open []OpenPosition
	for _, ticker := range book.Tickers() {
		price, ok := prices.LastPrice(ticker, last.Date)
		if !ok {
			continue
		}
		pos, _ := book.Position(ticker)
		value := price.Mul(pos.Quantity)

		var pct float64
		if total > 0 {
			pct = round2(value.AsFloat() / total * 100)
		}
		open = append(open, OpenPosition{
			Symbol:       ticker,
			PortfolioPct: pct,
			Quantity:     pos.Quantity,
			Price:        price.RoundCents(),
			Cost:         pos.CostBasis.RoundCents(),
			Value:        value.RoundCents(),
			PnL:          value.Sub(pos.CostBasis).RoundCents(),
		})
	}
	return open
}
