package portrack

// DailyRecord is one row of the valuation series: the portfolio state
// at the close of a single trading date. Rows are emitted once, in date
// order, and never rewritten.
type DailyRecord struct {
	Date        Date  `json:"date"`
	Value       Money `json:"current_value"`
	Cost        Money `json:"cost"`
	CurrentPnL  Money `json:"current_pnl"`
	ClosedPnL   Money `json:"closed_pnl"`
	OverallPnL  Money `json:"overall_pnl"`
	PnLPositive Money `json:"pnl_positive"`
	PnLNegative Money `json:"pnl_negative"`
	DailyChange Money `json:"daily_pnl_change"`

	CashIn      Money `json:"cash_in"`
	CashOut     Money `json:"cash_out"`
	NetInvested Money `json:"net_invested"`

	// AdjustedReturn is the cumulative cash-flow adjusted return,
	// rounded to 4 decimals.
	AdjustedReturn float64 `json:"adjusted_return"`
	Drawdown       float64 `json:"drawdown"`
	TWR            float64 `json:"twr"`
	BenchmarkTWR   float64 `json:"benchmark_twr"`

	// Unrounded daily returns, kept for the risk statistics.
	DailyReturn     float64 `json:"daily_return"`
	BenchmarkReturn float64 `json:"benchmark_return"`
	// BenchmarkQuoted is false on dates where the benchmark had no
	// usable quote and BenchmarkReturn is a carried zero.
	BenchmarkQuoted bool `json:"-"`
}

// carried is the continuation state threaded through the valuation
// loop. Each day reads the previous day's state from here, never from
// already-emitted rows.
type carried struct {
	closedPnL Money
	cashIn    Money
	cashOut   Money
	peak      float64
	twr       float64
	benchTWR  float64

	prevValue   Money
	prevOverall Money
	first       bool

	prevBench   Money
	prevBenchOK bool
}

func newCarried() *carried {
	return &carried{twr: 1, benchTWR: 1, first: true}
}

// valueDay produces the DailyRecord for one date, given the book after
// that date's transactions were applied and the day's realized trades.
func (c *carried) valueDay(on Date, book *Book, prices *PriceTable, txs []Transaction, realized []ClosedTrade) DailyRecord {
	for _, trade := range realized {
		c.closedPnL = c.closedPnL.Add(trade.PnL)
	}

	// Market value and cost of the open positions. A ticker without a
	// usable quote today contributes to neither.
	var value, cost Money
	for _, ticker := range book.Tickers() {
		price, ok := prices.Price(ticker, on)
		if !ok {
			continue
		}
		pos, _ := book.Position(ticker)
		value = value.Add(price.Mul(pos.Quantity))
		cost = cost.Add(pos.CostBasis)
	}
	value = value.RoundCents()
	cost = cost.RoundCents()

	rec := DailyRecord{
		Date:       on,
		Value:      value,
		Cost:       cost,
		CurrentPnL: value.Sub(cost).RoundCents(),
		ClosedPnL:  c.closedPnL,
		CashIn:     c.cashIn,
		CashOut:    c.cashOut,
	}
	rec.OverallPnL = rec.CurrentPnL.Add(rec.ClosedPnL).RoundCents()
	if rec.OverallPnL.IsPositive() {
		rec.PnLPositive = rec.OverallPnL
	} else {
		rec.PnLNegative = rec.OverallPnL
	}
	if !c.first {
		rec.DailyChange = rec.OverallPnL.Sub(c.prevOverall).RoundCents()
	}

	rec.NetInvested = c.cashIn.Sub(c.cashOut).RoundCents()
	if !rec.NetInvested.IsZero() {
		cumulative := value.Add(c.closedPnL)
		rec.AdjustedReturn = round4(cumulative.Sub(rec.NetInvested).AsFloat() / rec.NetInvested.AsFloat())
	}

	c.applyReturns(&rec, txs, prices, on)

	valueF := value.AsFloat()
	if valueF > c.peak {
		c.peak = valueF
	}
	if c.peak > 0 {
		rec.Drawdown = (c.peak - valueF) / c.peak
	}

	c.prevValue = value
	c.prevOverall = rec.OverallPnL
	c.first = false
	return rec
}

// applyReturns fills the day's TWR recurrence and benchmark chain.
func (c *carried) applyReturns(rec *DailyRecord, txs []Transaction, prices *PriceTable, on Date) {
	if c.first {
		rec.TWR = c.twr
		rec.BenchmarkTWR = c.benchTWR
		c.prevBench, c.prevBenchOK = prices.Price(prices.Benchmark(), on)
		return
	}

	if len(txs) > 0 {
		adjustedStart := c.prevValue.Add(netCashFlow(txs))
		if !adjustedStart.IsZero() {
			rec.DailyReturn = rec.Value.Sub(adjustedStart).AsFloat() / adjustedStart.AsFloat()
			c.twr = twrStep(c.twr, rec.DailyReturn, true)
		}
	} else if !c.prevValue.IsZero() {
		rec.DailyReturn = rec.Value.AsFloat()/c.prevValue.AsFloat() - 1
		c.twr = twrStep(c.twr, rec.DailyReturn, true)
	}
	rec.TWR = c.twr

	// Close-to-close only when both this date and the previous one
	// have a usable quote; a gap carries the chain forward.
	bench, ok := prices.Price(prices.Benchmark(), on)
	if ok && c.prevBenchOK {
		rec.BenchmarkReturn = bench.AsFloat()/c.prevBench.AsFloat() - 1
		rec.BenchmarkQuoted = true
		c.benchTWR = twrStep(c.benchTWR, rec.BenchmarkReturn, true)
	}
	c.prevBench, c.prevBenchOK = bench, ok
	rec.BenchmarkTWR = c.benchTWR
}
