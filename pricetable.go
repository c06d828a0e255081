package portrack

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"sort"
)

// PriceTable holds daily closing prices for a set of tickers. The date
// axis is the benchmark ticker's trading calendar: valuation runs over
// exactly the dates the benchmark was quoted on.
type PriceTable struct {
	benchmark string
	dates     []Date // sorted ascending, the benchmark's quote dates
	prices    map[string]map[Date]float64
	currency  string
}

// NewPriceTable creates an empty table whose date axis will follow the
// given benchmark ticker.
func NewPriceTable(benchmark, currency string) *PriceTable {
	return &PriceTable{
		benchmark: benchmark,
		prices:    make(map[string]map[Date]float64),
		currency:  currency,
	}
}

// Benchmark returns the ticker that defines the date axis.
func (t *PriceTable) Benchmark() string { return t.benchmark }

// Currency returns the quote currency of all prices in the table.
func (t *PriceTable) Currency() string { return t.currency }

// Set records the closing price of a ticker on a date. NaN is accepted
// and treated as an absent quote. Setting a benchmark price extends the
// date axis.
func (t *PriceTable) Set(ticker string, on Date, price float64) {
	m, ok := t.prices[ticker]
	if !ok {
		m = make(map[Date]float64)
		t.prices[ticker] = m
	}
	m[on] = price

	if ticker == t.benchmark {
		i, found := slices.BinarySearchFunc(t.dates, on, compareDates)
		if !found {
			t.dates = slices.Insert(t.dates, i, on)
		}
	}
}

func compareDates(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}

// Price returns the closing price of a ticker on a date. The second
// return is false when the ticker was not quoted that day or the quote
// is NaN.
func (t *PriceTable) Price(ticker string, on Date) (Money, bool) {
	m, ok := t.prices[ticker]
	if !ok {
		return Money{}, false
	}
	p, ok := m[on]
	if !ok || math.IsNaN(p) {
		return Money{}, false
	}
	return M(p, t.currency), true
}

// LastPrice returns the most recent non-NaN closing price of a ticker
// on or before a date, scanning the benchmark's date axis backwards.
func (t *PriceTable) LastPrice(ticker string, on Date) (Money, bool) {
	i, found := slices.BinarySearchFunc(t.dates, on, compareDates)
	if !found {
		i--
	}
	for ; i >= 0; i-- {
		if p, ok := t.Price(ticker, t.dates[i]); ok {
			return p, true
		}
	}
	return Money{}, false
}

// Dates iterates the benchmark's quote dates in ascending order.
func (t *PriceTable) Dates() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for _, d := range t.dates {
			if !yield(d) {
				return
			}
		}
	}
}

// Len returns the number of dates on the axis.
func (t *PriceTable) Len() int { return len(t.dates) }

// Tickers returns the sorted tickers with at least one quote.
func (t *PriceTable) Tickers() []string {
	tickers := make([]string, 0, len(t.prices))
	for k := range t.prices {
		tickers = append(tickers, k)
	}
	sort.Strings(tickers)
	return tickers
}

// Validate checks that the table can drive a valuation: a non-empty
// date axis, and at least one benchmark quote.
func (t *PriceTable) Validate() error {
	if t.benchmark == "" {
		return fmt.Errorf("price table has no benchmark ticker")
	}
	if len(t.dates) == 0 {
		return fmt.Errorf("price table has no quotes for benchmark %q", t.benchmark)
	}
	return nil
}
