package portrack

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"
)

// yahoo chart API, daily candles. The response nests the series as
// chart.result[0].timestamp[] and chart.result[0].indicators.quote[0].close[].

const yahooChart = "https://query1.finance.yahoo.com/v8/finance/chart/"

// FetchPrices downloads daily closing prices for the benchmark and the
// given tickers over [from, to] and builds a price table indexed on the
// benchmark's trading dates. The benchmark fetch is fatal; a failing
// ticker is logged and reported in the joined error while the rest of
// the table is still returned.
func FetchPrices(benchmark string, tickers []string, from, to Date, currency string) (*PriceTable, error) {
	client := daily()
	table := NewPriceTable(benchmark, currency)

	if err := fetchTicker(client, table, benchmark, from, to); err != nil {
		return nil, fmt.Errorf("fetching benchmark %q: %w", benchmark, err)
	}

	var errs error
	for _, ticker := range tickers {
		if ticker == benchmark {
			continue
		}
		if err := fetchTicker(client, table, ticker, from, to); err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("quote fetch failed")
			errs = errors.Join(errs, fmt.Errorf("fetching %q: %w", ticker, err))
		}
	}
	return table, errs
}

func fetchTicker(client *http.Client, table *PriceTable, ticker string, from, to Date) error {
	addr := fmt.Sprintf("%s%s?period1=%d&period2=%d&interval=1d&events=history",
		yahooChart, url.PathEscape(ticker), from.Unix(), to.Add(1).Unix())

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return err
	}

	timestamps, err := jsonFloats(jobj, "$.chart.result[0].timestamp[*]")
	if err != nil {
		return err
	}
	closes, err := jsonFloats(jobj, "$.chart.result[0].indicators.quote[0].close[*]")
	if err != nil {
		return err
	}
	if len(timestamps) != len(closes) {
		return fmt.Errorf("%q: %d timestamps for %d closes", ticker, len(timestamps), len(closes))
	}

	for i, ts := range timestamps {
		table.Set(ticker, DateOfUnix(int64(ts)), closes[i])
	}
	return nil
}

// jsonFloats extracts a numeric array from a parsed JSON document.
// Nulls in the series come back as NaN.
func jsonFloats(jobj any, path string) ([]float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%q: not an array", path)
	}
	vals := make([]float64, 0, len(jlist))
	for _, jv := range jlist {
		switch v := jv.(type) {
		case float64:
			vals = append(vals, v)
		case nil:
			vals = append(vals, math.NaN())
		default:
			return nil, fmt.Errorf("%q: element %v is not a number", path, jv)
		}
	}
	return vals, nil
}
