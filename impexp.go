package portrack

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// csvHeader is the column layout of the historical transactions file.
var csvHeader = []string{"Date", "Ticker", "Type", "Quantity", "Price", "Commission"}

// DecodeCSV reads transactions from the historical CSV layout. Dates
// accept both ISO and the legacy m/d/yy form. Rows are validated and
// the returned ledger is sorted by date.
func DecodeCSV(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading transactions header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("transactions file is missing column %q", name)
		}
	}

	ledger := NewLedger()
	var txs []Transaction
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading transactions line %d: %w", line, err)
		}

		tx, err := parseCSVRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("transactions line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := ledger.Append(txs...); err != nil {
		return nil, err
	}
	return ledger, nil
}

func parseCSVRow(row []string, col map[string]int) (Transaction, error) {
	var tx Transaction
	var err error

	if tx.Date, err = ParseDate(row[col["Date"]]); err != nil {
		return tx, err
	}
	tx.Ticker = row[col["Ticker"]]
	if tx.Side, err = ParseSide(row[col["Type"]]); err != nil {
		return tx, err
	}

	qty, err := decimal.NewFromString(row[col["Quantity"]])
	if err != nil {
		return tx, fmt.Errorf("invalid quantity %q", row[col["Quantity"]])
	}
	tx.Quantity = Quantity{value: qty}

	price, err := decimal.NewFromString(row[col["Price"]])
	if err != nil {
		return tx, fmt.Errorf("invalid price %q", row[col["Price"]])
	}
	tx.Price = Money{value: price}

	if c := row[col["Commission"]]; c != "" {
		commission, err := decimal.NewFromString(c)
		if err != nil {
			return tx, fmt.Errorf("invalid commission %q", c)
		}
		tx.Commission = Money{value: commission}
	}
	return tx, tx.Validate()
}

// EncodeCSV writes the ledger back in the historical CSV layout with
// ISO dates.
func EncodeCSV(w io.Writer, ledger *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range ledger.Transactions() {
		row := []string{
			tx.Date.String(),
			tx.Ticker,
			tx.Side.String(),
			tx.Quantity.String(),
			strconv.FormatFloat(tx.Price.AsFloat(), 'f', -1, 64),
			strconv.FormatFloat(tx.Commission.AsFloat(), 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeLedger reads a ledger in jsonl form, one transaction per line.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	dec := json.NewDecoder(r)
	ledger := NewLedger()
	var txs []Transaction
	for {
		var tx Transaction
		if err := dec.Decode(&tx); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding ledger: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := ledger.Append(txs...); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeLedger writes the ledger in jsonl form, one transaction per
// line, sorted by date.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	enc := json.NewEncoder(w)
	for _, tx := range ledger.Transactions() {
		if err := enc.Encode(tx); err != nil {
			return err
		}
	}
	return nil
}

// jquote is the jsonl wire form of one daily quote.
type jquote struct {
	Ticker string  `json:"ticker"`
	Date   Date    `json:"date"`
	Close  float64 `json:"close"`
}

// DecodePrices reads a price table in jsonl form. The benchmark and
// currency come from the caller, not the stream.
func DecodePrices(r io.Reader, benchmark, currency string) (*PriceTable, error) {
	dec := json.NewDecoder(r)
	table := NewPriceTable(benchmark, currency)
	for {
		var q jquote
		if err := dec.Decode(&q); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding prices: %w", err)
		}
		table.Set(q.Ticker, q.Date, q.Close)
	}
	return table, nil
}

// EncodePrices writes a price table in jsonl form, benchmark dates
// ascending, tickers sorted within a date.
func EncodePrices(w io.Writer, table *PriceTable) error {
	enc := json.NewEncoder(w)
	tickers := table.Tickers()
	for on := range table.Dates() {
		for _, ticker := range tickers {
			price, ok := table.Price(ticker, on)
			if !ok {
				continue
			}
			if err := enc.Encode(jquote{Ticker: ticker, Date: on, Close: price.AsFloat()}); err != nil {
				return err
			}
		}
	}
	return nil
}
