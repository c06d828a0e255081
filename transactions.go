package portrack

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Side identifies the direction of a transaction.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "unknown"
	}
}

// ParseSide parses a transaction side. It accepts "Buy", "Sell" and
// their lowercase forms as found in legacy transaction files.
func ParseSide(str string) (Side, error) {
	switch str {
	case "Buy", "buy", "BUY":
		return Buy, nil
	case "Sell", "sell", "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown transaction side: %q", str)
	}
}

func (s Side) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Side) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	side, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// Transaction is a single buy or sell event in the ledger. It is
// immutable once ingested: the Book tracks its own lot state, the input
// transaction list is never mutated.
type Transaction struct {
	Date       Date     `json:"date"`
	Ticker     string   `json:"ticker"`
	Side       Side     `json:"side"`
	Quantity   Quantity `json:"quantity"`
	Price      Money    `json:"price"`
	Commission Money    `json:"commission"`
	Memo       string   `json:"memo,omitempty"`
}

// NewBuy creates a Buy transaction.
func NewBuy(on Date, ticker string, quantity Quantity, price, commission Money) Transaction {
	return Transaction{Date: on, Ticker: ticker, Side: Buy, Quantity: quantity, Price: price, Commission: commission}
}

// NewSell creates a Sell transaction.
func NewSell(on Date, ticker string, quantity Quantity, price, commission Money) Transaction {
	return Transaction{Date: on, Ticker: ticker, Side: Sell, Quantity: quantity, Price: price, Commission: commission}
}

// Gross returns quantity times price, without commission.
func (t Transaction) Gross() Money { return t.Price.Mul(t.Quantity) }

// Validate checks the transaction for data-integrity errors. Malformed
// transactions must fail ingestion before the Book ever sees them.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction has no date")
	}
	if t.Ticker == "" {
		return fmt.Errorf("transaction on %s has no ticker", t.Date)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%s %s on %s: quantity must be positive, got %s", t.Side, t.Ticker, t.Date, t.Quantity)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%s %s on %s: price must be positive", t.Side, t.Ticker, t.Date)
	}
	if t.Commission.IsNegative() {
		return fmt.Errorf("%s %s on %s: commission must not be negative", t.Side, t.Ticker, t.Date)
	}
	return nil
}

// jtx is the JSONL wire form of a transaction, with decimals kept as
// bare numbers for readable diffs.
type jtx struct {
	Date       Date            `json:"date"`
	Ticker     string          `json:"ticker"`
	Side       Side            `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
	Memo       string          `json:"memo,omitempty"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(jtx{
		Date:       t.Date,
		Ticker:     t.Ticker,
		Side:       t.Side,
		Quantity:   t.Quantity.value,
		Price:      t.Price.value,
		Commission: t.Commission.value,
		Memo:       t.Memo,
	})
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var j jtx
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*t = Transaction{
		Date:       j.Date,
		Ticker:     j.Ticker,
		Side:       j.Side,
		Quantity:   Q(j.Quantity),
		Price:      M(j.Price, ""),
		Commission: M(j.Commission, ""),
		Memo:       j.Memo,
	}
	return nil
}
