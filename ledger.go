package portrack

import (
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Ledger is the record of all buy/sell transactions.
//
// In a Ledger transactions are always in chronological order; same-day
// transactions keep their original input order, which the Book relies
// on when applying them.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Append validates and appends transactions to this ledger, maintaining
// the chronological order. A single invalid transaction rejects the
// whole batch, leaving the ledger untouched.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid transaction: %w", err)
		}
	}
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
	return nil
}

// stableSort sorts the ledger by transaction date. The sort is stable:
// transactions on the same day keep their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over all transactions in
// chronological order.
func (l *Ledger) Transactions() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// On returns the transactions dated exactly on the given date, in input
// order.
func (l *Ledger) On(on Date) []Transaction {
	var txs []Transaction
	for _, tx := range l.transactions {
		if tx.Date.After(on) {
			// The ledger is sorted by date, so it's safe to stop.
			break
		}
		if tx.Date == on {
			txs = append(txs, tx)
		}
	}
	return txs
}

// Tickers returns the sorted set of tickers appearing in the ledger.
func (l *Ledger) Tickers() []string {
	seen := make(map[string]struct{})
	for _, tx := range l.transactions {
		seen[tx.Ticker] = struct{}{}
	}
	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	return tickers
}

// OldestTransactionDate returns the date of the earliest transaction,
// false for an empty ledger.
func (l *Ledger) OldestTransactionDate() (Date, bool) {
	if len(l.transactions) == 0 {
		return Date{}, false
	}
	return l.transactions[0].Date, true
}

// NewestTransactionDate returns the date of the latest transaction,
// false for an empty ledger.
func (l *Ledger) NewestTransactionDate() (Date, bool) {
	if len(l.transactions) == 0 {
		return Date{}, false
	}
	return l.transactions[len(l.transactions)-1].Date, true
}
