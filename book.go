package portrack

import (
	"fmt"
	"maps"
	"slices"
)

// SellPolicy decides what happens when a Sell exceeds the held quantity.
type SellPolicy int

const (
	// RejectOversell fails the run with an *InsufficientPositionError.
	RejectOversell SellPolicy = iota
	// SkipOversell silently drops the sell without mutating the book,
	// matching the historical behavior of the CSV pipeline.
	SkipOversell
)

func (p SellPolicy) String() string {
	switch p {
	case RejectOversell:
		return "reject"
	case SkipOversell:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseSellPolicy parses a string into a SellPolicy.
func ParseSellPolicy(s string) (SellPolicy, error) {
	switch s {
	case "reject":
		return RejectOversell, nil
	case "skip":
		return SkipOversell, nil
	default:
		return 0, fmt.Errorf("unknown sell policy: %q", s)
	}
}

// InsufficientPositionError reports a Sell for more shares than held.
type InsufficientPositionError struct {
	Ticker    string
	Date      Date
	Held      Quantity
	Requested Quantity
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("sell %s %s on %s: only %s held", e.Requested, e.Ticker, e.Date, e.Held)
}

// Position is the open holding of a single ticker: total quantity, cost
// basis, and the purchase lots oldest-first. The invariants
// Quantity == sum of lot quantities and CostBasis == sum of lot costs
// (up to cent rounding of the basis accumulator) hold at all times.
type Position struct {
	Quantity  Quantity
	CostBasis Money
	lots      lots
}

// Lots returns a copy of the open purchase lots, oldest first.
func (p *Position) Lots() []lot {
	return slices.Clone(p.lots)
}

// ClosedTrade records the realized outcome of one Sell transaction.
// One entry per Sell, not per lot consumed.
type ClosedTrade struct {
	Ticker    string   `json:"symbol"`
	Quantity  Quantity `json:"quantity"`
	Cost      Money    `json:"cost"`       // weighted FIFO cost of the consumed lots
	SellPrice Money    `json:"sell_price"`
	SellDate  Date     `json:"sell_date"`
	PnL       Money    `json:"pnl"` // quantity*price - cost - commission
}

// Book owns the per-ticker open positions and their FIFO lots. It is
// mutated exclusively by the valuation driver's single control thread.
type Book struct {
	policy    SellPolicy
	positions map[string]*Position
	closed    []ClosedTrade
}

// NewBook creates an empty book with the given oversell policy.
func NewBook(policy SellPolicy) *Book {
	return &Book{policy: policy, positions: make(map[string]*Position)}
}

// Position returns a copy of the open position for a ticker.
func (b *Book) Position(ticker string) (Position, bool) {
	p, ok := b.positions[ticker]
	if !ok {
		return Position{}, false
	}
	return Position{Quantity: p.Quantity, CostBasis: p.CostBasis, lots: slices.Clone(p.lots)}, true
}

// Tickers returns the sorted tickers with an open position.
func (b *Book) Tickers() []string {
	return slices.Sorted(maps.Keys(b.positions))
}

// ClosedTrades returns the append-only log of realized trades in the
// order they were realized.
func (b *Book) ClosedTrades() []ClosedTrade {
	return slices.Clone(b.closed)
}

// Apply consumes one date's transactions in input order and returns the
// trades realized that day together with the cash moved into and out of
// the portfolio. Cash amounts and the cost-basis accumulator are
// rounded to the cent at each update.
func (b *Book) Apply(on Date, txs []Transaction) (realized []ClosedTrade, cashIn, cashOut Money, err error) {
	for _, tx := range txs {
		switch tx.Side {
		case Buy:
			gross := tx.Gross().Add(tx.Commission)
			pos, ok := b.positions[tx.Ticker]
			if !ok {
				pos = &Position{}
				b.positions[tx.Ticker] = pos
			}
			pos.lots = append(pos.lots, lot{
				Quantity:     tx.Quantity,
				CostPerShare: gross.Div(tx.Quantity),
			})
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
			pos.CostBasis = pos.CostBasis.Add(gross.RoundCents()).RoundCents()
			cashIn = cashIn.Add(gross.RoundCents()).RoundCents()

		case Sell:
			pos, ok := b.positions[tx.Ticker]
			if !ok || pos.Quantity.LessThan(tx.Quantity) {
				if b.policy == SkipOversell {
					continue
				}
				var held Quantity
				if ok {
					held = pos.Quantity
				}
				return nil, cashIn, cashOut, &InsufficientPositionError{
					Ticker:    tx.Ticker,
					Date:      on,
					Held:      held,
					Requested: tx.Quantity,
				}
			}

			var soldCost Money
			pos.lots, soldCost = pos.lots.consume(tx.Quantity)

			pnl := tx.Gross().Sub(soldCost).Sub(tx.Commission)
			trade := ClosedTrade{
				Ticker:    tx.Ticker,
				Quantity:  tx.Quantity,
				Cost:      soldCost.RoundCents(),
				SellPrice: tx.Price.RoundCents(),
				SellDate:  on,
				PnL:       pnl.RoundCents(),
			}
			realized = append(realized, trade)
			b.closed = append(b.closed, trade)

			pos.Quantity = pos.Quantity.Sub(tx.Quantity)
			pos.CostBasis = pos.CostBasis.Sub(soldCost).RoundCents()
			cashOut = cashOut.Add(tx.Gross().Sub(tx.Commission).RoundCents()).RoundCents()

			if pos.Quantity.IsZero() {
				delete(b.positions, tx.Ticker)
			}
		}
	}
	return realized, cashIn, cashOut, nil
}
