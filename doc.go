// Package portrack computes the day-by-day valuation, realized and
// unrealized profit-and-loss, and risk-adjusted performance of an
// investment portfolio from a ledger of buy/sell transactions and a
// daily closing-price table.
//
// The core pieces are:
//   - Ledger: the immutable, chronologically sorted record of Buy and
//     Sell transactions.
//   - Book: per-ticker open positions with FIFO purchase lots and cost
//     basis, producing realized trades as sells consume lots.
//   - PriceTable: daily closing prices for a set of tickers, indexed by
//     the benchmark ticker's trading calendar.
//   - Compute: the valuation driver, walking trading dates in order and
//     producing one DailyRecord per date (value, cost, P&L, cash flow,
//     time-weighted return versus the benchmark, drawdown) plus the
//     open-positions snapshot, the closed-trades log, and annualized
//     risk statistics (Sharpe, Sortino, alpha, beta).
//
// The engine is synchronous and pure: it consumes an already
// materialized ledger and price table owned by the caller and returns
// an in-memory Report. Persistence, price retrieval, rendering, and the
// HTTP API live in the surrounding packages and only consume the
// Report's shapes.
package portrack
