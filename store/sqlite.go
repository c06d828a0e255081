// Package store persists valuation runs to SQLite so the HTTP API and
// the reporting tools can serve them without recomputing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chanv/portrack"
)

// SQLiteStore holds the report tables.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the report database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per trading date of the latest valuation run.
	CREATE TABLE IF NOT EXISTS daily_records (
		date TEXT PRIMARY KEY,
		current_value REAL NOT NULL,
		cost REAL NOT NULL,
		current_pnl REAL NOT NULL,
		closed_pnl REAL NOT NULL,
		overall_pnl REAL NOT NULL,
		daily_pnl_change REAL NOT NULL,
		cash_in REAL NOT NULL,
		cash_out REAL NOT NULL,
		net_invested REAL NOT NULL,
		adjusted_return REAL NOT NULL,
		drawdown REAL NOT NULL,
		twr REAL NOT NULL,
		benchmark_twr REAL NOT NULL,
		daily_return REAL NOT NULL,
		benchmark_return REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS open_positions (
		symbol TEXT PRIMARY KEY,
		portfolio_pct REAL NOT NULL,
		quantity TEXT NOT NULL,
		price REAL NOT NULL,
		cost REAL NOT NULL,
		value REAL NOT NULL,
		pnl REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS closed_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		quantity TEXT NOT NULL,
		cost REAL NOT NULL,
		sell_price REAL NOT NULL,
		sell_date TEXT NOT NULL,
		pnl REAL NOT NULL
	);

	-- Single-row table, the metrics of the latest run.
	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_closed_sell_date ON closed_positions(sell_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveReport replaces the stored run with the given report.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *portrack.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"daily_records", "open_positions", "closed_positions", "metrics"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_records (date, current_value, cost, current_pnl, closed_pnl,
			overall_pnl, daily_pnl_change, cash_in, cash_out, net_invested,
			adjusted_return, drawdown, twr, benchmark_twr, daily_return, benchmark_return)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range report.Records {
		_, err := stmt.ExecContext(ctx, rec.Date.String(),
			rec.Value.AsFloat(), rec.Cost.AsFloat(), rec.CurrentPnL.AsFloat(),
			rec.ClosedPnL.AsFloat(), rec.OverallPnL.AsFloat(), rec.DailyChange.AsFloat(),
			rec.CashIn.AsFloat(), rec.CashOut.AsFloat(), rec.NetInvested.AsFloat(),
			rec.AdjustedReturn, rec.Drawdown, rec.TWR, rec.BenchmarkTWR,
			rec.DailyReturn, rec.BenchmarkReturn)
		if err != nil {
			return fmt.Errorf("inserting daily record %s: %w", rec.Date, err)
		}
	}

	for _, pos := range report.Open {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO open_positions (symbol, portfolio_pct, quantity, price, cost, value, pnl)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, pos.Symbol, pos.PortfolioPct, pos.Quantity.String(),
			pos.Price.AsFloat(), pos.Cost.AsFloat(), pos.Value.AsFloat(), pos.PnL.AsFloat())
		if err != nil {
			return fmt.Errorf("inserting open position %s: %w", pos.Symbol, err)
		}
	}

	for _, trade := range report.Closed {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO closed_positions (symbol, quantity, cost, sell_price, sell_date, pnl)
			VALUES (?, ?, ?, ?, ?, ?)
		`, trade.Ticker, trade.Quantity.String(), trade.Cost.AsFloat(),
			trade.SellPrice.AsFloat(), trade.SellDate.String(), trade.PnL.AsFloat())
		if err != nil {
			return fmt.Errorf("inserting closed position %s: %w", trade.Ticker, err)
		}
	}

	payload, err := json.Marshal(report.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO metrics (id, payload) VALUES (1, ?)`, string(payload)); err != nil {
		return fmt.Errorf("inserting metrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DailyRow is the flat, float-valued form of a stored daily record.
type DailyRow struct {
	Date            string  `json:"date"`
	Value           float64 `json:"current_value"`
	Cost            float64 `json:"cost"`
	CurrentPnL      float64 `json:"current_pnl"`
	ClosedPnL       float64 `json:"closed_pnl"`
	OverallPnL      float64 `json:"overall_pnl"`
	DailyChange     float64 `json:"daily_pnl_change"`
	CashIn          float64 `json:"cash_in"`
	CashOut         float64 `json:"cash_out"`
	NetInvested     float64 `json:"net_invested"`
	AdjustedReturn  float64 `json:"adjusted_return"`
	Drawdown        float64 `json:"drawdown"`
	TWR             float64 `json:"twr"`
	BenchmarkTWR    float64 `json:"benchmark_twr"`
	DailyReturn     float64 `json:"daily_return"`
	BenchmarkReturn float64 `json:"benchmark_return"`
}

// DailyRecords returns the stored series in date order.
func (s *SQLiteStore) DailyRecords(ctx context.Context) ([]DailyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, current_value, cost, current_pnl, closed_pnl, overall_pnl,
			daily_pnl_change, cash_in, cash_out, net_invested, adjusted_return,
			drawdown, twr, benchmark_twr, daily_return, benchmark_return
		FROM daily_records ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying daily records: %w", err)
	}
	defer rows.Close()

	var recs []DailyRow
	for rows.Next() {
		var r DailyRow
		if err := rows.Scan(&r.Date, &r.Value, &r.Cost, &r.CurrentPnL, &r.ClosedPnL,
			&r.OverallPnL, &r.DailyChange, &r.CashIn, &r.CashOut, &r.NetInvested,
			&r.AdjustedReturn, &r.Drawdown, &r.TWR, &r.BenchmarkTWR,
			&r.DailyReturn, &r.BenchmarkReturn); err != nil {
			return nil, fmt.Errorf("scanning daily record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// OpenRow is a stored open position.
type OpenRow struct {
	Symbol       string  `json:"symbol"`
	PortfolioPct float64 `json:"portfolio_pct"`
	Quantity     string  `json:"quantity"`
	Price        float64 `json:"price"`
	Cost         float64 `json:"cost"`
	Value        float64 `json:"value"`
	PnL          float64 `json:"pnl"`
}

// OpenPositions returns the stored snapshot sorted by symbol.
func (s *SQLiteStore) OpenPositions(ctx context.Context) ([]OpenRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, portfolio_pct, quantity, price, cost, value, pnl
		FROM open_positions ORDER BY symbol ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying open positions: %w", err)
	}
	defer rows.Close()

	var positions []OpenRow
	for rows.Next() {
		var p OpenRow
		if err := rows.Scan(&p.Symbol, &p.PortfolioPct, &p.Quantity, &p.Price, &p.Cost, &p.Value, &p.PnL); err != nil {
			return nil, fmt.Errorf("scanning open position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// ClosedRow is a stored realized trade.
type ClosedRow struct {
	Symbol    string  `json:"symbol"`
	Quantity  string  `json:"quantity"`
	Cost      float64 `json:"cost"`
	SellPrice float64 `json:"sell_price"`
	SellDate  string  `json:"sell_date"`
	PnL       float64 `json:"pnl"`
}

// ClosedPositions returns the stored trades in realization order.
func (s *SQLiteStore) ClosedPositions(ctx context.Context) ([]ClosedRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, quantity, cost, sell_price, sell_date, pnl
		FROM closed_positions ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying closed positions: %w", err)
	}
	defer rows.Close()

	var trades []ClosedRow
	for rows.Next() {
		var t ClosedRow
		if err := rows.Scan(&t.Symbol, &t.Quantity, &t.Cost, &t.SellPrice, &t.SellDate, &t.PnL); err != nil {
			return nil, fmt.Errorf("scanning closed position: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Metrics returns the stored risk statistics.
func (s *SQLiteStore) Metrics(ctx context.Context) (portrack.AdvancedMetrics, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM metrics WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return portrack.AdvancedMetrics{}, nil
	}
	if err != nil {
		return portrack.AdvancedMetrics{}, fmt.Errorf("querying metrics: %w", err)
	}
	var m portrack.AdvancedMetrics
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return portrack.AdvancedMetrics{}, fmt.Errorf("decoding metrics: %w", err)
	}
	return m, nil
}
