package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/chanv/portrack"
)

// ReportMarkdown renders a full valuation run: the closing summary, the
// open-position snapshot, realized trades and risk statistics.
func ReportMarkdown(r *portrack.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Report")

	last, ok := r.Last()
	if !ok {
		doc.PlainText("No trading dates in range.")
		return doc.String()
	}

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header: []string{
			md.Bold(fmt.Sprintf("Value at %s", last.Date)),
			md.Bold(last.Value.String()),
		},
		Rows: [][]string{
			{"Cost", last.Cost.String()},
			{"Current P&L", last.CurrentPnL.SignedString()},
			{"Closed P&L", last.ClosedPnL.SignedString()},
			{"Overall P&L", last.OverallPnL.SignedString()},
			{"Net Invested", last.NetInvested.String()},
			{"TWR", percent(last.TWR - 1)},
			{"Benchmark TWR", percent(last.BenchmarkTWR - 1)},
			{"Max Drawdown", percent(-r.MaxDrawdown())},
		},
	})

	if len(r.Open) > 0 {
		doc.H2("Open Positions")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignRight, md.AlignRight,
				md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
			},
			Header: []string{"Symbol", "Portfolio %", "Quantity", "Price", "Cost", "Value", "P&L"},
		}
		for _, pos := range r.Open {
			table.Rows = append(table.Rows, []string{
				pos.Symbol,
				fmt.Sprintf("%.2f%%", pos.PortfolioPct),
				pos.Quantity.String(),
				pos.Price.String(),
				pos.Cost.String(),
				pos.Value.String(),
				pos.PnL.SignedString(),
			})
		}
		doc.Table(table)
	}

	if len(r.Closed) > 0 {
		doc.H2("Closed Positions")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignRight, md.AlignRight,
				md.AlignRight, md.AlignLeft, md.AlignRight,
			},
			Header: []string{"Symbol", "Quantity", "Cost", "Sell Price", "Sell Date", "P&L"},
		}
		for _, trade := range r.Closed {
			table.Rows = append(table.Rows, []string{
				trade.Ticker,
				trade.Quantity.String(),
				trade.Cost.String(),
				trade.SellPrice.String(),
				trade.SellDate.String(),
				trade.PnL.SignedString(),
			})
		}
		doc.Table(table)
	}

	doc.H2("Risk Statistics")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Sharpe Ratio", fmt.Sprintf("%.2f", r.Metrics.SharpeRatio)},
			{"Sortino Ratio", fmt.Sprintf("%.2f", r.Metrics.SortinoRatio)},
			{"Beta", fmt.Sprintf("%.2f", r.Metrics.Beta)},
			{"Alpha (Annualized)", fmt.Sprintf("%.2f", r.Metrics.Alpha)},
		},
	})

	return doc.String()
}

// HistoryMarkdown renders the tail of the daily series, newest last.
func HistoryMarkdown(r *portrack.Report, days int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Daily History")

	records := r.Records
	if days > 0 && len(records) > days {
		records = records[len(records)-days:]
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight,
			md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Date", "Value", "Overall P&L", "Day Change", "TWR", "Benchmark", "Drawdown"},
	}
	for _, rec := range records {
		table.Rows = append(table.Rows, []string{
			rec.Date.String(),
			rec.Value.String(),
			rec.OverallPnL.SignedString(),
			rec.DailyChange.SignedString(),
			percent(rec.TWR - 1),
			percent(rec.BenchmarkTWR - 1),
			fmt.Sprintf("%.2f%%", rec.Drawdown*100),
		})
	}
	doc.Table(table)

	return doc.String()
}

func percent(f float64) string {
	return portrack.Percent(f * 100).SignedString()
}
