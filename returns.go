package portrack

import "math"

// netCashFlow sums the day's external flows for the return computation:
// a buy removes quantity*price from the investor's pocket, a sell gives
// quantity*price back. Commissions are not flows, they are costs.
func netCashFlow(txs []Transaction) Money {
	var flow Money
	for _, tx := range txs {
		switch tx.Side {
		case Buy:
			flow = flow.Sub(tx.Gross())
		case Sell:
			flow = flow.Add(tx.Gross())
		}
	}
	return flow
}

// twrStep chains one day into the cumulative time-weighted return.
// The carried value is returned unchanged when the day's return is
// undefined (zero adjusted start value).
func twrStep(prevTWR, dailyReturn float64, defined bool) float64 {
	if !defined {
		return prevTWR
	}
	return round4(prevTWR * (1 + dailyReturn))
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round4(f float64) float64 { return math.Round(f*10000) / 10000 }
