package portrack

// lot is a single purchase batch, tracked separately for FIFO cost
// basis attribution.
type lot struct {
	Quantity     Quantity
	CostPerShare Money // (quantity*price + commission) / quantity at purchase
}

type lots []lot

// consume removes quantityToSell from the lots oldest-first and returns
// the surviving lots plus the cost of the shares sold. Lots drained to
// zero are pruned.
func (l lots) consume(quantityToSell Quantity) (lots, Money) {
	var soldCost Money
	remaining := make(lots, 0, len(l))

	for _, currentLot := range l {
		if quantityToSell.IsZero() {
			remaining = append(remaining, currentLot)
			continue
		}
		take := currentLot.Quantity.Min(quantityToSell)
		soldCost = soldCost.Add(currentLot.CostPerShare.Mul(take))
		quantityToSell = quantityToSell.Sub(take)

		left := currentLot.Quantity.Sub(take)
		if left.IsPositive() {
			remaining = append(remaining, lot{Quantity: left, CostPerShare: currentLot.CostPerShare})
		}
	}
	return remaining, soldCost
}

// quantity returns the total quantity across all lots.
func (l lots) quantity() Quantity {
	var total Quantity
	for _, currentLot := range l {
		total = total.Add(currentLot.Quantity)
	}
	return total
}

// cost returns the total cost across all lots.
func (l lots) cost() Money {
	var total Money
	for _, currentLot := range l {
		total = total.Add(currentLot.CostPerShare.Mul(currentLot.Quantity))
	}
	return total
}
