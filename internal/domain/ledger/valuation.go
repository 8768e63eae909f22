package ledger

import (
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places kept for monetary values.
const MoneyPrecision = 2

// ComputeBalanceValue returns the new running balance value after applying a
// transaction of deltaQty base units at unitCost per base unit.
//
// Increases are always valued at their own unit cost, regardless of the
// product's valuation method: an incoming receipt adds deltaQty * unitCost.
//
// Decreases branch on the valuation method:
//   - weighted_average: the outgoing stock is costed at the current average
//     cost (currentValue / currentBalanceQty; zero when the balance is zero
//     or negative, so a drained key never divides by zero).
//   - fifo: simplified - the outgoing stock is costed at the caller-supplied
//     unitCost. No receipt lots are tracked; see ValuationFIFO.
func ComputeBalanceValue(
	method catalog.ValuationMethod,
	currentBalanceQty decimal.Decimal,
	currentBalanceValue decimal.Decimal,
	deltaQty decimal.Decimal,
	unitCost decimal.Decimal,
	isIncrease bool,
) decimal.Decimal {
	if isIncrease {
		return currentBalanceValue.Add(deltaQty.Mul(unitCost)).Round(MoneyPrecision)
	}

	if method == catalog.ValuationWeightedAverage {
		avgCost := decimal.Zero
		if currentBalanceQty.GreaterThan(decimal.Zero) {
			avgCost = currentBalanceValue.Div(currentBalanceQty)
		}
		return currentBalanceValue.Sub(deltaQty.Mul(avgCost)).Round(MoneyPrecision)
	}

	return currentBalanceValue.Sub(deltaQty.Mul(unitCost)).Round(MoneyPrecision)
}

// AverageCost returns value/quantity, or zero when quantity is zero or
// negative.
func AverageCost(balanceQty, balanceValue decimal.Decimal) decimal.Decimal {
	if balanceQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return balanceValue.Div(balanceQty).Round(MoneyPrecision)
}
