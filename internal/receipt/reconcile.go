package receipt

import "github.com/shopspring/decimal"

// TotalCheck compares the sum of parsed line amounts with the total printed
// on the receipt. Diagnostic only; a mismatch flags the receipt for review.
type TotalCheck struct {
	ComputedTotal decimal.Decimal
	PrintedTotal  *float64
	Delta         decimal.Decimal
	Checked       bool
	Matches       bool
}

func ReconcileTotal(items []LineItem, printedTotal *float64, tolerance float64) TotalCheck {
	computed := decimal.Zero
	for _, item := range items {
		if item.Amount == nil {
			continue
		}
		computed = computed.Add(decimal.NewFromFloat(*item.Amount))
	}

	check := TotalCheck{ComputedTotal: computed, PrintedTotal: printedTotal}
	if printedTotal == nil {
		return check
	}

	check.Checked = true
	check.Delta = computed.Sub(decimal.NewFromFloat(*printedTotal)).Abs()
	check.Matches = check.Delta.LessThanOrEqual(decimal.NewFromFloat(tolerance))
	return check
}
