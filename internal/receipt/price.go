package receipt

import "math"

// PriceError names why a unit price could not be derived.
type PriceError string

const (
	PriceErrMissingNet PriceError = "missing_net_amount"
	PriceErrMissingQty PriceError = "missing_quantity"
	PriceErrInvalid    PriceError = "invalid_values"
	PriceErrZeroQty    PriceError = "zero_quantity"
)

// PriceResult carries the derived per-unit price or the reason there is
// none. UnitPrice is non-nil exactly when Success is true.
type PriceResult struct {
	UnitPrice *float64
	Success   bool
	Error     PriceError
}

// CalculateUnitPrice derives a per-unit price from a resolved net amount and
// quantity. The check order is part of the contract: a missing net amount is
// reported before a missing quantity, invalid values before a zero quantity.
// Division is plain float64; rounding is left to the presentation layer.
func CalculateUnitPrice(netAmount, quantity *float64) PriceResult {
	if netAmount == nil {
		return priceFailure(PriceErrMissingNet)
	}
	if quantity == nil {
		return priceFailure(PriceErrMissingQty)
	}

	net, qty := *netAmount, *quantity
	if !isFiniteAmount(net) || !isFiniteAmount(qty) {
		return priceFailure(PriceErrInvalid)
	}
	if qty == 0 {
		return priceFailure(PriceErrZeroQty)
	}

	unit := net / qty
	return PriceResult{UnitPrice: &unit, Success: true}
}

func isFiniteAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func priceFailure(reason PriceError) PriceResult {
	return PriceResult{UnitPrice: nil, Success: false, Error: reason}
}
