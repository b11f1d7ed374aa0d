package receipt

import "github.com/shopspring/decimal"

// ReconcileResult reports whether the declared total agrees with the line
// items. On a mismatch ComputedTotal carries the item sum so both values
// can be shown side by side.
type ReconcileResult struct {
	OK            bool
	ComputedTotal decimal.Decimal
}

// Reconcile sums quantity*unitPrice over all items and compares the result
// against the declared total at currency precision. Each item's product is
// computed before summation; both sides are rounded to 2 decimal places
// before the equality check, so representation noise below a minor unit
// never fails a draft. The caller guarantees at least one item and
// non-negative quantities/prices.
func Reconcile(items []LineItem, declaredTotal decimal.Decimal) ReconcileResult {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	computed := sum.Round(2)

	return ReconcileResult{
		OK:            computed.Equal(declaredTotal.Round(2)),
		ComputedTotal: computed,
	}
}
