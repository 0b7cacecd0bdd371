package order

import (
	"github.com/shopspring/decimal"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// RoundingMethod selects how per-line amounts are rounded to whole
// currency units. The header carries a single method for the order;
// detail rows never carry their own.
type RoundingMethod string

const (
	RoundFloor  RoundingMethod = "floor"
	RoundCeil   RoundingMethod = "ceil"
	RoundHalfUp RoundingMethod = "half_up"
)

// IsValid reports whether m is a known rounding method
func (m RoundingMethod) IsValid() bool {
	switch m {
	case RoundFloor, RoundCeil, RoundHalfUp:
		return true
	}
	return false
}

// Apply rounds d to zero fractional digits. half_up rounds 0.5 away
// from zero.
func (m RoundingMethod) Apply(d decimal.Decimal) decimal.Decimal {
	switch m {
	case RoundFloor:
		return d.RoundFloor(0)
	case RoundCeil:
		return d.RoundCeil(0)
	default:
		return d.Round(0)
	}
}

// ParseRoundingMethod maps a stored or imported value to a RoundingMethod
func ParseRoundingMethod(s string) (RoundingMethod, error) {
	m := RoundingMethod(s)
	if !m.IsValid() {
		return "", shared.NewValidationError("rounding_method", "must be one of floor, ceil, half_up")
	}
	return m, nil
}

// Totals holds the monetary summary of an order
type Totals struct {
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// lineSubtotal = quantity x billing_unit_price
func lineSubtotal(d *SalesOrderDetail) decimal.Decimal {
	return d.BillingUnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// lineTax is zero for tax-exempt lines
func lineTax(d *SalesOrderDetail) decimal.Decimal {
	if d.IsTaxExempt {
		return decimal.Zero
	}
	return lineSubtotal(d).Mul(d.TaxRate)
}

// lineAmount rounds subtotal+tax with the order's method
func lineAmount(d *SalesOrderDetail, m RoundingMethod) decimal.Decimal {
	return m.Apply(lineSubtotal(d).Add(lineTax(d)))
}

// ComputeTotals sums the detail lines. Rounding is applied per line
// and then summed, never on the final sum.
func ComputeTotals(details []SalesOrderDetail, m RoundingMethod) Totals {
	t := Totals{
		Subtotal:   decimal.Zero,
		TaxTotal:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}
	for i := range details {
		d := &details[i]
		t.Subtotal = t.Subtotal.Add(lineSubtotal(d))
		t.TaxTotal = t.TaxTotal.Add(lineTax(d))
		t.GrandTotal = t.GrandTotal.Add(lineAmount(d, m))
	}
	return t
}
