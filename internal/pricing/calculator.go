// Package pricing turns the fee fields of an insole order into net totals.
package pricing

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Side string

const (
	SideLeft  Side = "L"
	SideRight Side = "R"
	SideBoth  Side = "BDS"
)

// ParseSide accepts the abbreviations used on Positionsnummer lines.
// Unknown values are treated as one side.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bds", "both", "beidseitig", "beide", "lr", "l+r":
		return SideBoth
	case "r", "right", "rechts":
		return SideRight
	default:
		return SideLeft
	}
}

// BillingCode is one selected Positionsnummer with its catalogue price.
type BillingCode struct {
	Code      string          `json:"code"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Side      Side            `json:"side"`
}

// Amount is the contribution of the code: doubled for both sides.
func (b BillingCode) Amount() decimal.Decimal {
	if b.BasePrice.IsNegative() {
		return decimal.Zero
	}
	if b.Side == SideBoth {
		return b.BasePrice.Mul(decimal.NewFromInt(2))
	}
	return b.BasePrice
}

// Lines are the priced inputs of an order form, still as typed by the user.
type Lines struct {
	FootAnalysisFee string        `json:"footAnalysisFee"`
	InsoleFee       string        `json:"insoleFee"`
	Quantity        string        `json:"quantity"`
	AddonFeesRaw    string        `json:"addonFees"`
	BillingCodes    []BillingCode `json:"billingCodes"`
}

// Result is the outcome of ComputeTotal.
type Result struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal        string `json:"subtotal"`
		DiscountPercent string `json:"discountPercent"`
		DiscountAmount  string `json:"discountAmount"`
		Total           string `json:"total"`
	}{
		Subtotal:        r.Subtotal.StringFixed(2),
		DiscountPercent: r.DiscountPercent.String(),
		DiscountAmount:  r.DiscountAmount.StringFixed(2),
		Total:           r.Total.StringFixed(2),
	})
}

// round2 rounds half up; all amounts here are non-negative so Round's
// half-away-from-zero behaves the same.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTotal sums the lines and applies an optional percentage discount.
// Rounding happens only on subtotal, discount and total, never per line.
func ComputeTotal(lines Lines, discount *decimal.Decimal) Result {
	quantity := decimal.NewFromInt(int64(ParseQuantity(lines.Quantity)))

	sum := ParseAmount(lines.FootAnalysisFee).
		Add(ParseAmount(lines.InsoleFee).Mul(quantity)).
		Add(SumAddonFees(lines.AddonFeesRaw))
	for _, code := range lines.BillingCodes {
		sum = sum.Add(code.Amount())
	}

	res := Result{
		Subtotal:        round2(sum),
		DiscountPercent: decimal.Zero,
		DiscountAmount:  decimal.Zero,
	}
	if discount != nil {
		pct := clampPercent(*discount)
		res.DiscountPercent = pct
		res.DiscountAmount = round2(res.Subtotal.Mul(pct).Div(hundred))
	}
	res.Total = round2(res.Subtotal.Sub(res.DiscountAmount))
	return res
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// ParseDiscount reads the discount type selector and value fields.
// Only percentage discounts exist; other types, and empty or zero values,
// mean no discount.
func ParseDiscount(discountType, value string) *decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(discountType)) {
	case "", "percent", "percentage", "prozent", "%":
	default:
		return nil
	}
	pct := ParseAmount(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if pct.IsZero() {
		return nil
	}
	pct = clampPercent(pct)
	return &pct
}
