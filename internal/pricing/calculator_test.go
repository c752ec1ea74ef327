package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestComputeTotal(t *testing.T) {
	t.Parallel()

	t.Run("single pair without extras is analysis plus insole", func(t *testing.T) {
		res := ComputeTotal(Lines{FootAnalysisFee: "40", InsoleFee: "60", Quantity: "1"}, nil)
		assertAmount(t, "100", res.Subtotal)
		assertAmount(t, "0", res.DiscountAmount)
		assertAmount(t, "100", res.Total)
	})

	t.Run("ten percent of one hundred", func(t *testing.T) {
		res := ComputeTotal(Lines{InsoleFee: "100.00"}, pct("10"))
		assertAmount(t, "10.00", res.DiscountAmount)
		assertAmount(t, "90.00", res.Total)
	})

	t.Run("two pairs with twenty percent", func(t *testing.T) {
		res := ComputeTotal(Lines{FootAnalysisFee: "40", InsoleFee: "60", Quantity: "2"}, pct("20"))
		assertAmount(t, "160.00", res.Subtotal)
		assertAmount(t, "32.00", res.DiscountAmount)
		assertAmount(t, "128.00", res.Total)
	})

	t.Run("bad quantity counts as one", func(t *testing.T) {
		for _, q := range []string{"", "0", "-3", "zwei", "1.5"} {
			res := ComputeTotal(Lines{InsoleFee: "60", Quantity: q}, nil)
			assertAmount(t, "60", res.Total, "quantity %q", q)
		}
	})

	t.Run("malformed and negative fees are zero", func(t *testing.T) {
		res := ComputeTotal(Lines{FootAnalysisFee: "abc", InsoleFee: "-20", AddonFeesRaw: "x y"}, nil)
		assertAmount(t, "0", res.Total)
	})

	t.Run("all line kinds add up", func(t *testing.T) {
		res := ComputeTotal(Lines{
			FootAnalysisFee: "35,00",
			InsoleFee:       "89.90",
			Quantity:        "2",
			AddonFeesRaw:    "10, 20.5 abc 5",
			BillingCodes: []BillingCode{
				{Code: "08.03.01.0001", BasePrice: decimal.RequireFromString("12.50"), Side: SideBoth},
				{Code: "08.03.01.0002", BasePrice: decimal.RequireFromString("7.25"), Side: SideLeft},
			},
		}, nil)
		// 35 + 179.80 + 35.5 + 25 + 7.25
		assertAmount(t, "282.55", res.Subtotal)
		assertAmount(t, "282.55", res.Total)
	})

	t.Run("rounds only at the boundaries", func(t *testing.T) {
		res := ComputeTotal(Lines{InsoleFee: "0.335", Quantity: "3"}, pct("15"))
		// 1.005 -> 1.01, discount 0.1515 -> 0.15
		assertAmount(t, "1.01", res.Subtotal)
		assertAmount(t, "0.15", res.DiscountAmount)
		assertAmount(t, "0.86", res.Total)
	})

	t.Run("discount above one hundred percent is capped", func(t *testing.T) {
		res := ComputeTotal(Lines{InsoleFee: "50"}, pct("150"))
		assertAmount(t, "50", res.DiscountAmount)
		assertAmount(t, "0", res.Total)
	})
}

func TestBillingCodeAmount(t *testing.T) {
	t.Parallel()

	base := decimal.RequireFromString("12.50")
	assertAmount(t, "25.00", BillingCode{BasePrice: base, Side: SideBoth}.Amount())
	assertAmount(t, "12.50", BillingCode{BasePrice: base, Side: SideLeft}.Amount())
	assertAmount(t, "12.50", BillingCode{BasePrice: base, Side: SideRight}.Amount())
	assertAmount(t, "0", BillingCode{BasePrice: decimal.RequireFromString("-4"), Side: SideBoth}.Amount())
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SideBoth, ParseSide("BDS"))
	assert.Equal(t, SideBoth, ParseSide("beidseitig"))
	assert.Equal(t, SideRight, ParseSide("rechts"))
	assert.Equal(t, SideLeft, ParseSide("L"))
	assert.Equal(t, SideLeft, ParseSide("???"))
}

func TestSumAddonFees(t *testing.T) {
	t.Parallel()

	assertAmount(t, "35.5", SumAddonFees("10, 20.5 abc 5"))
	assertAmount(t, "15.5", SumAddonFees("12,50 3"))
	assertAmount(t, "0", SumAddonFees(""))
	assertAmount(t, "7", SumAddonFees("  3;4  "))

	t.Run("separators inside a token belong to the amount", func(t *testing.T) {
		assertAmount(t, "1234.5", SumAddonFees("1.234,50"))
		assertAmount(t, "1244.5", SumAddonFees("1.234,50, 10"))
		assertAmount(t, "1234567", SumAddonFees("1,234,567"))
		assertAmount(t, "0", SumAddonFees("1,2,3"))
		assertAmount(t, "6", SumAddonFees("1, 2, 3"))
	})

	t.Run("exponents are not amounts", func(t *testing.T) {
		assertAmount(t, "5", SumAddonFees("1e3 5 1e2000000"))
	})
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"12.50":        "12.5",
		"12,50":        "12.5",
		"1.234,56":     "1234.56",
		"1,234.56":     "1234.56",
		"€ 40":         "40",
		"40 €":         "40",
		"":             "0",
		"-5":           "0",
		"NaN":          "0",
		"1e3":          "0",
		"1e2000000":    "0",
		"1E-2":         "0",
		"+5":           "0",
		"1.234.567":    "1234567",
		"1,234,567.89": "1234567.89",
		"1,2,3":        "0",
		"12.":          "0",
	}
	for in, want := range cases {
		assertAmount(t, want, ParseAmount(in), "input %q", in)
	}
}

func TestParseDiscount(t *testing.T) {
	t.Parallel()

	d := ParseDiscount("percent", "20")
	require.NotNil(t, d)
	assertAmount(t, "20", *d)

	d = ParseDiscount("", "12,5 %")
	require.NotNil(t, d)
	assertAmount(t, "12.5", *d)

	assert.Nil(t, ParseDiscount("fixed", "20"))
	assert.Nil(t, ParseDiscount("percent", ""))
	assert.Nil(t, ParseDiscount("percent", "abc"))

	d = ParseDiscount("%", "250")
	require.NotNil(t, d)
	assertAmount(t, "100", *d)
}
