package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	plainAmount     = regexp.MustCompile(`^\d+(\.\d+)?$`)
	commaThousands  = regexp.MustCompile(`^\d{1,3}(,\d{3}){2,}$`)
	periodThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3}){2,}$`)
)

// ParseAmount reads a currency amount typed into a free-text field.
// Both "12.50" and "12,50" are accepted, as are "1.234,50", "1,234,567"
// and "€ 12". Only plain digits with one decimal point survive
// normalisation; exponents, signs and anything else are zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "€"), "€")
	s = strings.TrimSuffix(s, "EUR")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case commaThousands.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case periodThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	if !plainAmount.MatchString(s) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseQuantity reads the insole pair count. Anything below one is one.
func ParseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

var addonSeparators = regexp.MustCompile(`[\s;]+`)

// SumAddonFees adds up every amount in a free-text add-on field such as
// "10, 20.5 abc 5". Amounts are separated by whitespace or semicolons; a
// comma counts as a separator only at the edge of a token, so "12,50" is
// one amount. Unparseable tokens count as zero.
func SumAddonFees(raw string) decimal.Decimal {
	sum := decimal.Zero
	for _, token := range addonSeparators.Split(raw, -1) {
		token = strings.Trim(token, ",")
		if token == "" {
			continue
		}
		sum = sum.Add(ParseAmount(token))
	}
	return sum
}
