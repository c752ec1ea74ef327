package payload

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/pricing"
)

// Field names a form value that can come from more than one source.
type Field string

const (
	FieldEmployee        Field = "employee"
	FieldLocation        Field = "location"
	FieldDiagnosis       Field = "diagnosis"
	FieldSupply          Field = "supply"
	FieldInsoleType      Field = "insoleType"
	FieldFootAnalysisFee Field = "footAnalysisFee"
	FieldInsoleFee       Field = "insoleFee"
	FieldQuantity        Field = "quantity"
	FieldAddonFees       Field = "addonFees"
	FieldDiscountType    Field = "discountType"
	FieldDiscountValue   Field = "discountValue"
)

var knownFields = map[Field]struct{}{
	FieldEmployee:        {},
	FieldLocation:        {},
	FieldDiagnosis:       {},
	FieldSupply:          {},
	FieldInsoleType:      {},
	FieldFootAnalysisFee: {},
	FieldInsoleFee:       {},
	FieldQuantity:        {},
	FieldAddonFees:       {},
	FieldDiscountType:    {},
	FieldDiscountValue:   {},
}

func ParseField(s string) (Field, bool) {
	f := Field(strings.TrimSpace(s))
	_, ok := knownFields[f]
	return f, ok
}

// ResolveField picks a value by precedence: an explicit edit (even an empty
// one) beats the prefill order, which beats the workshop-note default.
func ResolveField(explicit *string, prefill, parentDefault string) string {
	if explicit != nil {
		return *explicit
	}
	if v := strings.TrimSpace(prefill); v != "" {
		return prefill
	}
	if v := strings.TrimSpace(parentDefault); v != "" {
		return parentDefault
	}
	return ""
}

// Edits are the values the user typed in this session, keyed by field.
type Edits map[Field]string

func (e Edits) get(f Field) *string {
	v, ok := e[f]
	if !ok {
		return nil
	}
	return &v
}

func prefillValue(p *domain.PrefillOrder, f Field) string {
	if p == nil {
		return ""
	}
	switch f {
	case FieldEmployee:
		return p.Employee
	case FieldLocation:
		return p.Location
	case FieldDiagnosis:
		return p.Diagnosis
	case FieldSupply:
		return p.Supply
	case FieldInsoleType:
		return p.InsoleType
	case FieldFootAnalysisFee:
		return p.FootAnalysisFee
	case FieldInsoleFee:
		return p.InsoleFee
	case FieldQuantity:
		return p.Quantity
	case FieldAddonFees:
		return p.AddonFees
	case FieldDiscountType:
		return p.DiscountType
	case FieldDiscountValue:
		return p.DiscountValue
	}
	return ""
}

func noteValue(n *domain.WorkshopNote, f Field) string {
	if n == nil {
		return ""
	}
	switch f {
	case FieldEmployee:
		return n.Employee
	case FieldLocation:
		return n.Location
	case FieldDiagnosis:
		return n.Diagnosis
	case FieldSupply:
		return n.Supply
	case FieldInsoleType:
		return n.InsoleType
	}
	return ""
}

// Selections is everything the user chose on the form besides dates and payment.
type Selections struct {
	Kind         domain.OrderKind
	Edits        Edits
	Prefill      *domain.PrefillOrder
	BillingCodes []pricing.BillingCode
	KVA          bool
}

// Resolve applies ResolveField to f for the given customer.
func (s Selections) Resolve(c domain.Customer, f Field) string {
	return ResolveField(s.Edits.get(f), prefillValue(s.Prefill, f), noteValue(c.WorkshopNote, f))
}

// Lines collects the price inputs after resolution.
func (s Selections) Lines(c domain.Customer) pricing.Lines {
	return pricing.Lines{
		FootAnalysisFee: s.Resolve(c, FieldFootAnalysisFee),
		InsoleFee:       s.Resolve(c, FieldInsoleFee),
		Quantity:        s.Resolve(c, FieldQuantity),
		AddonFeesRaw:    s.Resolve(c, FieldAddonFees),
		BillingCodes:    s.BillingCodes,
	}
}

func (s Selections) Discount(c domain.Customer) *decimal.Decimal {
	return pricing.ParseDiscount(s.Resolve(c, FieldDiscountType), s.Resolve(c, FieldDiscountValue))
}
