package payment

import "strings"

// Format names one historical encoding of a payment record.
type Format string

const (
	FormatLegacyBool Format = "legacy_bool"
	FormatDash       Format = "dash"
	FormatPipe       Format = "pipe"
	FormatUnderscore Format = "underscore"
)

type matcher struct {
	format Format
	match  func(v any) (Record, bool)
}

// matchers are tried in order; the first hit wins.
var matchers = []matcher{
	{format: FormatLegacyBool, match: matchLegacyBool},
	{format: FormatDash, match: separatorMatcher("-")},
	{format: FormatPipe, match: separatorMatcher("|")},
	{format: FormatUnderscore, match: separatorMatcher("_")},
}

// Parse reads a stored payment value in any known format. Values that match
// no format come back as an Unset record.
func Parse(v any) Record {
	r, _ := ParseFormat(v)
	return r
}

// ParseFormat is Parse that also reports which format matched. format is
// empty when the value fell through to Unset.
func ParseFormat(v any) (r Record, format Format) {
	for _, m := range matchers {
		if r, ok := m.match(v); ok {
			return r, m.format
		}
	}
	return Record{}, ""
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case *string:
		if s == nil {
			return "", false
		}
		return strings.TrimSpace(*s), true
	default:
		return "", false
	}
}

// matchLegacyBool handles the old private-only paid flag: a JSON bool or
// "true"/"false"/"Ja"/"Nein".
func matchLegacyBool(v any) (Record, bool) {
	var paid bool
	switch b := v.(type) {
	case bool:
		paid = b
	case *bool:
		if b == nil {
			return Record{}, false
		}
		paid = *b
	default:
		s, ok := stringValue(v)
		if !ok {
			return Record{}, false
		}
		switch strings.ToLower(s) {
		case "true", "ja":
			paid = true
		case "false", "nein":
			paid = false
		default:
			return Record{}, false
		}
	}
	if paid {
		return NewRecord(PayerPrivate, StatusPaid), true
	}
	return NewRecord(PayerPrivate, StatusOpen), true
}

func separatorMatcher(sep string) func(any) (Record, bool) {
	return func(v any) (Record, bool) {
		s, ok := stringValue(v)
		if !ok {
			return Record{}, false
		}
		left, right, found := strings.Cut(s, sep)
		if !found {
			return Record{}, false
		}
		payer, ok := lookupPayer(left)
		if !ok {
			return Record{}, false
		}
		status, ok := lookupStatus(right)
		if !ok || !payer.Allows(status) {
			return Record{}, false
		}
		return Record{payer: payer, status: status}, true
	}
}

var payerAliases = map[string]PayerType{
	"privat":         PayerPrivate,
	"private":        PayerPrivate,
	"selbstzahler":   PayerPrivate,
	"krankenkasse":   PayerHealthInsurer,
	"kasse":          PayerHealthInsurer,
	"insurer":        PayerHealthInsurer,
	"insurance":      PayerHealthInsurer,
	"healthinsurer":  PayerHealthInsurer,
	"health insurer": PayerHealthInsurer,
}

var statusAliases = map[string]Status{
	"bezahlt":         StatusPaid,
	"paid":            StatusPaid,
	"offen":           StatusOpen,
	"open":            StatusOpen,
	"unbezahlt":       StatusOpen,
	"genehmigt":       StatusApproved,
	"approved":        StatusApproved,
	"ungenehmigt":     StatusNotApproved,
	"nicht genehmigt": StatusNotApproved,
	"notapproved":     StatusNotApproved,
	"not approved":    StatusNotApproved,
	"abgelehnt":       StatusNotApproved,
}

func lookupPayer(s string) (PayerType, bool) {
	p, ok := payerAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

func lookupStatus(s string) (Status, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// ParsePayerType accepts the canonical names and their aliases.
func ParsePayerType(s string) PayerType {
	p, _ := lookupPayer(s)
	return p
}

// ParseStatus accepts the canonical names and their aliases.
func ParseStatus(s string) Status {
	st, _ := lookupStatus(s)
	return st
}
