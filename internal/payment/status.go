// Package payment models who pays for an order and how far that payment has got.
package payment

type PayerType string

const (
	PayerUnset         PayerType = ""
	PayerPrivate       PayerType = "Privat"
	PayerHealthInsurer PayerType = "Krankenkasse"
)

type Status string

const (
	StatusUnset       Status = ""
	StatusPaid        Status = "Bezahlt"
	StatusOpen        Status = "Offen"
	StatusApproved    Status = "Genehmigt"
	StatusNotApproved Status = "Ungenehmigt"
)

// DefaultStatus is the status a payer type starts in.
func (p PayerType) DefaultStatus() Status {
	switch p {
	case PayerPrivate:
		return StatusPaid
	case PayerHealthInsurer:
		return StatusApproved
	default:
		return StatusUnset
	}
}

// Allows reports whether s belongs to the status vocabulary of p.
func (p PayerType) Allows(s Status) bool {
	switch p {
	case PayerPrivate:
		return s == StatusPaid || s == StatusOpen
	case PayerHealthInsurer:
		return s == StatusApproved || s == StatusNotApproved
	default:
		return false
	}
}

func (p PayerType) Valid() bool {
	return p == PayerPrivate || p == PayerHealthInsurer
}

// Record is the payment state of one order form. The zero value is Unset.
type Record struct {
	payer  PayerType
	status Status
}

// NewRecord returns Unset when the pair is not a valid combination.
func NewRecord(p PayerType, s Status) Record {
	if !p.Allows(s) {
		return Record{}
	}
	return Record{payer: p, status: s}
}

func (r Record) PayerType() PayerType { return r.payer }

func (r Record) Status() Status { return r.status }

func (r Record) IsSet() bool { return r.payer != PayerUnset }

// SetPayerType switches payer and resets the status to that payer's default.
// PayerUnset clears the record.
func (r *Record) SetPayerType(p PayerType) {
	if !p.Valid() {
		*r = Record{}
		return
	}
	r.payer = p
	r.status = p.DefaultStatus()
}

// SetStatus changes the status within the current payer's vocabulary.
// It is a no-op returning false when no payer is set or s does not belong to it.
func (r *Record) SetStatus(s Status) bool {
	if !r.payer.Allows(s) {
		return false
	}
	r.status = s
	return true
}

// String is the canonical "{PayerType}_{status}" form stored by the backend.
// Only the private "offen" status is lower-cased; stored data has always
// looked like that.
func (r Record) String() string {
	if !r.IsSet() {
		return ""
	}
	status := string(r.status)
	if r.payer == PayerPrivate && r.status == StatusOpen {
		status = "offen"
	}
	return string(r.payer) + "_" + status
}
