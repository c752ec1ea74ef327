package payload

import (
	"time"

	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/payment"
	"github.com/RaikyD/einlagen-orders-service/internal/pricing"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

// Session is the in-memory state of one order form, from opening until the
// single submission. It is not safe for concurrent use.
type Session struct {
	Customer   domain.Customer
	Selections Selections
	Schedule   schedule.Schedule
	Payment    payment.Record

	// paymentTouched is set once the user picks a payer or status; later
	// prefill data must not overwrite that choice.
	paymentTouched bool
}

type SessionParams struct {
	Customer  domain.Customer
	Kind      domain.OrderKind
	Prefill   *domain.PrefillOrder
	OrderDate time.Time
	Today     time.Time
	// LeadDays is the partner completionDays setting; when nil the
	// customer's workshop note is consulted.
	LeadDays *int
}

func NewSession(p SessionParams) *Session {
	lead := p.LeadDays
	if lead == nil && p.Customer.WorkshopNote != nil {
		lead = schedule.ParseLeadDays(p.Customer.WorkshopNote.CompletionDays)
	}
	s := &Session{
		Customer: p.Customer,
		Selections: Selections{
			Kind:  domain.ParseOrderKind(string(p.Kind)),
			Edits: Edits{},
		},
		Schedule: schedule.New(p.OrderDate, p.Today, lead),
	}
	if p.Prefill != nil {
		s.ApplyOrderData(*p.Prefill)
	}
	return s
}

// Edit records an explicit user value. It wins over any prefill data,
// including data that arrives later.
func (s *Session) Edit(f Field, value string) {
	s.Selections.Edits[f] = value
}

// Revert drops an explicit edit so the field falls back to prefill or defaults.
func (s *Session) Revert(f Field) {
	delete(s.Selections.Edits, f)
}

func (s *Session) SetBillingCodes(codes []pricing.BillingCode) {
	s.Selections.BillingCodes = codes
}

func (s *Session) SetKVA(v bool) {
	s.Selections.KVA = v
}

// ApplyOrderData takes a (possibly late) prefill order. Explicit edits stay
// in force because resolution always prefers them.
func (s *Session) ApplyOrderData(p domain.PrefillOrder) {
	s.Selections.Prefill = &p
	if s.paymentTouched || p.PaymentStatus == nil {
		return
	}
	if r := payment.Parse(p.PaymentStatus); r.IsSet() {
		s.Payment = r
	}
}

// OnOrderDataUpdate is the callback handed to whoever delivers prefill data.
func (s *Session) OnOrderDataUpdate() func(domain.PrefillOrder) {
	return s.ApplyOrderData
}

func (s *Session) SetPayerType(p payment.PayerType) {
	s.paymentTouched = true
	s.Payment.SetPayerType(p)
}

// SetPaymentStatus reports false when the status does not fit the payer.
func (s *Session) SetPaymentStatus(st payment.Status) bool {
	if !s.Payment.SetStatus(st) {
		return false
	}
	s.paymentTouched = true
	return true
}

func (s *Session) SetOrderDate(d time.Time) bool {
	return s.Schedule.SetOrderDate(d)
}

func (s *Session) SetCompletionDate(d time.Time) schedule.Validation {
	return s.Schedule.SetCompletionDate(d)
}

func (s *Session) SetTimeOfDay(t schedule.TimeOfDay) {
	s.Schedule.SetTimeOfDay(t)
}

// Resolve returns the current value of f after precedence.
func (s *Session) Resolve(f Field) string {
	return s.Selections.Resolve(s.Customer, f)
}

func (s *Session) Price() pricing.Result {
	return pricing.ComputeTotal(s.Selections.Lines(s.Customer), s.Selections.Discount(s.Customer))
}

// Build produces the order payload for the current state.
func (s *Session) Build(b *Builder) domain.OrderPayload {
	return b.Build(s.Customer, s.Selections, s.Price(), s.Payment, s.Schedule)
}
