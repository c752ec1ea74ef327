// Package payload assembles the order-creation record from a form session.
package payload

import (
	"strings"
	"time"

	"github.com/RaikyD/einlagen-orders-service/internal/clock"
	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/payment"
	"github.com/RaikyD/einlagen-orders-service/internal/pricing"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// TimeMode controls what time of day lands on a completion date that has a
// chosen pickup time.
type TimeMode int

const (
	// TimeModeWallClock stamps the current wall-clock time onto the chosen
	// date. This is what the backend has always received.
	TimeModeWallClock TimeMode = iota
	// TimeModeChosen uses the selected HH:MM.
	TimeModeChosen
)

func ParseTimeMode(s string) TimeMode {
	if strings.EqualFold(strings.TrimSpace(s), "chosen") {
		return TimeModeChosen
	}
	return TimeModeWallClock
}

type Builder struct {
	clock    clock.Clock
	timeMode TimeMode
}

type Option func(*Builder)

func WithTimeMode(m TimeMode) Option {
	return func(b *Builder) {
		b.timeMode = m
	}
}

func NewBuilder(clk clock.Clock, opts ...Option) *Builder {
	b := &Builder{clock: clk}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build never fails: missing optional values are left empty and omitted on
// the wire. Required identity (customer id, employee) is checked by callers.
func (b *Builder) Build(
	c domain.Customer,
	sel Selections,
	price pricing.Result,
	pay payment.Record,
	sched schedule.Schedule,
) domain.OrderPayload {
	lines := sel.Lines(c)

	p := domain.OrderPayload{
		CustomerID:   c.ID,
		CustomerName: c.FullName(),
		OrderKind:    string(domain.ParseOrderKind(string(sel.Kind))),

		Employee:   sel.Resolve(c, FieldEmployee),
		Location:   sel.Resolve(c, FieldLocation),
		Diagnosis:  sel.Resolve(c, FieldDiagnosis),
		Supply:     sel.Resolve(c, FieldSupply),
		InsoleType: sel.Resolve(c, FieldInsoleType),

		Quantity:        pricing.ParseQuantity(lines.Quantity),
		FootAnalysisFee: amountOrEmpty(lines.FootAnalysisFee),
		InsoleFee:       amountOrEmpty(lines.InsoleFee),
		AddonFees:       strings.TrimSpace(lines.AddonFeesRaw),
		BillingCodes:    billingLines(lines.BillingCodes),

		Subtotal:       price.Subtotal.StringFixed(2),
		DiscountAmount: price.DiscountAmount.StringFixed(2),
		Total:          price.Total.StringFixed(2),

		PaymentStatus: pay.String(),
		KVA:           sel.KVA,

		OrderDate:      isoDate(sched.OrderDate),
		CompletionDate: b.completionDate(sched),
		CompletionTime: sched.Time.String(),
	}
	if !price.DiscountPercent.IsZero() {
		p.DiscountPercent = price.DiscountPercent.String()
	}
	if sel.Prefill != nil {
		p.PrefillOrderID = sel.Prefill.OrderID
	}
	return p
}

func (b *Builder) completionDate(s schedule.Schedule) string {
	if s.Completion.IsZero() {
		return ""
	}
	if !s.Time.IsSet() {
		return isoDate(s.Completion)
	}
	y, m, d := s.Completion.Date()
	if b.timeMode == TimeModeChosen {
		return time.Date(y, m, d, s.Time.Hour(), s.Time.Minute(), 0, 0, time.UTC).Format(isoMillis)
	}
	now := b.clock.Now().UTC()
	return time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC).Format(isoMillis)
}

func isoDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return schedule.Day(d).Format(isoMillis)
}

func amountOrEmpty(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return pricing.ParseAmount(raw).StringFixed(2)
}

func billingLines(codes []pricing.BillingCode) []domain.BillingCodeLine {
	if len(codes) == 0 {
		return nil
	}
	out := make([]domain.BillingCodeLine, 0, len(codes))
	for _, c := range codes {
		out = append(out, domain.BillingCodeLine{
			Code:   c.Code,
			Side:   string(c.Side),
			Amount: c.Amount().StringFixed(2),
		})
	}
	return out
}
