package payload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaikyD/einlagen-orders-service/internal/clock"
	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/payment"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

func TestSessionLateOrderDataDoesNotClobberEdits(t *testing.T) {
	t.Parallel()

	s := NewSession(SessionParams{Customer: testCustomer(), Today: now})
	require.Equal(t, "Note Employee", s.Resolve(FieldEmployee))

	s.Edit(FieldEmployee, "Typed Employee")
	s.Edit(FieldInsoleFee, "75")

	update := s.OnOrderDataUpdate()
	update(domain.PrefillOrder{
		OrderID:   "prefill-9",
		Employee:  "Async Employee",
		InsoleFee: "99",
		Location:  "Filiale Ost",
	})

	assert.Equal(t, "Typed Employee", s.Resolve(FieldEmployee))
	assert.Equal(t, "75", s.Resolve(FieldInsoleFee))
	assert.Equal(t, "Filiale Ost", s.Resolve(FieldLocation))

	s.Revert(FieldEmployee)
	assert.Equal(t, "Async Employee", s.Resolve(FieldEmployee))
}

func TestSessionPaymentFromPrefill(t *testing.T) {
	t.Parallel()

	t.Run("legacy value seeds the record", func(t *testing.T) {
		s := NewSession(SessionParams{
			Customer: testCustomer(),
			Today:    now,
			Prefill:  &domain.PrefillOrder{PaymentStatus: "Krankenkasse - Genehmigt"},
		})
		assert.Equal(t, "Krankenkasse_Genehmigt", s.Payment.String())
	})

	t.Run("user choice survives later prefill", func(t *testing.T) {
		s := NewSession(SessionParams{Customer: testCustomer(), Today: now})
		s.SetPayerType(payment.PayerPrivate)
		require.True(t, s.SetPaymentStatus(payment.StatusOpen))

		s.ApplyOrderData(domain.PrefillOrder{PaymentStatus: true})
		assert.Equal(t, "Privat_offen", s.Payment.String())
	})

	t.Run("mismatched status is rejected", func(t *testing.T) {
		s := NewSession(SessionParams{Customer: testCustomer(), Today: now})
		s.SetPayerType(payment.PayerHealthInsurer)
		assert.False(t, s.SetPaymentStatus(payment.StatusPaid))
		assert.Equal(t, payment.StatusApproved, s.Payment.Status())
	})
}

func TestSessionSchedule(t *testing.T) {
	t.Parallel()

	t.Run("workshop note lead time is the fallback", func(t *testing.T) {
		c := testCustomer()
		c.WorkshopNote.CompletionDays = "8"
		s := NewSession(SessionParams{Customer: c, Today: now})
		assert.Equal(t, "2025-01-18", schedule.FormatDate(s.Schedule.Completion))
	})

	t.Run("partner lead time wins over the note", func(t *testing.T) {
		c := testCustomer()
		c.WorkshopNote.CompletionDays = "8"
		lead := 12
		s := NewSession(SessionParams{Customer: c, Today: now, LeadDays: &lead})
		assert.Equal(t, "2025-01-22", schedule.FormatDate(s.Schedule.Completion))
	})

	t.Run("early completion date is clamped with a warning", func(t *testing.T) {
		s := NewSession(SessionParams{Customer: testCustomer(), Today: now})
		v := s.SetCompletionDate(time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC))
		assert.True(t, v.WasClamped)
		assert.Contains(t, v.Warning, "minimum 2025-01-15")
	})
}

func TestSessionBuildEndToEnd(t *testing.T) {
	t.Parallel()

	s := NewSession(SessionParams{Customer: testCustomer(), Kind: domain.KindEinlagen, Today: now})
	s.Edit(FieldFootAnalysisFee, "40")
	s.Edit(FieldInsoleFee, "60")
	s.Edit(FieldQuantity, "2")
	s.Edit(FieldDiscountType, "percent")
	s.Edit(FieldDiscountValue, "20")
	s.SetPayerType(payment.PayerPrivate)
	s.SetKVA(true)

	p := s.Build(NewBuilder(clock.NewFixed(now)))

	assert.Equal(t, "160.00", p.Subtotal)
	assert.Equal(t, "32.00", p.DiscountAmount)
	assert.Equal(t, "128.00", p.Total)
	assert.Equal(t, "Privat_Bezahlt", p.PaymentStatus)
	assert.Equal(t, "Note Employee", p.Employee)
	assert.True(t, p.KVA)
}
