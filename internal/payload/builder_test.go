package payload

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaikyD/einlagen-orders-service/internal/clock"
	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/payment"
	"github.com/RaikyD/einlagen-orders-service/internal/pricing"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

var now = time.Date(2025, 1, 10, 14, 37, 12, 345000000, time.UTC)

func strPtr(s string) *string { return &s }

func testCustomer() domain.Customer {
	return domain.Customer{
		ID:        "cust-1",
		FirstName: "Anna",
		LastName:  "Becker",
		WorkshopNote: &domain.WorkshopNote{
			Employee:   "Note Employee",
			Location:   "Filiale Nord",
			Supply:     "Alltag",
			InsoleType: "Sport",
		},
	}
}

func TestResolveField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "edit", ResolveField(strPtr("edit"), "prefill", "parent"))
	assert.Equal(t, "", ResolveField(strPtr(""), "prefill", "parent"))
	assert.Equal(t, "prefill", ResolveField(nil, "prefill", "parent"))
	assert.Equal(t, "parent", ResolveField(nil, "  ", "parent"))
	assert.Equal(t, "", ResolveField(nil, "", ""))
}

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	b := NewBuilder(clock.NewFixed(now))
	c := testCustomer()

	t.Run("resolves sources by precedence", func(t *testing.T) {
		sel := Selections{
			Kind:    domain.KindWerkstattzettel,
			Edits:   Edits{FieldEmployee: "Edited Employee"},
			Prefill: &domain.PrefillOrder{OrderID: "old-1", Location: "Filiale Süd", Employee: "Prefill Employee"},
		}
		sched := schedule.New(now, now, nil)

		p := b.Build(c, sel, pricing.Result{}, payment.Record{}, sched)

		assert.Equal(t, "Edited Employee", p.Employee)
		assert.Equal(t, "Filiale Süd", p.Location)
		assert.Equal(t, "Alltag", p.Supply)
		assert.Equal(t, "", p.Diagnosis)
		assert.Equal(t, "old-1", p.PrefillOrderID)
		assert.Equal(t, "Werkstattzettel", p.OrderKind)
		assert.Equal(t, "Anna Becker", p.CustomerName)
	})

	t.Run("serialises dates at midnight", func(t *testing.T) {
		sched := schedule.New(now, now, nil)
		p := b.Build(c, Selections{}, pricing.Result{}, payment.Record{}, sched)

		assert.Equal(t, "2025-01-10T00:00:00.000Z", p.OrderDate)
		assert.Equal(t, "2025-01-15T00:00:00.000Z", p.CompletionDate)
		assert.Equal(t, "", p.CompletionTime)
	})

	t.Run("chosen time stamps wall clock onto the date", func(t *testing.T) {
		sched := schedule.New(now, now, nil)
		sched.SetTimeOfDay(schedule.ParseTimeOfDay("9", "30"))
		p := b.Build(c, Selections{}, pricing.Result{}, payment.Record{}, sched)

		assert.Equal(t, "2025-01-15T14:37:12.345Z", p.CompletionDate)
		assert.Equal(t, "09:30", p.CompletionTime)
	})

	t.Run("chosen time mode uses the selected time", func(t *testing.T) {
		chosen := NewBuilder(clock.NewFixed(now), WithTimeMode(TimeModeChosen))
		sched := schedule.New(now, now, nil)
		sched.SetTimeOfDay(schedule.ParseTimeOfDay("9", "30"))
		p := chosen.Build(c, Selections{}, pricing.Result{}, payment.Record{}, sched)

		assert.Equal(t, "2025-01-15T09:30:00.000Z", p.CompletionDate)
	})

	t.Run("prices and payment are carried over", func(t *testing.T) {
		sel := Selections{
			Edits: Edits{FieldFootAnalysisFee: "40", FieldInsoleFee: "60", FieldQuantity: "2"},
			BillingCodes: []pricing.BillingCode{
				{Code: "08.03", BasePrice: decimal.RequireFromString("12.5"), Side: pricing.SideBoth},
			},
		}
		twenty := decimal.NewFromInt(20)
		price := pricing.ComputeTotal(sel.Lines(c), &twenty)
		p := b.Build(c, sel, price, payment.NewRecord(payment.PayerPrivate, payment.StatusOpen), schedule.New(now, now, nil))

		assert.Equal(t, 2, p.Quantity)
		assert.Equal(t, "40.00", p.FootAnalysisFee)
		assert.Equal(t, "185.00", p.Subtotal)
		assert.Equal(t, "20", p.DiscountPercent)
		assert.Equal(t, "37.00", p.DiscountAmount)
		assert.Equal(t, "148.00", p.Total)
		assert.Equal(t, "Privat_offen", p.PaymentStatus)
		require.Len(t, p.BillingCodes, 1)
		assert.Equal(t, "25.00", p.BillingCodes[0].Amount)
	})

	t.Run("missing optional fields are omitted on the wire", func(t *testing.T) {
		p := b.Build(domain.Customer{ID: "c-2"}, Selections{}, pricing.Result{}, payment.Record{}, schedule.Schedule{})
		raw, err := json.Marshal(p)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		for _, key := range []string{"employee", "location", "paymentStatus", "completionDate", "orderDate", "billingCodes", "discountPercent"} {
			assert.NotContains(t, m, key)
		}
		assert.Equal(t, "c-2", m["customerId"])
		assert.Equal(t, "Einlagen", m["orderKind"])
	})
}
