package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderKind string

const (
	KindWerkstattzettel OrderKind = "Werkstattzettel"
	KindEinlagen        OrderKind = "Einlagen"
	KindSonstiges       OrderKind = "Sonstiges"
	KindMassschuhe      OrderKind = "Massschuhe"
)

// ParseOrderKind falls back to Einlagen, the default order flow.
func ParseOrderKind(s string) OrderKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "werkstattzettel":
		return KindWerkstattzettel
	case "sonstiges":
		return KindSonstiges
	case "massschuhe", "maßschuhe":
		return KindMassschuhe
	default:
		return KindEinlagen
	}
}

// OrderPayload is the flat record handed to the order-creation endpoint.
// Optional fields are omitted so the backend applies its own defaults.
type OrderPayload struct {
	CustomerID     string `json:"customerId"`
	CustomerName   string `json:"customerName,omitempty"`
	OrderKind      string `json:"orderKind"`
	PrefillOrderID string `json:"prefillOrderId,omitempty"`

	Employee   string `json:"employee,omitempty"`
	Location   string `json:"location,omitempty"`
	Diagnosis  string `json:"diagnosis,omitempty"`
	Supply     string `json:"supply,omitempty"`
	InsoleType string `json:"insoleType,omitempty"`

	Quantity        int               `json:"quantity"`
	FootAnalysisFee string            `json:"footAnalysisFee,omitempty"`
	InsoleFee       string            `json:"insoleFee,omitempty"`
	AddonFees       string            `json:"addonFees,omitempty"`
	BillingCodes    []BillingCodeLine `json:"billingCodes,omitempty"`

	Subtotal        string `json:"subtotal"`
	DiscountPercent string `json:"discountPercent,omitempty"`
	DiscountAmount  string `json:"discountAmount"`
	Total           string `json:"total"`

	PaymentStatus string `json:"paymentStatus,omitempty"`
	KVA           bool   `json:"kva"`

	OrderDate      string `json:"orderDate,omitempty"`
	CompletionDate string `json:"completionDate,omitempty"`
	CompletionTime string `json:"completionTime,omitempty"`
}

type BillingCodeLine struct {
	Code   string `json:"code"`
	Side   string `json:"side"`
	Amount string `json:"amount"`
}

// Order is a submitted payload as stored by this service.
type Order struct {
	OrderID        uuid.UUID    `json:"id"`
	CustomerID     string       `json:"customerId"`
	Kind           OrderKind    `json:"kind"`
	IdempotencyKey string       `json:"-"`
	Payload        OrderPayload `json:"payload"`
	CreatedAt      time.Time    `json:"createdAt"`
}
