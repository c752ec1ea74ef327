package domain

import "strings"

// WorkshopNote is the Werkstattzettel configuration nested in a customer
// record. Its values are the last fallback for an order form.
type WorkshopNote struct {
	Employee       string `json:"employee"`
	Location       string `json:"location"`
	Supply         string `json:"supply"`
	Diagnosis      string `json:"diagnosis"`
	InsoleType     string `json:"insoleType"`
	CompletionDays string `json:"completionDays"`
}

type Customer struct {
	ID           string        `json:"id"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	WorkshopNote *WorkshopNote `json:"workshopNote,omitempty"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// PrefillOrder is an existing order whose values seed a new form. It may
// arrive after the form is already open.
type PrefillOrder struct {
	OrderID         string `json:"orderId"`
	CustomerID      string `json:"customerId"`
	Employee        string `json:"employee"`
	Location        string `json:"location"`
	Supply          string `json:"supply"`
	Diagnosis       string `json:"diagnosis"`
	InsoleType      string `json:"insoleType"`
	FootAnalysisFee string `json:"footAnalysisFee"`
	InsoleFee       string `json:"insoleFee"`
	Quantity        string `json:"quantity"`
	AddonFees       string `json:"addonFees"`
	DiscountType    string `json:"discountType"`
	DiscountValue   string `json:"discountValue"`
	// PaymentStatus is kept raw; it may be in any historical format.
	PaymentStatus any `json:"paymentStatus"`
}
