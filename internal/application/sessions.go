package application

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/logger"
	"github.com/RaikyD/einlagen-orders-service/internal/payload"
	"github.com/RaikyD/einlagen-orders-service/internal/payment"
	"github.com/RaikyD/einlagen-orders-service/internal/pricing"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

// sessionEntry guards one form session. Lock order is entry.mu before
// OrdersService.sessMu, never the reverse.
type sessionEntry struct {
	mu       sync.Mutex
	sess     *payload.Session
	onUpdate func(domain.PrefillOrder)
	touched  time.Time
	closed   bool
}

type StartSessionInput struct {
	Customer  domain.Customer      `json:"customer"`
	Kind      string               `json:"orderKind"`
	Prefill   *domain.PrefillOrder `json:"prefill"`
	OrderDate string               `json:"orderDate"`
}

// SessionUpdate carries only the fields the user changed. In Edits a null
// value reverts the field to its prefill or workshop-note value.
type SessionUpdate struct {
	Edits          map[string]*string    `json:"edits"`
	OrderDate      *string               `json:"orderDate"`
	CompletionDate *string               `json:"completionDate"`
	CompletionTime *string               `json:"completionTime"`
	PayerType      *string               `json:"payerType"`
	PaymentStatus  *string               `json:"paymentStatus"`
	BillingCodes   []pricing.BillingCode `json:"billingCodes"`
	KVA            *bool                 `json:"kva"`
}

type SessionView struct {
	ID                     uuid.UUID           `json:"id"`
	Payload                domain.OrderPayload `json:"payload"`
	Price                  pricing.Result      `json:"price"`
	RequiredCompletionDate string              `json:"requiredCompletionDate"`
	Warnings               []string            `json:"warnings,omitempty"`
}

func (s *OrdersService) StartSession(in StartSessionInput) (SessionView, error) {
	if strings.TrimSpace(in.Customer.ID) == "" {
		return SessionView{}, ErrCustomerIDRequired
	}
	var orderDate time.Time
	if strings.TrimSpace(in.OrderDate) != "" {
		d, ok := schedule.ParseDate(in.OrderDate)
		if !ok {
			return SessionView{}, fmt.Errorf("order date %q: %w", in.OrderDate, ErrInvalidDate)
		}
		orderDate = d
	}

	now := s.clock.Now()
	sess := payload.NewSession(payload.SessionParams{
		Customer:  in.Customer,
		Kind:      domain.OrderKind(in.Kind),
		Prefill:   in.Prefill,
		OrderDate: orderDate,
		Today:     now,
		LeadDays:  s.leadDays,
	})
	e := &sessionEntry{sess: sess, onUpdate: sess.OnOrderDataUpdate(), touched: now}
	id := uuid.New()
	v := s.view(id, e, nil)

	s.sessMu.Lock()
	s.sessions[id] = e
	s.sessMu.Unlock()

	logger.Debug("session started", "session_id", id, "customer_id", in.Customer.ID)
	return v, nil
}

func (s *OrdersService) GetSession(id uuid.UUID) (SessionView, error) {
	e, err := s.session(id)
	if err != nil {
		return SessionView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return SessionView{}, ErrSessionNotFound
	}
	return s.view(id, e, nil), nil
}

// UpdateSession validates the whole update before applying any of it.
// Clamped dates and rejected payment statuses come back as warnings.
func (s *OrdersService) UpdateSession(id uuid.UUID, u SessionUpdate) (SessionView, error) {
	edits := make(map[payload.Field]*string, len(u.Edits))
	for name, v := range u.Edits {
		f, ok := payload.ParseField(name)
		if !ok {
			return SessionView{}, fmt.Errorf("%q: %w", name, ErrUnknownField)
		}
		edits[f] = v
	}
	var orderDate, completionDate time.Time
	if u.OrderDate != nil {
		d, ok := schedule.ParseDate(*u.OrderDate)
		if !ok {
			return SessionView{}, fmt.Errorf("order date %q: %w", *u.OrderDate, ErrInvalidDate)
		}
		orderDate = d
	}
	if u.CompletionDate != nil {
		d, ok := schedule.ParseDate(*u.CompletionDate)
		if !ok {
			return SessionView{}, fmt.Errorf("completion date %q: %w", *u.CompletionDate, ErrInvalidDate)
		}
		completionDate = d
	}

	e, err := s.session(id)
	if err != nil {
		return SessionView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return SessionView{}, ErrSessionNotFound
	}

	sess := e.sess
	var warnings []string
	for f, v := range edits {
		if v == nil {
			sess.Revert(f)
			continue
		}
		sess.Edit(f, *v)
	}
	if u.BillingCodes != nil {
		sess.SetBillingCodes(normalizeCodes(u.BillingCodes))
	}
	if u.KVA != nil {
		sess.SetKVA(*u.KVA)
	}
	if u.OrderDate != nil && sess.SetOrderDate(orderDate) {
		warnings = append(warnings, fmt.Sprintf("completion date moved to %s", schedule.FormatDate(sess.Schedule.Completion)))
	}
	if u.CompletionDate != nil {
		if v := sess.SetCompletionDate(completionDate); v.WasClamped {
			warnings = append(warnings, v.Warning)
		}
	}
	if u.CompletionTime != nil {
		sess.SetTimeOfDay(schedule.ParseClock(*u.CompletionTime))
	}
	if u.PayerType != nil {
		sess.SetPayerType(payment.ParsePayerType(*u.PayerType))
	}
	if u.PaymentStatus != nil {
		st := payment.ParseStatus(*u.PaymentStatus)
		if !sess.SetPaymentStatus(st) {
			warnings = append(warnings, fmt.Sprintf("payment status %q does not apply to payer type %q", *u.PaymentStatus, string(sess.Payment.PayerType())))
		}
	}

	e.touched = s.clock.Now()
	return s.view(id, e, warnings), nil
}

// ApplyOrderDataUpdate delivers late prefill data to every open session of
// the customer. Explicit edits in those sessions stay in force. Returns the
// number of sessions updated.
func (s *OrdersService) ApplyOrderDataUpdate(customerID string, p domain.PrefillOrder) int {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return 0
	}

	s.sessMu.Lock()
	targets := make([]*sessionEntry, 0, 1)
	for _, e := range s.sessions {
		targets = append(targets, e)
	}
	s.sessMu.Unlock()

	n := 0
	for _, e := range targets {
		e.mu.Lock()
		if !e.closed && e.sess.Customer.ID == customerID {
			e.onUpdate(p)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

func (s *OrdersService) AbandonSession(id uuid.UUID) error {
	e, err := s.session(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	s.dropSession(id)
	logger.Debug("session abandoned", "session_id", id)
	return nil
}

// PruneSessions drops sessions untouched for longer than maxAge.
func (s *OrdersService) PruneSessions(maxAge time.Duration) int {
	cutoff := s.clock.Now().Add(-maxAge)

	s.sessMu.Lock()
	snapshot := make(map[uuid.UUID]*sessionEntry, len(s.sessions))
	for id, e := range s.sessions {
		snapshot[id] = e
	}
	s.sessMu.Unlock()

	var stale []uuid.UUID
	for id, e := range snapshot {
		e.mu.Lock()
		if e.touched.Before(cutoff) {
			e.closed = true
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}
	for _, id := range stale {
		s.dropSession(id)
	}
	if len(stale) > 0 {
		logger.Info("stale sessions pruned", "count", len(stale))
	}
	return len(stale)
}

func (s *OrdersService) session(id uuid.UUID) (*sessionEntry, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (s *OrdersService) dropSession(id uuid.UUID) {
	s.sessMu.Lock()
	delete(s.sessions, id)
	s.sessMu.Unlock()
}

// view must be called with e.mu held or before e is shared.
func (s *OrdersService) view(id uuid.UUID, e *sessionEntry, warnings []string) SessionView {
	return SessionView{
		ID:                     id,
		Payload:                e.sess.Build(s.builder),
		Price:                  e.sess.Price(),
		RequiredCompletionDate: schedule.FormatDate(e.sess.Schedule.Required()),
		Warnings:               warnings,
	}
}
