package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RaikyD/einlagen-orders-service/internal/cache"
	"github.com/RaikyD/einlagen-orders-service/internal/clock"
	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/logger"
	"github.com/RaikyD/einlagen-orders-service/internal/payload"
	"github.com/RaikyD/einlagen-orders-service/internal/pricing"
	"github.com/RaikyD/einlagen-orders-service/internal/repository"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

const idempotencyTTL = 24 * time.Hour

// OrderPublisher hands a submitted order to the order-creation backend.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, o domain.Order) error
}

type OrdersService struct {
	repo      repository.OrderRepo
	publisher OrderPublisher
	idem      cache.Cache
	clock     clock.Clock
	builder   *payload.Builder
	leadDays  *int
	timeMode  payload.TimeMode

	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.Order

	sessMu   sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

type Option func(*OrdersService)

func WithPublisher(p OrderPublisher) Option {
	return func(s *OrdersService) { s.publisher = p }
}

// WithIdempotencyStore enables the fast path for repeated Idempotency-Key
// submissions. Without it the database is the only source.
func WithIdempotencyStore(c cache.Cache) Option {
	return func(s *OrdersService) { s.idem = c }
}

func WithClock(c clock.Clock) Option {
	return func(s *OrdersService) { s.clock = c }
}

// WithLeadDays sets the partner completionDays. Nil keeps the 5 day floor.
func WithLeadDays(n *int) Option {
	return func(s *OrdersService) { s.leadDays = n }
}

func WithTimeMode(m payload.TimeMode) Option {
	return func(s *OrdersService) { s.timeMode = m }
}

func NewOrdersService(r repository.OrderRepo, opts ...Option) *OrdersService {
	s := &OrdersService{
		repo:     r,
		clock:    clock.NewSystem(),
		byID:     make(map[uuid.UUID]*domain.Order),
		sessions: make(map[uuid.UUID]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = payload.NewBuilder(s.clock, payload.WithTimeMode(s.timeMode))
	return s
}

type QuoteInput struct {
	Lines         pricing.Lines `json:"lines"`
	DiscountType  string        `json:"discountType"`
	DiscountValue string        `json:"discountValue"`
}

func (s *OrdersService) Quote(in QuoteInput) pricing.Result {
	lines := in.Lines
	lines.BillingCodes = normalizeCodes(lines.BillingCodes)
	return pricing.ComputeTotal(lines, pricing.ParseDiscount(in.DiscountType, in.DiscountValue))
}

// ValidateSchedule checks a chosen completion date against the order date.
// An empty order date means today. leadDays nil uses the configured value;
// a negative leadDays means no lead time, so only the 5 day floor applies.
func (s *OrdersService) ValidateSchedule(orderDate, completionDate string, leadDays *int) (schedule.Validation, error) {
	od := schedule.Day(s.clock.Now())
	if strings.TrimSpace(orderDate) != "" {
		d, ok := schedule.ParseDate(orderDate)
		if !ok {
			return schedule.Validation{}, fmt.Errorf("order date %q: %w", orderDate, ErrInvalidDate)
		}
		od = d
	}
	if leadDays == nil {
		leadDays = s.leadDays
	}
	if strings.TrimSpace(completionDate) == "" {
		required := schedule.RequiredCompletionDate(od, leadDays)
		return schedule.Validation{Accepted: required, Required: required}, nil
	}
	cd, ok := schedule.ParseDate(completionDate)
	if !ok {
		return schedule.Validation{}, fmt.Errorf("completion date %q: %w", completionDate, ErrInvalidDate)
	}
	return schedule.ValidateCompletionDate(od, cd, leadDays), nil
}

// SubmitSession turns the session into a stored order exactly once. A
// repeated idempotency key returns the order it created and existed=true.
func (s *OrdersService) SubmitSession(ctx context.Context, id uuid.UUID, idemKey string) (o *domain.Order, existed bool, err error) {
	idemKey = strings.TrimSpace(idemKey)
	if idemKey != "" {
		if prev := s.lookupIdempotent(ctx, idemKey); prev != nil {
			return prev, true, nil
		}
	}

	e, err := s.session(id)
	if err != nil {
		return s.submittedMeanwhile(ctx, idemKey, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		// a concurrent submit with the same key may have just closed it
		return s.submittedMeanwhile(ctx, idemKey, ErrSessionNotFound)
	}

	p := e.sess.Build(s.builder)
	if strings.TrimSpace(p.CustomerID) == "" {
		return nil, false, ErrCustomerIDRequired
	}
	if strings.TrimSpace(p.Employee) == "" {
		return nil, false, ErrEmployeeRequired
	}

	order := &domain.Order{
		OrderID:        uuid.New(),
		CustomerID:     p.CustomerID,
		Kind:           domain.ParseOrderKind(p.OrderKind),
		IdempotencyKey: idemKey,
		Payload:        p,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.repo.AddOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) && idemKey != "" {
			prev, e2 := s.repo.GetOrderByIdempotencyKey(ctx, idemKey)
			if e2 == nil && prev != nil {
				s.remember(prev)
				return prev, true, nil
			}
		}
		logger.Warn("submit: add order failed", "session_id", id, "err", err)
		return nil, false, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrder(ctx, *order); err != nil {
			// the order is stored; the backend can be replayed from the table
			logger.Error("submit: publish failed", "order_id", order.OrderID, "err", err)
		}
	}

	if idemKey != "" && s.idem != nil {
		key := s.idem.GenerateKey("submit", idemKey)
		if err := s.idem.Set(ctx, key, order.OrderID.String(), idempotencyTTL); err != nil {
			logger.Warn("submit: idempotency cache set failed", "key", key, "err", err)
		}
	}

	s.remember(order)
	e.closed = true
	s.dropSession(id)
	logger.Info("order submitted", "order_id", order.OrderID, "customer_id", order.CustomerID, "total", p.Total)
	return order, false, nil
}

func (s *OrdersService) submittedMeanwhile(ctx context.Context, idemKey string, cause error) (*domain.Order, bool, error) {
	if idemKey != "" {
		if prev := s.lookupIdempotent(ctx, idemKey); prev != nil {
			return prev, true, nil
		}
	}
	return nil, false, cause
}

func (s *OrdersService) lookupIdempotent(ctx context.Context, key string) *domain.Order {
	if s.idem != nil {
		raw, err := s.idem.Get(ctx, s.idem.GenerateKey("submit", key))
		if err != nil {
			logger.Warn("idempotency cache get failed", "err", err)
		} else if raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				if o, err := s.GetByID(ctx, id); err == nil {
					return o
				}
			}
		}
	}
	o, err := s.repo.GetOrderByIdempotencyKey(ctx, key)
	if err != nil {
		logger.Warn("idempotency lookup failed", "err", err)
		return nil
	}
	if o != nil {
		s.remember(o)
	}
	return o
}

func (s *OrdersService) remember(o *domain.Order) {
	s.mu.Lock()
	s.byID[o.OrderID] = o
	s.mu.Unlock()
}

func (s *OrdersService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	if o, ok := s.byID[id]; ok {
		s.mu.RUnlock()
		return o, nil
	}
	s.mu.RUnlock()

	o, err := s.repo.GetOrderById(ctx, id)
	if err != nil {
		logger.Warn("get order by id failed", "order_id", id, "err", err)
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	s.remember(o)
	return o, nil
}

// RestoreCache replaces the order cache with the newest limit orders.
func (s *OrdersService) RestoreCache(ctx context.Context, limit int) error {
	rows, err := s.repo.ListRecentPayloads(ctx, limit)
	if err != nil {
		return err
	}

	// build outside the lock
	tmp := make(map[uuid.UUID]*domain.Order, len(rows))
	for _, r := range rows {
		if len(r.Payload) == 0 {
			o, err := s.repo.GetOrderById(ctx, r.ID)
			if err != nil || o == nil {
				logger.Warn("restore cache: load order failed; skip", "order_id", r.ID, "err", err)
				continue
			}
			tmp[o.OrderID] = o
			continue
		}

		var p domain.OrderPayload
		if err := json.Unmarshal(r.Payload, &p); err != nil {
			logger.Warn("restore cache: bad payload; skip", "order_id", r.ID, "err", err)
			continue
		}
		tmp[r.ID] = &domain.Order{
			OrderID:    r.ID,
			CustomerID: p.CustomerID,
			Kind:       domain.ParseOrderKind(p.OrderKind),
			Payload:    p,
			CreatedAt:  r.CreatedAt,
		}
	}

	s.mu.Lock()
	s.byID = tmp
	s.mu.Unlock()
	logger.Info("order cache restored", "orders", len(tmp))
	return nil
}

func normalizeCodes(codes []pricing.BillingCode) []pricing.BillingCode {
	if codes == nil {
		return nil
	}
	out := make([]pricing.BillingCode, 0, len(codes))
	for _, c := range codes {
		c.Code = strings.TrimSpace(c.Code)
		if c.Code == "" {
			continue
		}
		c.Side = pricing.ParseSide(string(c.Side))
		out = append(out, c)
	}
	return out
}
