package presentation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RaikyD/einlagen-orders-service/internal/application"
	"github.com/RaikyD/einlagen-orders-service/internal/logger"
	"github.com/RaikyD/einlagen-orders-service/internal/payment"
	"github.com/RaikyD/einlagen-orders-service/internal/presentation/helpers"
	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

const idempotencyHeader = "Idempotency-Key"

type OrdersHandler struct {
	svc *application.OrdersService
}

func NewOrdersHandler(svc *application.OrdersService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/quotes", h.Quote)
	r.Post("/schedule/validate", h.ValidateSchedule)
	r.Post("/payment-status/normalize", h.NormalizePaymentStatus)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Patch("/{id}", h.UpdateSession)
		r.Delete("/{id}", h.AbandonSession)
		r.Post("/{id}/submit", h.SubmitSession)
	})

	r.Get("/orders/{id}", h.GetOrder)
}

func (h *OrdersHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var in application.QuoteInput
	if err := helpers.DecodeJSON(r.Body, &in); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	helpers.WriteJSON(w, http.StatusOK, h.svc.Quote(in))
}

type scheduleRequest struct {
	OrderDate      string `json:"orderDate"`
	CompletionDate string `json:"completionDate"`
	LeadDays       *int   `json:"leadDays"`
}

type scheduleResponse struct {
	Accepted   string `json:"accepted"`
	Required   string `json:"required"`
	WasClamped bool   `json:"wasClamped"`
	Warning    string `json:"warning,omitempty"`
}

func (h *OrdersHandler) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	v, err := h.svc.ValidateSchedule(req.OrderDate, req.CompletionDate, req.LeadDays)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, scheduleResponse{
		Accepted:   schedule.FormatDate(v.Accepted),
		Required:   schedule.FormatDate(v.Required),
		WasClamped: v.WasClamped,
		Warning:    v.Warning,
	})
}

type paymentRequest struct {
	Value any `json:"value"`
}

type paymentResponse struct {
	Canonical string `json:"canonical"`
	PayerType string `json:"payerType"`
	Status    string `json:"status"`
	Format    string `json:"format"`
}

// NormalizePaymentStatus never rejects a value; unknown formats come back unset.
func (h *OrdersHandler) NormalizePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	rec, format := payment.ParseFormat(req.Value)
	helpers.WriteJSON(w, http.StatusOK, paymentResponse{
		Canonical: rec.String(),
		PayerType: string(rec.PayerType()),
		Status:    string(rec.Status()),
		Format:    string(format),
	})
}

func (h *OrdersHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var in application.StartSessionInput
	if err := helpers.DecodeJSON(r.Body, &in); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	v, err := h.svc.StartSession(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, v)
}

func (h *OrdersHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetSession(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

func (h *OrdersHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	var u application.SessionUpdate
	if err := helpers.DecodeJSON(r.Body, &u); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	v, err := h.svc.UpdateSession(id, u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

func (h *OrdersHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	if err := h.svc.AbandonSession(id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	o, existed, err := h.svc.SubmitSession(r.Context(), id, r.Header.Get(idempotencyHeader))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	helpers.WriteJSON(w, status, o)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		helpers.HttpError(w, http.StatusBadRequest, "id is empty")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "id is not a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrCustomerIDRequired),
		errors.Is(err, application.ErrEmployeeRequired),
		errors.Is(err, application.ErrInvalidDate),
		errors.Is(err, application.ErrUnknownField):
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, application.ErrOrderNotFound):
		helpers.HttpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrOrderAlreadyExists):
		helpers.HttpError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "internal error")
	}
}
