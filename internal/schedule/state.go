package schedule

import "time"

// Schedule holds the order and completion dates of one form session.
// Every setter keeps Completion >= RequiredCompletionDate(OrderDate, LeadDays).
type Schedule struct {
	OrderDate  time.Time
	Completion time.Time
	LeadDays   *int
	Time       TimeOfDay
}

// New starts a schedule on orderDate (today when zero) with the completion
// date set to the earliest allowed day.
func New(orderDate, today time.Time, leadDays *int) Schedule {
	if orderDate.IsZero() {
		orderDate = today
	}
	s := Schedule{
		OrderDate: Day(orderDate),
		LeadDays:  leadDays,
	}
	s.Completion = s.Required()
	return s
}

func (s *Schedule) Required() time.Time {
	return RequiredCompletionDate(s.OrderDate, s.LeadDays)
}

// SetOrderDate moves the order date. The completion date is pushed forward
// when it would violate the new minimum; it is never pulled earlier.
// Reports whether the completion date moved.
func (s *Schedule) SetOrderDate(d time.Time) bool {
	if d.IsZero() {
		return false
	}
	s.OrderDate = Day(d)
	required := s.Required()
	if s.Completion.IsZero() || s.Completion.Before(required) {
		s.Completion = required
		return true
	}
	return false
}

// SetCompletionDate applies a user-chosen date, clamping it when too early.
func (s *Schedule) SetCompletionDate(d time.Time) Validation {
	v := ValidateCompletionDate(s.OrderDate, d, s.LeadDays)
	s.Completion = v.Accepted
	return v
}

// SetLeadDays swaps the partner lead time, re-applying the invariant.
func (s *Schedule) SetLeadDays(leadDays *int) bool {
	s.LeadDays = leadDays
	return s.SetOrderDate(s.OrderDate)
}

func (s *Schedule) SetTimeOfDay(t TimeOfDay) {
	s.Time = t
}
