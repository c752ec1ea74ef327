// Package schedule computes Fertigstellung (completion) dates for workshop
// orders and keeps them consistent with the order date and the partner lead time.
//
// All dates are calendar dates: they are normalised to midnight UTC and only
// the year/month/day components take part in comparisons.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the boundary format for order and completion dates.
const DateLayout = "2006-01-02"

// DefaultLeadDays applies when no partner lead time is configured. It is also
// the floor that a configured lead time can never undercut.
const DefaultLeadDays = 5

// ParseDate parses a YYYY-MM-DD string. ok is false for empty or malformed input.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders d as YYYY-MM-DD, or "" for the zero date.
func FormatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return Day(d).Format(DateLayout)
}

// Day strips the time of day, keeping the calendar date t shows in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addDays(d time.Time, n int) time.Time {
	return Day(d).AddDate(0, 0, n)
}

// ParseLeadDays reads the partner "completionDays" setting. Anything that is
// not a non-negative integer means "not configured" and yields nil.
func ParseLeadDays(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// MinimumCompletionDate is orderDate plus the configured lead time, or plus
// DefaultLeadDays when the lead time is absent or negative.
func MinimumCompletionDate(orderDate time.Time, leadDays *int) time.Time {
	if leadDays == nil || *leadDays < 0 {
		return addDays(orderDate, DefaultLeadDays)
	}
	return addDays(orderDate, *leadDays)
}

// RequiredCompletionDate is the later of MinimumCompletionDate and the
// DefaultLeadDays floor.
func RequiredCompletionDate(orderDate time.Time, leadDays *int) time.Time {
	minimum := MinimumCompletionDate(orderDate, leadDays)
	floor := addDays(orderDate, DefaultLeadDays)
	if minimum.Before(floor) {
		return floor
	}
	return minimum
}

// Validation is the outcome of checking a user-chosen completion date.
type Validation struct {
	Accepted   time.Time
	Required   time.Time
	WasClamped bool
	// Warning is set only when WasClamped; callers show it to the user.
	Warning string
}

// ValidateCompletionDate clamps chosen up to the required completion date.
// Dates on or after the required date pass through unchanged.
func ValidateCompletionDate(orderDate, chosen time.Time, leadDays *int) Validation {
	required := RequiredCompletionDate(orderDate, leadDays)
	chosenDay := Day(chosen)
	if chosenDay.Before(required) {
		return Validation{
			Accepted:   required,
			Required:   required,
			WasClamped: true,
			Warning:    fmt.Sprintf("completion date must not be earlier than the minimum %s", required.Format(DateLayout)),
		}
	}
	return Validation{
		Accepted: chosenDay,
		Required: required,
	}
}
