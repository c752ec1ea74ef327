package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	firstHour    = 5
	lastHour     = 21
	minuteStride = 10
)

// TimeOfDay is an optional pickup time on the completion date. The zero
// value is "unset".
type TimeOfDay struct {
	hour   int
	minute int
	set    bool
}

// NewTimeOfDay returns an unset value when hour is outside 05–21 or minute
// is not one of 00, 10, ..., 50.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	if hour < firstHour || hour > lastHour {
		return TimeOfDay{}
	}
	if minute < 0 || minute > 50 || minute%minuteStride != 0 {
		return TimeOfDay{}
	}
	return TimeOfDay{hour: hour, minute: minute, set: true}
}

// ParseTimeOfDay combines the separate hour and minute dropdown values.
// If either half is missing the result is unset, never a partial time.
func ParseTimeOfDay(hour, minute string) TimeOfDay {
	hour = strings.TrimSpace(hour)
	minute = strings.TrimSpace(minute)
	if hour == "" || minute == "" {
		return TimeOfDay{}
	}
	h, err := strconv.Atoi(hour)
	if err != nil {
		return TimeOfDay{}
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return TimeOfDay{}
	}
	return NewTimeOfDay(h, m)
}

// ParseClock reads an "HH:MM" string.
func ParseClock(s string) TimeOfDay {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}
	}
	return ParseTimeOfDay(h, m)
}

func (t TimeOfDay) IsSet() bool { return t.set }

func (t TimeOfDay) Hour() int { return t.hour }

func (t TimeOfDay) Minute() int { return t.minute }

// String renders HH:MM, or "" when unset.
func (t TimeOfDay) String() string {
	if !t.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}
