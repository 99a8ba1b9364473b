package entity

import (
	"fmt"
	"time"
)

// Frequency is the unit a recurrence rule steps by.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// RecurrenceRule configures how a parent event replicates into a series.
// It is an ephemeral object, consumed once at creation time and never
// persisted as its own row.
type RecurrenceRule struct {
	Frequency Frequency

	// Interval is the number of frequency units between occurrences, >= 1.
	Interval int

	// DaysOfWeek pins weekly occurrences to ISO weekdays (1=Mon .. 7=Sun).
	// Only meaningful for weekly frequency; empty falls back to the
	// anchor's own weekday.
	DaysOfWeek []int

	// Exactly one of Count and EndDate terminates the series.
	Count   int
	EndDate *time.Time
}

// Validate rejects rules the expander cannot honor deterministically.
func (r *RecurrenceRule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}

	if r.Interval < 1 {
		return fmt.Errorf("interval must be >= 1, got %d", r.Interval)
	}

	hasCount := r.Count > 0
	hasEnd := r.EndDate != nil
	if hasCount == hasEnd {
		return fmt.Errorf("exactly one of occurrence count and end date must be set")
	}

	if len(r.DaysOfWeek) > 0 && r.Frequency != FrequencyWeekly {
		return fmt.Errorf("days of week are only valid for weekly frequency")
	}
	for _, d := range r.DaysOfWeek {
		if d < 1 || d > 7 {
			return fmt.Errorf("day of week must be 1..7, got %d", d)
		}
	}

	return nil
}
