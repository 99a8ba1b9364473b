package service

import (
	"context"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/metrics"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"

	"github.com/teambition/rrule-go"
)

// ExpansionResult reports what a recurrence expansion run actually did.
// Children created before a mid-series failure stay in place; the parent
// remains valid standalone and the caller may re-run expansion, which
// skips occurrences that already exist for the same parent and date.
type ExpansionResult struct {
	CreatedCount       int    `json:"created_count"`
	SkippedCount       int    `json:"skipped_count"`
	FirstFailureReason string `json:"first_failure_reason,omitempty"`
}

var isoWeekdays = map[int]rrule.Weekday{
	1: rrule.MO, 2: rrule.TU, 3: rrule.WE, 4: rrule.TH,
	5: rrule.FR, 6: rrule.SA, 7: rrule.SU,
}

// occurrenceDates generates the child start times for a parent anchored at
// start, in chronological order. The anchor itself is never returned; the
// parent event occupies that slot. Deterministic for a given rule and start.
func occurrenceDates(start time.Time, rule *entity.RecurrenceRule) ([]time.Time, error) {
	opt := rrule.ROption{
		Interval: rule.Interval,
		Dtstart:  start,
	}

	switch rule.Frequency {
	case entity.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case entity.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range rule.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, isoWeekdays[d])
		}
	case entity.FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}

	var out []time.Time
	iter := r.Iterator()
	for {
		next, ok := iter()
		if !ok {
			break
		}
		if !next.After(start) {
			continue
		}
		if rule.EndDate != nil && next.After(*rule.EndDate) {
			break
		}

		out = append(out, next)

		if rule.Count > 0 && len(out) == rule.Count {
			break
		}
		if len(out) >= constants.MaxRecurrenceOccurrences {
			break
		}
	}

	return out, nil
}

// childDraft copies everything a child occurrence inherits from its parent:
// time-of-day and duration via the occurrence date, plus location, category
// and category_data verbatim.
func childDraft(parent *entity.Event, occurrence time.Time) *entity.Event {
	child := &entity.Event{
		CreatorID:       parent.CreatorID,
		Title:           parent.Title,
		Slug:            buildSlug(parent.Title),
		Description:     parent.Description,
		Category:        parent.Category,
		CategoryData:    parent.CategoryData,
		EventDate:       occurrence,
		HasEndDate:      parent.HasEndDate,
		IsOnline:        parent.IsOnline,
		Address:         parent.Address,
		Latitude:        parent.Latitude,
		Longitude:       parent.Longitude,
		OnlinePlatform:  parent.OnlinePlatform,
		OnlineLink:      parent.OnlineLink,
		MaxParticipants: parent.MaxParticipants,
		GenderFilter:    parent.GenderFilter,
		Status:          entity.EventStatusActive,
		ParentEventID:   &parent.ID,
	}

	if d := parent.Duration(); d > 0 {
		end := occurrence.Add(d)
		child.EndDate = &end
	}

	return child
}

// expandRecurrence creates the child events for a parent according to rule.
// Failures mid-series do not roll back already-created children.
func (s *EventService) expandRecurrence(ctx context.Context, parent *entity.Event, rule *entity.RecurrenceRule) *ExpansionResult {
	result := &ExpansionResult{}

	dates, err := occurrenceDates(parent.EventDate, rule)
	if err != nil {
		logger.Error("EventService:expandRecurrence:OccurrenceDates", "error", err, "event_id", parent.ID)
		result.FirstFailureReason = err.Error()
		return result
	}

	existing, err := s.repo.GetChildStartDates(ctx, parent.ID)
	if err != nil {
		result.FirstFailureReason = err.Error()
		return result
	}
	seen := make(map[int64]bool, len(existing))
	for _, d := range existing {
		seen[d.UTC().Unix()] = true
	}

	for _, occurrence := range dates {
		if seen[occurrence.UTC().Unix()] {
			result.SkippedCount++
			continue
		}

		if _, err := s.repo.CreateEvent(ctx, childDraft(parent, occurrence)); err != nil {
			logger.Error("EventService:expandRecurrence:CreateChild",
				"error", err, "parent_id", parent.ID, "occurrence", occurrence)
			result.FirstFailureReason = err.Error()
			break
		}
		result.CreatedCount++
		metrics.OccurrencesCreatedTotal.Inc()
	}

	logger.Info("EventService:expandRecurrence:Done",
		"parent_id", parent.ID,
		"created", result.CreatedCount,
		"skipped", result.SkippedCount)
	return result
}
