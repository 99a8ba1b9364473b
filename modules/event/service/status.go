package service

import (
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"
)

// DeriveStatus computes the display lifecycle state of an event at a given
// instant. It is pure: the caller supplies "now".
//
// Precedence:
//  1. A stored cancelled status always wins, regardless of dates.
//  2. Any other explicit (non-default) stored status is trusted as-is; the
//     periodic sync job keeps stored statuses roughly in line with dates.
//  3. Only the default stored state falls back to date inference.
func DeriveStatus(e *entity.Event, now time.Time) entity.DerivedStatus {
	switch e.Status {
	case entity.EventStatusCancelled:
		return entity.DerivedCancelled
	case entity.EventStatusOngoing:
		return entity.DerivedOngoing
	case entity.EventStatusCompleted:
		return entity.DerivedCompleted
	}

	return inferFromDates(e, now)
}

func inferFromDates(e *entity.Event, now time.Time) entity.DerivedStatus {
	if e.HasEndDate && e.EndDate != nil {
		if now.After(*e.EndDate) {
			return entity.DerivedCompleted
		}
		if !now.Before(e.EventDate) {
			return entity.DerivedOngoing
		}
		return entity.DerivedUpcoming
	}

	// No end date: the event is treated as lasting one day and silently
	// becomes completed afterwards, never ongoing forever.
	cutoff := e.EventDate.Add(constants.DefaultEventDurationHours * time.Hour)
	if now.After(cutoff) {
		return entity.DerivedCompleted
	}
	if !now.Before(e.EventDate) {
		return entity.DerivedOngoing
	}
	return entity.DerivedUpcoming
}

// CanJoin reports whether the event's lifecycle state admits new members.
func CanJoin(e *entity.Event, now time.Time) bool {
	switch DeriveStatus(e, now) {
	case entity.DerivedUpcoming, entity.DerivedOngoing:
		return true
	}
	return false
}

// CanCancel reports whether the organizer may still cancel the event.
// Completed and already-cancelled events cannot be cancelled.
func CanCancel(e *entity.Event, now time.Time) bool {
	switch DeriveStatus(e, now) {
	case entity.DerivedUpcoming, entity.DerivedOngoing:
		return true
	}
	return false
}
