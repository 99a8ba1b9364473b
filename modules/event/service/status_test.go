package service

import (
	"testing"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"

	"github.com/stretchr/testify/assert"
)

var statusNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func eventAt(start time.Time) *entity.Event {
	return &entity.Event{
		EventDate: start,
		Status:    entity.EventStatusActive,
	}
}

func TestDeriveStatusCancelledAlwaysWins(t *testing.T) {
	e := eventAt(statusNow.Add(48 * time.Hour))
	e.Status = entity.EventStatusCancelled

	assert.Equal(t, entity.DerivedCancelled, DeriveStatus(e, statusNow))

	// Even a long-finished event stays cancelled.
	e.EventDate = statusNow.Add(-30 * 24 * time.Hour)
	assert.Equal(t, entity.DerivedCancelled, DeriveStatus(e, statusNow))
}

func TestDeriveStatusUpcoming(t *testing.T) {
	e := eventAt(statusNow.Add(2 * time.Hour))
	assert.Equal(t, entity.DerivedUpcoming, DeriveStatus(e, statusNow))
	assert.True(t, CanJoin(e, statusNow))
	assert.True(t, CanCancel(e, statusNow))
}

func TestDeriveStatusWithEndDate(t *testing.T) {
	start := statusNow.Add(-2 * time.Hour)
	end := statusNow.Add(2 * time.Hour)
	e := eventAt(start)
	e.HasEndDate = true
	e.EndDate = &end

	assert.Equal(t, entity.DerivedOngoing, DeriveStatus(e, statusNow))

	passed := statusNow.Add(-1 * time.Hour)
	e.EndDate = &passed
	assert.Equal(t, entity.DerivedCompleted, DeriveStatus(e, statusNow))
	assert.False(t, CanJoin(e, statusNow))
	assert.False(t, CanCancel(e, statusNow))
}

func TestDeriveStatusNoEndDateCutover(t *testing.T) {
	// Started 1h ago with no end date: still ongoing.
	e := eventAt(statusNow.Add(-1 * time.Hour))
	assert.Equal(t, entity.DerivedOngoing, DeriveStatus(e, statusNow))

	// Started 25h ago: past the one-day cutoff, completed.
	e = eventAt(statusNow.Add(-25 * time.Hour))
	assert.Equal(t, entity.DerivedCompleted, DeriveStatus(e, statusNow))
}

func TestDeriveStatusTrustsExplicitStoredStatus(t *testing.T) {
	// The sync job may have marked an event completed early; dates no
	// longer matter.
	e := eventAt(statusNow.Add(5 * time.Hour))
	e.Status = entity.EventStatusCompleted
	assert.Equal(t, entity.DerivedCompleted, DeriveStatus(e, statusNow))

	e.Status = entity.EventStatusOngoing
	assert.Equal(t, entity.DerivedOngoing, DeriveStatus(e, statusNow))
	assert.True(t, CanJoin(e, statusNow))
}
