package service

import (
	"context"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// BuildICS renders an event (and, for a recurring parent, its occurrences)
// as an iCalendar document for import into external calendar apps.
func (s *EventService) BuildICS(ctx context.Context, id uuid.UUID) (string, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if event == nil {
		return "", errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ObschiySbor//Events//EN")

	addVEvent(cal, event)

	if event.IsRecurringParent {
		children, err := s.repo.GetChildren(ctx, event.ID)
		if err != nil {
			return "", errors.NewAppError(errors.ErrInternalServer, "Failed to get occurrences", err)
		}
		for i := range children {
			addVEvent(cal, &children[i])
		}
	}

	return cal.Serialize(), nil
}

func addVEvent(cal *ics.Calendar, e *entity.Event) {
	ev := cal.AddEvent(e.ID.String() + "@obschiysbor")
	ev.SetSummary(e.Title)
	ev.SetStartAt(e.EventDate.UTC())

	if e.HasEndDate && e.EndDate != nil {
		ev.SetEndAt(e.EndDate.UTC())
	} else {
		ev.SetEndAt(e.EventDate.Add(constants.DefaultEventDurationHours * time.Hour).UTC())
	}

	if e.Description != nil {
		ev.SetDescription(*e.Description)
	}
	if e.IsOnline && e.OnlineLink != nil {
		ev.SetLocation(*e.OnlineLink)
	} else if e.Address != nil {
		ev.SetLocation(*e.Address)
	}
	if e.Status == entity.EventStatusCancelled {
		ev.SetStatus(ics.ObjectStatusCancelled)
	}
}
