package service

import (
	"context"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/metrics"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	eventDto "github.com/AndyVoronov/ObschiySbor-sub000/modules/event/dto"
	eventEntity "github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"
	eventService "github.com/AndyVoronov/ObschiySbor-sub000/modules/event/service"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/repository"

	"github.com/google/uuid"
)

// EventGetter is the slice of the event repository admission needs.
type EventGetter interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*eventEntity.Event, error)
}

// BlockChecker gates admission globally: a blocked user may not join any
// event.
type BlockChecker interface {
	IsActivelyBlocked(ctx context.Context, userID uuid.UUID) (bool, *errors.AppError)
}

// GenderProvider exposes a user's profile gender for the gender-filter
// check ("" means not set).
type GenderProvider interface {
	GetGender(ctx context.Context, userID uuid.UUID) (string, error)
}

// AdmissionService decides whether a user may join an event and delegates
// the actual mutation to the participation ledger. Precondition checks run
// in a fixed order; the first failure wins and nothing is mutated.
type AdmissionService struct {
	ledger   repository.ParticipationRepositoryInterface
	events   EventGetter
	blocks   BlockChecker
	users    GenderProvider
	notifier queue.Notifier
	clock    clock.Clock
}

type AdmissionServiceInterface interface {
	Join(ctx context.Context, eventID, userID uuid.UUID) *errors.AppError
	Leave(ctx context.Context, eventID, userID uuid.UUID) *errors.AppError
	RemoveParticipant(ctx context.Context, eventID, organizerID, targetID uuid.UUID) *errors.AppError
	ListParticipants(ctx context.Context, eventID uuid.UUID) ([]entity.Participation, *errors.AppError)
	GetMyJoinedEvents(ctx context.Context, userID uuid.UUID) ([]eventDto.EventResponse, *errors.AppError)
}

func NewAdmissionService(
	ledger repository.ParticipationRepositoryInterface,
	events EventGetter,
	blocks BlockChecker,
	users GenderProvider,
	notifier queue.Notifier,
	clk clock.Clock,
) AdmissionServiceInterface {
	return &AdmissionService{
		ledger:   ledger,
		events:   events,
		blocks:   blocks,
		users:    users,
		notifier: notifier,
		clock:    clk,
	}
}

func denied(code errors.ErrorCode, message string) *errors.AppError {
	metrics.JoinsDeniedTotal.WithLabelValues(string(code)).Inc()
	return errors.NewAppError(code, message, nil)
}

// Join runs the admission checks in order and, on success, reserves the
// seat through the ledger and notifies the organizer. The notification is
// fire-and-forget and cannot fail the join.
func (s *AdmissionService) Join(ctx context.Context, eventID, userID uuid.UUID) *errors.AppError {
	// 1. Block gate.
	blocked, appErr := s.blocks.IsActivelyBlocked(ctx, userID)
	if appErr != nil {
		return appErr
	}
	if blocked {
		return denied(errors.ErrUserBlocked, "Your account is blocked and cannot join events")
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	// 2. Lifecycle gate.
	if !eventService.CanJoin(event, s.clock.Now()) {
		return denied(errors.ErrEventNotJoinable, "This event is no longer open for joining")
	}

	// 3. Capacity pre-check. The ledger re-checks atomically; this is the
	// fail-fast path that avoids opening a transaction for a full event.
	if event.CurrentParticipants >= event.MaxParticipants {
		return denied(errors.ErrEventFull, "This event has no seats left")
	}

	// 4. Duplicate membership.
	active, err := s.ledger.GetActive(ctx, eventID, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to check participation", err)
	}
	if active != nil {
		return denied(errors.ErrAlreadyJoined, "You have already joined this event")
	}

	// 5. Gender filter.
	if event.GenderFilter != eventEntity.GenderFilterAll {
		gender, err := s.users.GetGender(ctx, userID)
		if err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "Failed to load profile", err)
		}
		if gender == "" {
			return denied(errors.ErrGenderNotSet, "Set the gender on your profile to join this event")
		}
		if gender != string(event.GenderFilter) {
			return denied(errors.ErrGenderMismatch, "This event is restricted to a different gender")
		}
	}

	if err := s.ledger.Join(ctx, eventID, userID); err != nil {
		switch err {
		case repository.ErrFull:
			return denied(errors.ErrEventFull, "This event has no seats left")
		case repository.ErrRejoined:
			return denied(errors.ErrAlreadyJoined, "You have already joined this event")
		case repository.ErrBanned:
			return denied(errors.ErrRemovedFromEvent, "You were removed from this event by the organizer")
		case repository.ErrContention:
			return errors.NewAppError(errors.ErrContention, "The event is busy, please try again", err)
		default:
			return errors.NewAppError(errors.ErrInternalServer, "Failed to join event", err)
		}
	}

	metrics.JoinsTotal.Inc()
	s.notifier.NotifyAsync(ctx, queue.NotificationPayload{
		UserID:  event.CreatorID,
		Kind:    queue.KindParticipantJoined,
		Title:   "New participant",
		Message: "Someone joined " + event.Title,
		Data:    map[string]any{"event_id": eventID.String(), "user_id": userID.String()},
	})

	logger.Info("AdmissionService:Join:Success", "event_id", eventID, "user_id", userID)
	return nil
}

// Leave releases the caller's seat. The organizer cannot leave their own
// event; organizer removal is the cancellation flow.
func (s *AdmissionService) Leave(ctx context.Context, eventID, userID uuid.UUID) *errors.AppError {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CreatorID == userID {
		return errors.NewAppError(errors.ErrForbidden,
			"The organizer cannot leave; cancel the event instead", nil)
	}

	if err := s.ledger.Leave(ctx, eventID, userID); err != nil {
		switch err {
		case repository.ErrNotJoined:
			return errors.NewAppError(errors.ErrNotAParticipant, "You are not a participant of this event", nil)
		case repository.ErrContention:
			return errors.NewAppError(errors.ErrContention, "The event is busy, please try again", err)
		default:
			return errors.NewAppError(errors.ErrInternalServer, "Failed to leave event", err)
		}
	}

	metrics.LeavesTotal.Inc()
	s.notifier.NotifyAsync(ctx, queue.NotificationPayload{
		UserID:  event.CreatorID,
		Kind:    queue.KindParticipantLeft,
		Title:   "Participant left",
		Message: "Someone left " + event.Title,
		Data:    map[string]any{"event_id": eventID.String(), "user_id": userID.String()},
	})

	logger.Info("AdmissionService:Leave:Success", "event_id", eventID, "user_id", userID)
	return nil
}

// RemoveParticipant lets the organizer remove a joined user; the row is
// kept with status banned.
func (s *AdmissionService) RemoveParticipant(ctx context.Context, eventID, organizerID, targetID uuid.UUID) *errors.AppError {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load event", err)
	}
	if event == nil {
		return errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CreatorID != organizerID {
		return errors.NewAppError(errors.ErrForbidden, "Only the organizer can remove participants", nil)
	}

	if err := s.ledger.Ban(ctx, eventID, targetID); err != nil {
		switch err {
		case repository.ErrNotJoined:
			return errors.NewAppError(errors.ErrNotAParticipant, "That user is not a participant of this event", nil)
		case repository.ErrContention:
			return errors.NewAppError(errors.ErrContention, "The event is busy, please try again", err)
		default:
			return errors.NewAppError(errors.ErrInternalServer, "Failed to remove participant", err)
		}
	}

	s.notifier.NotifyAsync(ctx, queue.NotificationPayload{
		UserID:  targetID,
		Kind:    queue.KindParticipantBanned,
		Title:   "Removed from event",
		Message: "You were removed from " + event.Title,
		Data:    map[string]any{"event_id": eventID.String()},
	})

	return nil
}

func (s *AdmissionService) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]entity.Participation, *errors.AppError) {
	participants, err := s.ledger.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list participants", err)
	}
	return participants, nil
}

func (s *AdmissionService) GetMyJoinedEvents(ctx context.Context, userID uuid.UUID) ([]eventDto.EventResponse, *errors.AppError) {
	events, err := s.ledger.ListJoinedEvents(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list joined events", err)
	}

	now := s.clock.Now()
	result := make([]eventDto.EventResponse, 0, len(events))
	for i := range events {
		e := &events[i]
		result = append(result, *eventDto.ToEventResponse(e,
			eventService.DeriveStatus(e, now),
			eventService.CanJoin(e, now),
			eventService.CanCancel(e, now)))
	}
	return result, nil
}
