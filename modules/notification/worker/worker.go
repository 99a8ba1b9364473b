package worker

import (
	"context"
	"encoding/json"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ParticipantLister supplies the joined users of an event for the
// cancellation fan-out.
type ParticipantLister interface {
	ListJoinedUserIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
}

// StatusSyncer is the periodic status back-fill entry point.
type StatusSyncer interface {
	SyncStatuses(ctx context.Context) error
}

// Worker consumes the background task queues: notification delivery and
// the periodic event status sync.
type Worker struct {
	notifications service.NotificationServiceInterface
	participants  ParticipantLister
	events        StatusSyncer
}

func New(notifications service.NotificationServiceInterface, participants ParticipantLister, events StatusSyncer) *Worker {
	return &Worker{
		notifications: notifications,
		participants:  participants,
		events:        events,
	}
}

// Mux registers the task handlers.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskNotificationDeliver, w.HandleNotificationDeliver)
	mux.HandleFunc(constants.TaskEventSyncStatus, w.HandleEventSyncStatus)
	return mux
}

// HandleNotificationDeliver stores a notification row. Event cancellations
// fan out to every joined participant; all other kinds address a single
// user.
func (w *Worker) HandleNotificationDeliver(ctx context.Context, task *asynq.Task) error {
	var payload queue.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Worker:HandleNotificationDeliver:Unmarshal", err)
		return err
	}

	if payload.Kind != queue.KindEventCancelled {
		return w.notifications.Deliver(ctx, payload)
	}

	eventID, err := eventIDFromData(payload.Data)
	if err != nil {
		logger.Error("Worker:HandleNotificationDeliver:EventID", err)
		return err
	}

	userIDs, err := w.participants.ListJoinedUserIDs(ctx, eventID)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		fanned := payload
		fanned.UserID = userID
		if err := w.notifications.Deliver(ctx, fanned); err != nil {
			// Deliver what we can; asynq retries the task, and re-delivery
			// of already-stored rows is acceptable for in-app messages.
			logger.Error("Worker:HandleNotificationDeliver:FanOut", "error", err, "user_id", userID)
		}
	}

	logger.Info("Worker:HandleNotificationDeliver:FanOutDone", "event_id", eventID, "recipients", len(userIDs))
	return nil
}

func eventIDFromData(data map[string]any) (uuid.UUID, error) {
	raw, _ := data["event_id"].(string)
	return uuid.Parse(raw)
}

func (w *Worker) HandleEventSyncStatus(ctx context.Context, task *asynq.Task) error {
	return w.events.SyncStatuses(ctx)
}
