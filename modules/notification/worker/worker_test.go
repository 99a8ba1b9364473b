package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/params"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliveries struct {
	delivered []queue.NotificationPayload
}

func (r *recordingDeliveries) Deliver(ctx context.Context, p queue.NotificationPayload) error {
	r.delivered = append(r.delivered, p)
	return nil
}

func (r *recordingDeliveries) GetMyNotifications(ctx context.Context, userID uuid.UUID, q params.QueryParams) (*entity.PaginatedNotifications, *errors.AppError) {
	return &entity.PaginatedNotifications{}, nil
}

func (r *recordingDeliveries) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError {
	return nil
}

func (r *recordingDeliveries) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	return nil
}

func (r *recordingDeliveries) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	return 0, nil
}

type staticParticipants struct {
	ids []uuid.UUID
}

func (s staticParticipants) ListJoinedUserIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, nil
}

type countingSyncer struct{ calls int }

func (c *countingSyncer) SyncStatuses(ctx context.Context) error {
	c.calls++
	return nil
}

func deliverTask(t *testing.T, p queue.NotificationPayload) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(constants.TaskNotificationDeliver, raw)
}

func TestDeliverSingleRecipient(t *testing.T) {
	sink := &recordingDeliveries{}
	w := New(sink, staticParticipants{}, &countingSyncer{})

	userID := uuid.New()
	task := deliverTask(t, queue.NotificationPayload{
		UserID: userID,
		Kind:   queue.KindParticipantJoined,
		Title:  "New participant",
	})

	require.NoError(t, w.HandleNotificationDeliver(context.Background(), task))
	require.Len(t, sink.delivered, 1)
	assert.Equal(t, userID, sink.delivered[0].UserID)
}

func TestCancellationFansOutToParticipants(t *testing.T) {
	participants := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	sink := &recordingDeliveries{}
	w := New(sink, staticParticipants{ids: participants}, &countingSyncer{})

	eventID := uuid.New()
	task := deliverTask(t, queue.NotificationPayload{
		Kind:    queue.KindEventCancelled,
		Title:   "Event cancelled",
		Message: "Morning Run was cancelled: rain",
		Data:    map[string]any{"event_id": eventID.String()},
	})

	require.NoError(t, w.HandleNotificationDeliver(context.Background(), task))
	require.Len(t, sink.delivered, len(participants))

	seen := map[uuid.UUID]bool{}
	for _, p := range sink.delivered {
		assert.Equal(t, queue.KindEventCancelled, p.Kind)
		seen[p.UserID] = true
	}
	for _, id := range participants {
		assert.True(t, seen[id])
	}
}

func TestCancellationWithoutEventIDFails(t *testing.T) {
	sink := &recordingDeliveries{}
	w := New(sink, staticParticipants{}, &countingSyncer{})

	task := deliverTask(t, queue.NotificationPayload{Kind: queue.KindEventCancelled})
	assert.Error(t, w.HandleNotificationDeliver(context.Background(), task))
	assert.Empty(t, sink.delivered)
}

func TestSyncStatusTaskInvokesSyncer(t *testing.T) {
	syncer := &countingSyncer{}
	w := New(&recordingDeliveries{}, staticParticipants{}, syncer)

	task := asynq.NewTask(constants.TaskEventSyncStatus, nil)
	require.NoError(t, w.HandleEventSyncStatus(context.Background(), task))
	assert.Equal(t, 1, syncer.calls)
}
