package queue

import (
	"context"
	"encoding/json"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Notification kinds carried in NotificationPayload.Kind.
const (
	KindParticipantJoined = "participant_joined"
	KindParticipantLeft   = "participant_left"
	KindParticipantBanned = "participant_banned"
	KindEventCancelled    = "event_cancelled"
	KindAppealResolved    = "appeal_resolved"
	KindUserBlocked       = "user_blocked"
)

// NotificationPayload is the body of a notification:deliver task.
type NotificationPayload struct {
	UserID  uuid.UUID      `json:"user_id"`
	Kind    string         `json:"kind"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notifier is the fire-and-forget notification boundary. Implementations
// must never block the caller on delivery and must swallow enqueue errors;
// a failing notification channel must not fail a join or cancel.
type Notifier interface {
	NotifyAsync(ctx context.Context, p NotificationPayload)
}

// Client wraps an asynq client as a Notifier.
type Client struct {
	inner *asynq.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) asynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

func NewClient(cfg RedisConfig) *Client {
	return &Client{inner: asynq.NewClient(cfg.asynqOpt())}
}

func (c *Client) NotifyAsync(ctx context.Context, p NotificationPayload) {
	raw, err := json.Marshal(p)
	if err != nil {
		logger.Error("Queue:NotifyAsync:Marshal", "error", err, "kind", p.Kind)
		return
	}
	task := asynq.NewTask(constants.TaskNotificationDeliver, raw)
	if _, err := c.inner.EnqueueContext(ctx, task, asynq.Queue(constants.QueueNotifications)); err != nil {
		logger.Error("Queue:NotifyAsync:Enqueue", "error", err, "kind", p.Kind, "user_id", p.UserID)
	}
}

func (c *Client) Close() error {
	return c.inner.Close()
}

// NewServer builds the asynq worker that runs inside the API process.
func NewServer(cfg RedisConfig) *asynq.Server {
	return asynq.NewServer(cfg.asynqOpt(), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			constants.QueueNotifications: 3,
			constants.QueueDefault:       1,
		},
	})
}

// NewScheduler registers the periodic jobs. event:sync_status keeps stored
// event statuses roughly in line with their dates so readers can trust
// explicit non-default values.
func NewScheduler(cfg RedisConfig) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(cfg.asynqOpt(), nil)
	_, err := scheduler.Register("*/10 * * * *",
		asynq.NewTask(constants.TaskEventSyncStatus, nil),
		asynq.Queue(constants.QueueDefault))
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}
