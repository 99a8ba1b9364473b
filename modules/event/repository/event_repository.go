package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/params"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"

	"github.com/google/uuid"
)

const eventColumns = `
	id, creator_id, title, description, slug, category, category_data,
	event_date, has_end_date, end_date,
	is_online, address, latitude, longitude, online_platform, online_link,
	max_participants, current_participants, gender_filter,
	status, cancellation_reason, parent_event_id, is_recurring_parent,
	cover_image_key, created_at, updated_at`

// EventRepository handles event table access. It never touches
// current_participants; that column belongs to the participation ledger.
type EventRepository struct {
	DB database.Database
}

func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{DB: db}
}

// ListFilter narrows ListEvents.
type ListFilter struct {
	Category string
	Status   string
}

type EventRepositoryInterface interface {
	CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	ListEvents(ctx context.Context, filter ListFilter, q params.QueryParams) ([]entity.Event, int, error)
	GetEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]entity.Event, error)
	UpdateEvent(ctx context.Context, event *entity.Event) error
	CancelEvent(ctx context.Context, id uuid.UUID, reason string) error
	SetCoverImage(ctx context.Context, id uuid.UUID, key string) error

	MarkRecurringParent(ctx context.Context, id uuid.UUID) error
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]entity.Event, error)
	GetChildStartDates(ctx context.Context, parentID uuid.UUID) ([]time.Time, error)

	SyncStatuses(ctx context.Context, now time.Time) (int64, error)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	query := `
		INSERT INTO events (
			creator_id, title, description, slug, category, category_data,
			event_date, has_end_date, end_date,
			is_online, address, latitude, longitude, online_platform, online_link,
			max_participants, current_participants, gender_filter,
			status, parent_event_id, is_recurring_parent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 0, $17, $18, $19, $20)
		RETURNING` + eventColumns

	var created entity.Event
	err := r.DB.GetContext(ctx, &created, query,
		event.CreatorID, event.Title, event.Description, event.Slug, event.Category, event.CategoryData,
		event.EventDate, event.HasEndDate, event.EndDate,
		event.IsOnline, event.Address, event.Latitude, event.Longitude, event.OnlinePlatform, event.OnlineLink,
		event.MaxParticipants, event.GenderFilter,
		event.Status, event.ParentEventID, event.IsRecurringParent)
	if err != nil {
		logger.Error("EventRepository:CreateEvent", err)
		return nil, err
	}

	return &created, nil
}

func (r *EventRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events WHERE id = $1`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByID", err)
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) ListEvents(ctx context.Context, filter ListFilter, q params.QueryParams) ([]entity.Event, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM events` + where
	if err := r.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		logger.Error("EventRepository:ListEvents:Count", err)
		return nil, 0, err
	}

	listQuery := `SELECT` + eventColumns + ` FROM events` + where +
		` ORDER BY event_date ASC LIMIT ` + strconv.Itoa(q.Limit) + ` OFFSET ` + strconv.Itoa(q.Offset())

	var events []entity.Event
	if err := r.DB.SelectContext(ctx, &events, listQuery, args...); err != nil {
		logger.Error("EventRepository:ListEvents", err)
		return nil, 0, err
	}

	return events, total, nil
}

func (r *EventRepository) GetEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]entity.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events WHERE creator_id = $1 ORDER BY event_date DESC`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, creatorID)
	if err != nil {
		logger.Error("EventRepository:GetEventsByCreator", err)
		return nil, err
	}

	return events, nil
}

func (r *EventRepository) UpdateEvent(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, category_data = $4,
		    event_date = $5, has_end_date = $6, end_date = $7,
		    is_online = $8, address = $9, latitude = $10, longitude = $11,
		    online_platform = $12, online_link = $13,
		    max_participants = $14, gender_filter = $15, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query,
		event.ID, event.Title, event.Description, event.CategoryData,
		event.EventDate, event.HasEndDate, event.EndDate,
		event.IsOnline, event.Address, event.Latitude, event.Longitude,
		event.OnlinePlatform, event.OnlineLink,
		event.MaxParticipants, event.GenderFilter)
	if err != nil {
		logger.Error("EventRepository:UpdateEvent", err)
		return err
	}

	return nil
}

// CancelEvent flips an event into the terminal cancelled state. Cancelled
// rows are never deleted.
func (r *EventRepository) CancelEvent(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE events
		SET status = $2, cancellation_reason = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query, id, entity.EventStatusCancelled, reason)
	if err != nil {
		logger.Error("EventRepository:CancelEvent", err)
		return err
	}

	return nil
}

func (r *EventRepository) SetCoverImage(ctx context.Context, id uuid.UUID, key string) error {
	query := `UPDATE events SET cover_image_key = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.DB.ExecContext(ctx, query, id, key)
	if err != nil {
		logger.Error("EventRepository:SetCoverImage", err)
		return err
	}

	return nil
}

func (r *EventRepository) MarkRecurringParent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET is_recurring_parent = TRUE, updated_at = NOW() WHERE id = $1`

	_, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("EventRepository:MarkRecurringParent", err)
		return err
	}

	return nil
}

func (r *EventRepository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]entity.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events WHERE parent_event_id = $1 ORDER BY event_date ASC`

	var events []entity.Event
	err := r.DB.SelectContext(ctx, &events, query, parentID)
	if err != nil {
		logger.Error("EventRepository:GetChildren", err)
		return nil, err
	}

	return events, nil
}

// GetChildStartDates returns the start timestamps of a parent's existing
// children; the expander uses it to skip already-created occurrences.
func (r *EventRepository) GetChildStartDates(ctx context.Context, parentID uuid.UUID) ([]time.Time, error) {
	query := `SELECT event_date FROM events WHERE parent_event_id = $1`

	var dates []time.Time
	err := r.DB.SelectContext(ctx, &dates, query, parentID)
	if err != nil {
		logger.Error("EventRepository:GetChildStartDates", err)
		return nil, err
	}

	return dates, nil
}

// SyncStatuses is the periodic back-fill that keeps stored statuses roughly
// in line with dates. Only default-state rows are touched; explicit states
// (including cancelled) are never overwritten.
func (r *EventRepository) SyncStatuses(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = NOW()
		WHERE status = $2
		  AND (
			(has_end_date = TRUE AND end_date < $3)
			OR (has_end_date = FALSE AND event_date < $4)
		  )
	`

	res, err := r.DB.ExecContext(ctx, query,
		entity.EventStatusCompleted, entity.EventStatusActive,
		now, now.Add(-time.Duration(constants.DefaultEventDurationHours)*time.Hour))
	if err != nil {
		logger.Error("EventRepository:SyncStatuses", err)
		return 0, err
	}

	affected, _ := res.RowsAffected()
	return affected, nil
}
