package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/metrics"
	eventEntity "github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Ledger outcomes. The service layer maps these onto user-facing errors.
var (
	ErrFull       = errors.New("event is at capacity")
	ErrNotJoined  = errors.New("no active participation row")
	ErrRejoined   = errors.New("participation row already joined")
	ErrBanned     = errors.New("participation row is banned")
	ErrContention = errors.New("ledger contention not resolved within retry budget")
)

// ParticipationRepository is the participation ledger: the only component
// that mutates current_participants. The counter update and the capacity
// check happen in a single conditional UPDATE inside one transaction, so
// two concurrent joins for the last seat cannot both succeed.
type ParticipationRepository struct {
	DB database.Database
}

func NewParticipationRepository(db database.Database) *ParticipationRepository {
	return &ParticipationRepository{DB: db}
}

type ParticipationRepositoryInterface interface {
	Join(ctx context.Context, eventID, userID uuid.UUID) error
	Leave(ctx context.Context, eventID, userID uuid.UUID) error
	Ban(ctx context.Context, eventID, userID uuid.UUID) error
	GetActive(ctx context.Context, eventID, userID uuid.UUID) (*entity.Participation, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.Participation, error)
	ListJoinedUserIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]eventEntity.Event, error)
}

const incrementSQL = `
	UPDATE events
	SET current_participants = current_participants + 1, updated_at = NOW()
	WHERE id = $1 AND current_participants < max_participants`

const decrementSQL = `
	UPDATE events
	SET current_participants = GREATEST(current_participants - 1, 0), updated_at = NOW()
	WHERE id = $1`

const upsertJoinedSQL = `
	INSERT INTO event_participants (event_id, user_id, status, joined_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (event_id, user_id)
	DO UPDATE SET status = $3, joined_at = NOW()
	WHERE event_participants.status = $4`

const conflictStatusSQL = `
	SELECT status FROM event_participants
	WHERE event_id = $1 AND user_id = $2`

const flipStatusSQL = `
	UPDATE event_participants
	SET status = $3
	WHERE event_id = $1 AND user_id = $2 AND status = $4`

// retriable reports whether a Postgres error is worth retrying locally
// (serialization failure or deadlock).
func retriable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// withRetry runs fn in a transaction, retrying contention failures a
// bounded number of times before surfacing ErrContention. Domain outcomes
// (ErrFull etc.) are never retried.
func (r *ParticipationRepository) withRetry(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < constants.LedgerMaxRetries; attempt++ {
		tx, err := r.DB.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}

		err = fn(tx)
		if err == nil {
			if err = tx.Commit(); err == nil {
				return nil
			}
		}
		_ = tx.Rollback()

		if !retriable(err) {
			return err
		}
		lastErr = err
		metrics.LedgerRetriesTotal.Inc()
		logger.Warn("ParticipationRepository:Retry", "attempt", attempt+1, "error", err)
	}

	logger.Error("ParticipationRepository:ContentionExhausted", "error", lastErr)
	return ErrContention
}

// Join atomically reserves a seat and upserts the membership row. Exactly
// one of two concurrent joins for the last seat wins; the other observes
// ErrFull. Only absent or left rows can become joined: a banned row stays
// banned and yields ErrBanned.
func (r *ParticipationRepository) Join(ctx context.Context, eventID, userID uuid.UUID) error {
	return r.withRetry(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, incrementSQL, eventID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrFull
		}

		res, err = tx.ExecContext(ctx, upsertJoinedSQL, eventID, userID,
			entity.ParticipationStatusJoined, entity.ParticipationStatusLeft)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Row exists and is not left; the seat reservation rolls back
			// with the transaction. Read the row to tell joined from banned.
			var status entity.ParticipationStatus
			if err := tx.GetContext(ctx, &status, conflictStatusSQL, eventID, userID); err != nil {
				return err
			}
			if status == entity.ParticipationStatusBanned {
				return ErrBanned
			}
			return ErrRejoined
		}
		return nil
	})
}

// Leave flips the active row to left and releases the seat. The decrement
// is clamped at zero as a defensive floor.
func (r *ParticipationRepository) Leave(ctx context.Context, eventID, userID uuid.UUID) error {
	return r.flipAndRelease(ctx, eventID, userID, entity.ParticipationStatusLeft)
}

// Ban is the organizer-removal path; it releases the seat and marks the row
// banned so the user shows up in moderation history.
func (r *ParticipationRepository) Ban(ctx context.Context, eventID, userID uuid.UUID) error {
	return r.flipAndRelease(ctx, eventID, userID, entity.ParticipationStatusBanned)
}

func (r *ParticipationRepository) flipAndRelease(ctx context.Context, eventID, userID uuid.UUID, to entity.ParticipationStatus) error {
	return r.withRetry(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, flipStatusSQL, eventID, userID, to, entity.ParticipationStatusJoined)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotJoined
		}

		_, err = tx.ExecContext(ctx, decrementSQL, eventID)
		return err
	})
}

func (r *ParticipationRepository) GetActive(ctx context.Context, eventID, userID uuid.UUID) (*entity.Participation, error) {
	query := `
		SELECT event_id, user_id, status, joined_at, created_at
		FROM event_participants
		WHERE event_id = $1 AND user_id = $2 AND status = $3
	`

	var p entity.Participation
	err := r.DB.GetContext(ctx, &p, query, eventID, userID, entity.ParticipationStatusJoined)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ParticipationRepository:GetActive", err)
		return nil, err
	}

	return &p, nil
}

func (r *ParticipationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.Participation, error) {
	query := `
		SELECT event_id, user_id, status, joined_at, created_at
		FROM event_participants
		WHERE event_id = $1 AND status = $2
		ORDER BY joined_at
	`

	var participants []entity.Participation
	err := r.DB.SelectContext(ctx, &participants, query, eventID, entity.ParticipationStatusJoined)
	if err != nil {
		logger.Error("ParticipationRepository:ListByEvent", err)
		return nil, err
	}

	return participants, nil
}

func (r *ParticipationRepository) ListJoinedUserIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id FROM event_participants
		WHERE event_id = $1 AND status = $2
	`

	var ids []uuid.UUID
	err := r.DB.SelectContext(ctx, &ids, query, eventID, entity.ParticipationStatusJoined)
	if err != nil {
		logger.Error("ParticipationRepository:ListJoinedUserIDs", err)
		return nil, err
	}

	return ids, nil
}

func (r *ParticipationRepository) ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]eventEntity.Event, error) {
	query := `
		SELECT e.id, e.creator_id, e.title, e.description, e.slug, e.category, e.category_data,
		       e.event_date, e.has_end_date, e.end_date,
		       e.is_online, e.address, e.latitude, e.longitude, e.online_platform, e.online_link,
		       e.max_participants, e.current_participants, e.gender_filter,
		       e.status, e.cancellation_reason, e.parent_event_id, e.is_recurring_parent,
		       e.cover_image_key, e.created_at, e.updated_at
		FROM events e
		JOIN event_participants p ON p.event_id = e.id
		WHERE p.user_id = $1 AND p.status = $2
		ORDER BY e.event_date ASC
	`

	var events []eventEntity.Event
	err := r.DB.SelectContext(ctx, &events, query, userID, entity.ParticipationStatusJoined)
	if err != nil {
		logger.Error("ParticipationRepository:ListJoinedEvents", err)
		return nil, err
	}

	return events, nil
}
