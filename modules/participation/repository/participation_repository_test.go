package repository

import (
	"context"
	"testing"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*ParticipationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewParticipationRepository(database.NewFromDB(db, "postgres")), mock
}

func TestJoinReservesSeatAndUpserts(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO event_participants`).
		WithArgs(eventID, userID, "joined", "left").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Join(context.Background(), eventID, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinFullEventRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	// The conditional increment touches zero rows when the event is at
	// capacity; nothing else runs in the transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Join(context.Background(), eventID, userID)
	assert.ErrorIs(t, err, ErrFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinAlreadyJoinedReleasesSeat(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	// The upsert's conditional DO UPDATE only matches left rows; the
	// follow-up status read tells joined from banned, and the seat
	// increment rolls back with the transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO event_participants`).
		WithArgs(eventID, userID, "joined", "left").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM event_participants`).
		WithArgs(eventID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("joined"))
	mock.ExpectRollback()

	err := repo.Join(context.Background(), eventID, userID)
	assert.ErrorIs(t, err, ErrRejoined)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinBannedRowStaysBanned(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO event_participants`).
		WithArgs(eventID, userID, "joined", "left").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM event_participants`).
		WithArgs(eventID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("banned"))
	mock.ExpectRollback()

	err := repo.Join(context.Background(), eventID, userID)
	assert.ErrorIs(t, err, ErrBanned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRetriesSerializationFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	serializationErr := &pq.Error{Code: "40001"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnError(serializationErr)
	mock.ExpectRollback()

	// Second attempt succeeds.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO event_participants`).
		WithArgs(eventID, userID, "joined", "left").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Join(context.Background(), eventID, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinContentionBudgetExhausted(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	deadlockErr := &pq.Error{Code: "40P01"}
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE events`).
			WithArgs(eventID).
			WillReturnError(deadlockErr)
		mock.ExpectRollback()
	}

	err := repo.Join(context.Background(), eventID, userID)
	assert.ErrorIs(t, err, ErrContention)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveFlipsRowAndDecrements(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE event_participants`).
		WithArgs(eventID, userID, "left", "joined").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE events`).
		WithArgs(eventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Leave(context.Background(), eventID, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveWithoutActiveRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE event_participants`).
		WithArgs(eventID, userID, "left", "joined").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Leave(context.Background(), eventID, userID)
	assert.ErrorIs(t, err, ErrNotJoined)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveNoRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	eventID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT event_id, user_id, status`).
		WithArgs(eventID, userID, "joined").
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "user_id", "status", "joined_at", "created_at"}))

	p, err := repo.GetActive(context.Background(), eventID, userID)
	require.NoError(t, err)
	assert.Nil(t, p)
}
