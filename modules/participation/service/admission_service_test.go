package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	appErrors "github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	eventEntity "github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger mirrors the real ledger's semantics: the capacity check and
// counter increment happen under one lock, so concurrent joins for the last
// seat cannot both win.
type fakeLedger struct {
	mu     sync.Mutex
	events map[uuid.UUID]*eventEntity.Event
	rows   map[[2]uuid.UUID]*entity.Participation
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		events: map[uuid.UUID]*eventEntity.Event{},
		rows:   map[[2]uuid.UUID]*entity.Participation{},
	}
}

func (f *fakeLedger) key(eventID, userID uuid.UUID) [2]uuid.UUID {
	return [2]uuid.UUID{eventID, userID}
}

func (f *fakeLedger) Join(ctx context.Context, eventID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := f.events[eventID]
	if e.CurrentParticipants >= e.MaxParticipants {
		return repository.ErrFull
	}
	if row, ok := f.rows[f.key(eventID, userID)]; ok {
		switch row.Status {
		case entity.ParticipationStatusJoined:
			return repository.ErrRejoined
		case entity.ParticipationStatusBanned:
			return repository.ErrBanned
		}
	}
	e.CurrentParticipants++
	f.rows[f.key(eventID, userID)] = &entity.Participation{
		EventID:  eventID,
		UserID:   userID,
		Status:   entity.ParticipationStatusJoined,
		JoinedAt: time.Now(),
	}
	return nil
}

func (f *fakeLedger) Leave(ctx context.Context, eventID, userID uuid.UUID) error {
	return f.flip(eventID, userID, entity.ParticipationStatusLeft)
}

func (f *fakeLedger) Ban(ctx context.Context, eventID, userID uuid.UUID) error {
	return f.flip(eventID, userID, entity.ParticipationStatusBanned)
}

func (f *fakeLedger) flip(eventID, userID uuid.UUID, to entity.ParticipationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[f.key(eventID, userID)]
	if !ok || row.Status != entity.ParticipationStatusJoined {
		return repository.ErrNotJoined
	}
	row.Status = to
	e := f.events[eventID]
	if e.CurrentParticipants > 0 {
		e.CurrentParticipants--
	}
	return nil
}

func (f *fakeLedger) GetActive(ctx context.Context, eventID, userID uuid.UUID) (*entity.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[f.key(eventID, userID)]
	if !ok || row.Status != entity.ParticipationStatusJoined {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeLedger) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.Participation
	for _, row := range f.rows {
		if row.EventID == eventID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListJoinedUserIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	rows, _ := f.ListByEvent(ctx, eventID)
	for _, row := range rows {
		if row.Status == entity.ParticipationStatusJoined {
			out = append(out, row.UserID)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []eventEntity.Event
	for _, row := range f.rows {
		if row.UserID == userID && row.Status == entity.ParticipationStatusJoined {
			out = append(out, *f.events[row.EventID])
		}
	}
	return out, nil
}

// GetEventByID satisfies EventGetter off the same in-memory state.
func (f *fakeLedger) GetEventByID(ctx context.Context, id uuid.UUID) (*eventEntity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

type fakeBlockGate struct {
	blocked map[uuid.UUID]bool
}

func (f *fakeBlockGate) IsActivelyBlocked(ctx context.Context, userID uuid.UUID) (bool, *appErrors.AppError) {
	return f.blocked[userID], nil
}

type fakeGenders struct {
	genders map[uuid.UUID]string
}

func (f *fakeGenders) GetGender(ctx context.Context, userID uuid.UUID) (string, error) {
	return f.genders[userID], nil
}

type captureNotifier struct {
	mu       sync.Mutex
	payloads []queue.NotificationPayload
}

func (c *captureNotifier) NotifyAsync(ctx context.Context, p queue.NotificationPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, p)
}

type admissionFixture struct {
	svc      AdmissionServiceInterface
	ledger   *fakeLedger
	blocks   *fakeBlockGate
	genders  *fakeGenders
	notifier *captureNotifier
	now      time.Time
}

func newAdmissionFixture() *admissionFixture {
	ledger := newFakeLedger()
	blocks := &fakeBlockGate{blocked: map[uuid.UUID]bool{}}
	genders := &fakeGenders{genders: map[uuid.UUID]string{}}
	notifier := &captureNotifier{}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	return &admissionFixture{
		svc:      NewAdmissionService(ledger, ledger, blocks, genders, notifier, clock.NewFixed(now)),
		ledger:   ledger,
		blocks:   blocks,
		genders:  genders,
		notifier: notifier,
		now:      now,
	}
}

func (fx *admissionFixture) addEvent(capacity int, filter eventEntity.GenderFilter) *eventEntity.Event {
	e := &eventEntity.Event{
		CreatorID:       uuid.New(),
		Title:           "Morning Run",
		EventDate:       fx.now.Add(24 * time.Hour),
		MaxParticipants: capacity,
		GenderFilter:    filter,
		Status:          eventEntity.EventStatusActive,
	}
	e.ID = uuid.New()
	fx.ledger.events[e.ID] = e
	return e
}

func TestJoinSuccessNotifiesOrganizer(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(5, eventEntity.GenderFilterAll)
	userID := uuid.New()

	require.Nil(t, fx.svc.Join(context.Background(), e.ID, userID))
	assert.Equal(t, 1, fx.ledger.events[e.ID].CurrentParticipants)

	require.Len(t, fx.notifier.payloads, 1)
	assert.Equal(t, queue.KindParticipantJoined, fx.notifier.payloads[0].Kind)
	assert.Equal(t, e.CreatorID, fx.notifier.payloads[0].UserID)
}

func TestJoinBlockedUserDenied(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(5, eventEntity.GenderFilterAll)
	userID := uuid.New()
	fx.blocks.blocked[userID] = true

	appErr := fx.svc.Join(context.Background(), e.ID, userID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrUserBlocked, appErr.Code)
	assert.Equal(t, 0, fx.ledger.events[e.ID].CurrentParticipants)
}

func TestJoinCompletedEventDenied(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(5, eventEntity.GenderFilterAll)
	e.EventDate = fx.now.Add(-48 * time.Hour) // past the one-day cutoff

	appErr := fx.svc.Join(context.Background(), e.ID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrEventNotJoinable, appErr.Code)
}

func TestJoinDuplicateDenied(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(5, eventEntity.GenderFilterAll)
	userID := uuid.New()

	require.Nil(t, fx.svc.Join(context.Background(), e.ID, userID))

	appErr := fx.svc.Join(context.Background(), e.ID, userID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrAlreadyJoined, appErr.Code)
	// The counter did not move on the failed second attempt.
	assert.Equal(t, 1, fx.ledger.events[e.ID].CurrentParticipants)
}

func TestJoinGenderChecks(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(5, eventEntity.GenderFilterFemale)

	// Unset gender fails with its own code so clients can prompt for it.
	unset := uuid.New()
	appErr := fx.svc.Join(context.Background(), e.ID, unset)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrGenderNotSet, appErr.Code)

	mismatched := uuid.New()
	fx.genders.genders[mismatched] = "male"
	appErr = fx.svc.Join(context.Background(), e.ID, mismatched)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrGenderMismatch, appErr.Code)

	matching := uuid.New()
	fx.genders.genders[matching] = "female"
	assert.Nil(t, fx.svc.Join(context.Background(), e.ID, matching))
}

func TestJoinLastSeatRaceHasOneWinner(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(1, eventEntity.GenderFilterAll)

	const contenders = 16
	results := make(chan *appErrors.AppError, contenders)

	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- fx.svc.Join(context.Background(), e.ID, uuid.New())
		}()
	}
	wg.Wait()
	close(results)

	wins, fulls := 0, 0
	for appErr := range results {
		if appErr == nil {
			wins++
		} else if appErr.Code == appErrors.ErrEventFull {
			fulls++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, contenders-1, fulls)
	assert.Equal(t, 1, fx.ledger.events[e.ID].CurrentParticipants)
}

func TestLeaveThenRejoinRestoresEligibility(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(2, eventEntity.GenderFilterAll)
	userID := uuid.New()

	require.Nil(t, fx.svc.Join(context.Background(), e.ID, userID))
	require.Nil(t, fx.svc.Leave(context.Background(), e.ID, userID))
	assert.Equal(t, 0, fx.ledger.events[e.ID].CurrentParticipants)

	// Rejoining counts the user exactly once.
	require.Nil(t, fx.svc.Join(context.Background(), e.ID, userID))
	assert.Equal(t, 1, fx.ledger.events[e.ID].CurrentParticipants)
}

func TestLeaveNotAParticipant(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(2, eventEntity.GenderFilterAll)

	appErr := fx.svc.Leave(context.Background(), e.ID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotAParticipant, appErr.Code)
}

func TestOrganizerCannotLeave(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(2, eventEntity.GenderFilterAll)

	appErr := fx.svc.Leave(context.Background(), e.ID, e.CreatorID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden, appErr.Code)
}

func TestRemoveParticipantOrganizerOnly(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(3, eventEntity.GenderFilterAll)
	userID := uuid.New()
	require.Nil(t, fx.svc.Join(context.Background(), e.ID, userID))

	appErr := fx.svc.RemoveParticipant(context.Background(), e.ID, uuid.New(), userID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden, appErr.Code)

	require.Nil(t, fx.svc.RemoveParticipant(context.Background(), e.ID, e.CreatorID, userID))
	assert.Equal(t, 0, fx.ledger.events[e.ID].CurrentParticipants)

	// The banned row stays; the user is no longer active.
	active, err := fx.ledger.GetActive(context.Background(), e.ID, userID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestRemovedParticipantCannotRejoin(t *testing.T) {
	fx := newAdmissionFixture()
	e := fx.addEvent(3, eventEntity.GenderFilterAll)
	userID := uuid.New()

	require.Nil(t, fx.svc.Join(context.Background(), e.ID, userID))
	require.Nil(t, fx.svc.RemoveParticipant(context.Background(), e.ID, e.CreatorID, userID))

	appErr := fx.svc.Join(context.Background(), e.ID, userID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrRemovedFromEvent, appErr.Code)
	assert.Equal(t, 0, fx.ledger.events[e.ID].CurrentParticipants)
	assert.Equal(t, entity.ParticipationStatusBanned, fx.ledger.rows[fx.ledger.key(e.ID, userID)].Status)

	// Leaving after ban also yields a clean non-participant outcome.
	appErr = fx.svc.Leave(context.Background(), e.ID, userID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotAParticipant, appErr.Code)
}
