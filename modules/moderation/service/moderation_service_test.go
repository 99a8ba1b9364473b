package service

import (
	"context"
	"testing"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	appErrors "github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModerationRepo struct {
	blocks  map[uuid.UUID]*entity.Block // keyed by block ID
	appeals map[uuid.UUID]*entity.Appeal
}

func newFakeModerationRepo() *fakeModerationRepo {
	return &fakeModerationRepo{
		blocks:  map[uuid.UUID]*entity.Block{},
		appeals: map[uuid.UUID]*entity.Appeal{},
	}
}

func (f *fakeModerationRepo) GetActiveBlock(ctx context.Context, userID uuid.UUID) (*entity.Block, error) {
	for _, b := range f.blocks {
		if b.UserID == userID && b.IsBlocked {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeModerationRepo) GetBlockByID(ctx context.Context, id uuid.UUID) (*entity.Block, error) {
	b, ok := f.blocks[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeModerationRepo) CreateBlock(ctx context.Context, block *entity.Block) (*entity.Block, error) {
	if existing, _ := f.GetActiveBlock(ctx, block.UserID); existing != nil {
		return nil, nil
	}
	copied := *block
	copied.ID = uuid.New()
	f.blocks[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeModerationRepo) ClearBlock(ctx context.Context, blockID uuid.UUID, actor, reason string, at time.Time) (int64, error) {
	b, ok := f.blocks[blockID]
	if !ok || !b.IsBlocked {
		return 0, nil
	}
	b.IsBlocked = false
	b.UnblockedAt = &at
	b.UnblockedBy = &actor
	b.UnblockReason = &reason
	return 1, nil
}

func (f *fakeModerationRepo) ListBlocks(ctx context.Context, activeOnly bool) ([]entity.Block, error) {
	var out []entity.Block
	for _, b := range f.blocks {
		if !activeOnly || b.IsBlocked {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeModerationRepo) CreateAppeal(ctx context.Context, appeal *entity.Appeal) (*entity.Appeal, error) {
	if pending, _ := f.GetPendingAppeal(ctx, appeal.UserID, appeal.BlockID); pending != nil {
		return nil, nil
	}
	copied := *appeal
	copied.ID = uuid.New()
	copied.Status = entity.AppealPending
	f.appeals[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeModerationRepo) GetPendingAppeal(ctx context.Context, userID, blockID uuid.UUID) (*entity.Appeal, error) {
	for _, a := range f.appeals {
		if a.UserID == userID && a.BlockID == blockID && a.Status == entity.AppealPending {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeModerationRepo) GetAppealByID(ctx context.Context, id uuid.UUID) (*entity.Appeal, error) {
	a, ok := f.appeals[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakeModerationRepo) ListAppealsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Appeal, error) {
	var out []entity.Appeal
	for _, a := range f.appeals {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeModerationRepo) ListPendingAppeals(ctx context.Context) ([]entity.Appeal, error) {
	var out []entity.Appeal
	for _, a := range f.appeals {
		if a.Status == entity.AppealPending {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeModerationRepo) ResolveAppeal(ctx context.Context, id uuid.UUID, status entity.AppealStatus, resolvedBy uuid.UUID, at time.Time) (int64, error) {
	a, ok := f.appeals[id]
	if !ok || a.Status != entity.AppealPending {
		return 0, nil
	}
	a.Status = status
	a.ResolvedAt = &at
	a.ResolvedBy = &resolvedBy
	return 1, nil
}

type silentNotifier struct{}

func (silentNotifier) NotifyAsync(ctx context.Context, p queue.NotificationPayload) {}

var moderationNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newModerationFixture() (ModerationServiceInterface, *fakeModerationRepo, *clock.Fixed) {
	repo := newFakeModerationRepo()
	clk := clock.NewFixed(moderationNow)
	return NewModerationService(repo, silentNotifier{}, clk), repo, clk
}

func TestBlockThenReBlockRejected(t *testing.T) {
	svc, _, _ := newModerationFixture()
	userID := uuid.New()

	block, appErr := svc.Block(context.Background(), userID, "spam", nil)
	require.Nil(t, appErr)
	assert.True(t, block.IsBlocked)
	assert.Nil(t, block.BlockedUntil)

	// Re-blocking an actively blocked user is an error, not an extension.
	_, appErr = svc.Block(context.Background(), userID, "more spam", nil)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrAlreadyExists, appErr.Code)
}

func TestLazyExpiryReportedWithoutUnblock(t *testing.T) {
	svc, _, clk := newModerationFixture()
	userID := uuid.New()

	until := moderationNow.Add(1 * time.Hour)
	_, appErr := svc.Block(context.Background(), userID, "cooldown", &until)
	require.Nil(t, appErr)

	blocked, appErr := svc.IsActivelyBlocked(context.Background(), userID)
	require.Nil(t, appErr)
	assert.True(t, blocked)

	// Past the expiry, readers treat the block as gone even though the
	// row still says is_blocked.
	clk.T = until.Add(time.Minute)
	blocked, appErr = svc.IsActivelyBlocked(context.Background(), userID)
	require.Nil(t, appErr)
	assert.False(t, blocked)
}

func TestSelfUnblockOnlyAfterExpiryAndIdempotent(t *testing.T) {
	svc, repo, clk := newModerationFixture()
	userID := uuid.New()

	until := moderationNow.Add(1 * time.Hour)
	block, appErr := svc.Block(context.Background(), userID, "cooldown", &until)
	require.Nil(t, appErr)

	// Too early: the block is still running.
	appErr = svc.SelfUnblock(context.Background(), userID)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden, appErr.Code)

	clk.T = until.Add(time.Minute)
	require.Nil(t, svc.SelfUnblock(context.Background(), userID))

	stored := repo.blocks[block.ID]
	assert.False(t, stored.IsBlocked)
	require.NotNil(t, stored.UnblockedBy)
	assert.Equal(t, entity.UnblockActorNone, *stored.UnblockedBy)

	// A repeat call is a no-op success.
	require.Nil(t, svc.SelfUnblock(context.Background(), userID))
}

func TestModeratorUnblockKeepsAudit(t *testing.T) {
	svc, repo, _ := newModerationFixture()
	userID := uuid.New()

	block, appErr := svc.Block(context.Background(), userID, "harassment", nil)
	require.Nil(t, appErr)

	require.Nil(t, svc.Unblock(context.Background(), userID, "moderator-7", "appeal upheld"))

	stored := repo.blocks[block.ID]
	assert.False(t, stored.IsBlocked)
	assert.Equal(t, "harassment", stored.BlockReason)
	require.NotNil(t, stored.UnblockReason)
	assert.Equal(t, "appeal upheld", *stored.UnblockReason)

	appErr = svc.Unblock(context.Background(), userID, "moderator-7", "again")
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNoActiveBlock, appErr.Code)
}

func TestSubmitAppealRequiresActiveBlock(t *testing.T) {
	svc, _, _ := newModerationFixture()

	_, appErr := svc.SubmitAppeal(context.Background(), uuid.New(), "I did nothing")
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNoActiveBlock, appErr.Code)
}

func TestSecondPendingAppealRejected(t *testing.T) {
	svc, _, _ := newModerationFixture()
	userID := uuid.New()

	_, appErr := svc.Block(context.Background(), userID, "spam", nil)
	require.Nil(t, appErr)

	first, appErr := svc.SubmitAppeal(context.Background(), userID, "please reconsider")
	require.Nil(t, appErr)
	assert.Equal(t, entity.AppealPending, first.Status)

	_, appErr = svc.SubmitAppeal(context.Background(), userID, "still waiting")
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrAppealAlreadyPending, appErr.Code)
}

func TestResolvedAppealAllowsNewOne(t *testing.T) {
	svc, _, _ := newModerationFixture()
	userID := uuid.New()
	moderatorID := uuid.New()

	_, appErr := svc.Block(context.Background(), userID, "spam", nil)
	require.Nil(t, appErr)

	first, appErr := svc.SubmitAppeal(context.Background(), userID, "please reconsider")
	require.Nil(t, appErr)

	resolved, appErr := svc.ResolveAppeal(context.Background(), first.ID, moderatorID, false)
	require.Nil(t, appErr)
	assert.Equal(t, entity.AppealRejected, resolved.Status)

	// Rejection leaves the block active, so a fresh appeal may open.
	second, appErr := svc.SubmitAppeal(context.Background(), userID, "new evidence")
	require.Nil(t, appErr)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestApprovedAppealUnblocks(t *testing.T) {
	svc, _, _ := newModerationFixture()
	userID := uuid.New()
	moderatorID := uuid.New()

	_, appErr := svc.Block(context.Background(), userID, "spam", nil)
	require.Nil(t, appErr)

	appeal, appErr := svc.SubmitAppeal(context.Background(), userID, "mistake")
	require.Nil(t, appErr)

	resolved, appErr := svc.ResolveAppeal(context.Background(), appeal.ID, moderatorID, true)
	require.Nil(t, appErr)
	assert.Equal(t, entity.AppealApproved, resolved.Status)

	blocked, appErr := svc.IsActivelyBlocked(context.Background(), userID)
	require.Nil(t, appErr)
	assert.False(t, blocked)

	// Double resolution of the same appeal is rejected.
	_, appErr = svc.ResolveAppeal(context.Background(), appeal.ID, moderatorID, true)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidInput, appErr.Code)
}
