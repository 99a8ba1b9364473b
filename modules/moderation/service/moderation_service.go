package service

import (
	"context"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/repository"

	"github.com/google/uuid"
)

const selfUnblockReason = "automatic expiry"

// ModerationService tracks user blocking state and appeals. It also backs
// the admission gate: both joining and creating events consult
// IsActivelyBlocked first.
type ModerationService struct {
	repo     repository.ModerationRepositoryInterface
	notifier queue.Notifier
	clock    clock.Clock
}

type ModerationServiceInterface interface {
	Block(ctx context.Context, userID uuid.UUID, reason string, until *time.Time) (*entity.Block, *errors.AppError)
	Unblock(ctx context.Context, userID uuid.UUID, actor, reason string) *errors.AppError
	SelfUnblock(ctx context.Context, userID uuid.UUID) *errors.AppError
	IsActivelyBlocked(ctx context.Context, userID uuid.UUID) (bool, *errors.AppError)
	GetMyBlock(ctx context.Context, userID uuid.UUID) (*entity.Block, *errors.AppError)
	ListBlocks(ctx context.Context, activeOnly bool) ([]entity.Block, *errors.AppError)

	SubmitAppeal(ctx context.Context, userID uuid.UUID, reason string) (*entity.Appeal, *errors.AppError)
	GetMyAppeals(ctx context.Context, userID uuid.UUID) ([]entity.Appeal, *errors.AppError)
	ListPendingAppeals(ctx context.Context) ([]entity.Appeal, *errors.AppError)
	ResolveAppeal(ctx context.Context, appealID, moderatorID uuid.UUID, approve bool) (*entity.Appeal, *errors.AppError)
}

func NewModerationService(repo repository.ModerationRepositoryInterface, notifier queue.Notifier, clk clock.Clock) ModerationServiceInterface {
	return &ModerationService{repo: repo, notifier: notifier, clock: clk}
}

// Block restricts a user, permanently when until is nil. Re-blocking an
// already actively blocked user is an error, not a silent extension.
func (s *ModerationService) Block(ctx context.Context, userID uuid.UUID, reason string, until *time.Time) (*entity.Block, *errors.AppError) {
	if reason == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "A block reason is required", nil)
	}
	now := s.clock.Now()
	if until != nil && !until.After(now) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "blocked_until must be in the future", nil)
	}

	existing, err := s.repo.GetActiveBlock(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check block state", err)
	}
	if existing != nil && existing.Active(now) {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "User already has an active block", nil)
	}
	if existing != nil {
		// An expired row the user never self-cleared; close it before
		// opening the new block.
		if _, err := s.repo.ClearBlock(ctx, existing.ID, entity.UnblockActorNone, selfUnblockReason, now); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to clear expired block", err)
		}
	}

	block, err := s.repo.CreateBlock(ctx, &entity.Block{
		UserID:       userID,
		IsBlocked:    true,
		BlockReason:  reason,
		BlockedAt:    now,
		BlockedUntil: until,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create block", err)
	}
	if block == nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "User already has an active block", nil)
	}

	s.notifier.NotifyAsync(ctx, queue.NotificationPayload{
		UserID:  userID,
		Kind:    queue.KindUserBlocked,
		Title:   "Account blocked",
		Message: reason,
		Data:    map[string]any{"block_id": block.ID.String()},
	})

	logger.Info("ModerationService:Block:Success", "user_id", userID, "block_id", block.ID, "until", until)
	return block, nil
}

// Unblock is the explicit moderator path. Historical fields are retained
// for audit.
func (s *ModerationService) Unblock(ctx context.Context, userID uuid.UUID, actor, reason string) *errors.AppError {
	block, err := s.repo.GetActiveBlock(ctx, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load block", err)
	}
	if block == nil {
		return errors.NewAppError(errors.ErrNoActiveBlock, "User has no active block", nil)
	}

	affected, err := s.repo.ClearBlock(ctx, block.ID, actor, reason, s.clock.Now())
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to unblock user", err)
	}
	if affected == 0 {
		return errors.NewAppError(errors.ErrNoActiveBlock, "User has no active block", nil)
	}

	logger.Info("ModerationService:Unblock:Success", "user_id", userID, "actor", actor)
	return nil
}

// SelfUnblock performs the one-click transition for a lazily expired
// temporary block. A repeat call after the row is cleared succeeds without
// effect.
func (s *ModerationService) SelfUnblock(ctx context.Context, userID uuid.UUID) *errors.AppError {
	block, err := s.repo.GetActiveBlock(ctx, userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load block", err)
	}
	if block == nil {
		// Already cleared; the action is idempotent.
		return nil
	}
	if !block.Expired(s.clock.Now()) {
		return errors.NewAppError(errors.ErrForbidden, "The block has not expired yet", nil)
	}

	if _, err := s.repo.ClearBlock(ctx, block.ID, entity.UnblockActorNone, selfUnblockReason, s.clock.Now()); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to unblock", err)
	}

	logger.Info("ModerationService:SelfUnblock:Success", "user_id", userID, "block_id", block.ID)
	return nil
}

// IsActivelyBlocked applies lazy expiry: a temporary block past its
// blocked_until no longer restricts the user even before self-unblock.
func (s *ModerationService) IsActivelyBlocked(ctx context.Context, userID uuid.UUID) (bool, *errors.AppError) {
	block, err := s.repo.GetActiveBlock(ctx, userID)
	if err != nil {
		return false, errors.NewAppError(errors.ErrInternalServer, "Failed to check block state", err)
	}
	return block != nil && block.Active(s.clock.Now()), nil
}

func (s *ModerationService) GetMyBlock(ctx context.Context, userID uuid.UUID) (*entity.Block, *errors.AppError) {
	block, err := s.repo.GetActiveBlock(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load block", err)
	}
	if block == nil {
		return nil, errors.NewAppError(errors.ErrNoActiveBlock, "You have no active block", nil)
	}
	return block, nil
}

func (s *ModerationService) ListBlocks(ctx context.Context, activeOnly bool) ([]entity.Block, *errors.AppError) {
	blocks, err := s.repo.ListBlocks(ctx, activeOnly)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list blocks", err)
	}
	return blocks, nil
}

// SubmitAppeal opens a pending appeal against the caller's active block.
func (s *ModerationService) SubmitAppeal(ctx context.Context, userID uuid.UUID, reason string) (*entity.Appeal, *errors.AppError) {
	if reason == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "An appeal reason is required", nil)
	}

	block, err := s.repo.GetActiveBlock(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load block", err)
	}
	if block == nil || !block.Active(s.clock.Now()) {
		return nil, errors.NewAppError(errors.ErrNoActiveBlock, "You have no active block to appeal", nil)
	}

	appeal, err := s.repo.CreateAppeal(ctx, &entity.Appeal{
		UserID:  userID,
		BlockID: block.ID,
		Reason:  reason,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to submit appeal", err)
	}
	if appeal == nil {
		return nil, errors.NewAppError(errors.ErrAppealAlreadyPending, "An appeal for this block is already pending", nil)
	}

	logger.Info("ModerationService:SubmitAppeal:Success", "user_id", userID, "appeal_id", appeal.ID)
	return appeal, nil
}

func (s *ModerationService) GetMyAppeals(ctx context.Context, userID uuid.UUID) ([]entity.Appeal, *errors.AppError) {
	appeals, err := s.repo.ListAppealsByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list appeals", err)
	}
	return appeals, nil
}

func (s *ModerationService) ListPendingAppeals(ctx context.Context) ([]entity.Appeal, *errors.AppError) {
	appeals, err := s.repo.ListPendingAppeals(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list appeals", err)
	}
	return appeals, nil
}

// ResolveAppeal finalizes a pending appeal. Approval unblocks the user
// with the moderator recorded as the actor.
func (s *ModerationService) ResolveAppeal(ctx context.Context, appealID, moderatorID uuid.UUID, approve bool) (*entity.Appeal, *errors.AppError) {
	appeal, err := s.repo.GetAppealByID(ctx, appealID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load appeal", err)
	}
	if appeal == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Appeal not found", nil)
	}

	status := entity.AppealRejected
	if approve {
		status = entity.AppealApproved
	}

	affected, err := s.repo.ResolveAppeal(ctx, appealID, status, moderatorID, s.clock.Now())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve appeal", err)
	}
	if affected == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Appeal is not pending", nil)
	}

	if approve {
		if _, err := s.repo.ClearBlock(ctx, appeal.BlockID, moderatorID.String(), "appeal approved", s.clock.Now()); err != nil {
			logger.Error("ModerationService:ResolveAppeal:Unblock", err)
		}
	}

	s.notifier.NotifyAsync(ctx, queue.NotificationPayload{
		UserID:  appeal.UserID,
		Kind:    queue.KindAppealResolved,
		Title:   "Appeal " + string(status),
		Message: "Your block appeal was " + string(status),
		Data:    map[string]any{"appeal_id": appeal.ID.String(), "status": string(status)},
	})

	resolved, err := s.repo.GetAppealByID(ctx, appealID)
	if err != nil || resolved == nil {
		appeal.Status = status
		return appeal, nil
	}
	return resolved, nil
}
