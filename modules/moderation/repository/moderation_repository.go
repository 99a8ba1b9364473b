package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const blockColumns = `
	id, user_id, is_blocked, block_reason, blocked_at, blocked_until,
	unblocked_at, unblocked_by, unblock_reason, created_at, updated_at`

const appealColumns = `
	id, user_id, block_id, reason, status, resolved_at, resolved_by,
	created_at, updated_at`

// ModerationRepository stores blocks and appeals. The uniqueness
// invariants (one active block per user, one pending appeal per block) are
// enforced inside transactions here, not left to callers.
type ModerationRepository struct {
	DB database.Database
}

func NewModerationRepository(db database.Database) *ModerationRepository {
	return &ModerationRepository{DB: db}
}

type ModerationRepositoryInterface interface {
	GetActiveBlock(ctx context.Context, userID uuid.UUID) (*entity.Block, error)
	GetBlockByID(ctx context.Context, id uuid.UUID) (*entity.Block, error)
	CreateBlock(ctx context.Context, block *entity.Block) (*entity.Block, error)
	ClearBlock(ctx context.Context, blockID uuid.UUID, actor, reason string, at time.Time) (int64, error)
	ListBlocks(ctx context.Context, activeOnly bool) ([]entity.Block, error)

	CreateAppeal(ctx context.Context, appeal *entity.Appeal) (*entity.Appeal, error)
	GetPendingAppeal(ctx context.Context, userID, blockID uuid.UUID) (*entity.Appeal, error)
	GetAppealByID(ctx context.Context, id uuid.UUID) (*entity.Appeal, error)
	ListAppealsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Appeal, error)
	ListPendingAppeals(ctx context.Context) ([]entity.Appeal, error)
	ResolveAppeal(ctx context.Context, id uuid.UUID, status entity.AppealStatus, resolvedBy uuid.UUID, at time.Time) (int64, error)
}

// GetActiveBlock returns the user's current block row with is_blocked
// still set, or nil. Lazy expiry is the service's concern; the row is
// returned even when blocked_until has passed.
func (r *ModerationRepository) GetActiveBlock(ctx context.Context, userID uuid.UUID) (*entity.Block, error) {
	query := `SELECT` + blockColumns + ` FROM user_blocks WHERE user_id = $1 AND is_blocked = TRUE`

	var block entity.Block
	err := r.DB.GetContext(ctx, &block, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ModerationRepository:GetActiveBlock", err)
		return nil, err
	}
	return &block, nil
}

func (r *ModerationRepository) GetBlockByID(ctx context.Context, id uuid.UUID) (*entity.Block, error) {
	query := `SELECT` + blockColumns + ` FROM user_blocks WHERE id = $1`

	var block entity.Block
	err := r.DB.GetContext(ctx, &block, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ModerationRepository:GetBlockByID", err)
		return nil, err
	}
	return &block, nil
}

// CreateBlock inserts a new active block. The partial unique index on
// (user_id) WHERE is_blocked backs the one-active-block invariant; the
// transaction re-checks it so the caller gets a clean nil instead of a
// constraint violation under a race.
func (r *ModerationRepository) CreateBlock(ctx context.Context, block *entity.Block) (*entity.Block, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existingID uuid.UUID
	err = tx.GetContext(ctx, &existingID,
		`SELECT id FROM user_blocks WHERE user_id = $1 AND is_blocked = TRUE FOR UPDATE`, block.UserID)
	if err == nil {
		return nil, nil
	}
	if err != sql.ErrNoRows {
		logger.Error("ModerationRepository:CreateBlock", err)
		return nil, err
	}

	query := `
		INSERT INTO user_blocks (user_id, is_blocked, block_reason, blocked_at, blocked_until)
		VALUES ($1, TRUE, $2, $3, $4)
		RETURNING` + blockColumns

	var created entity.Block
	err = tx.GetContext(ctx, &created, query,
		block.UserID, block.BlockReason, block.BlockedAt, block.BlockedUntil)
	if err != nil {
		logger.Error("ModerationRepository:CreateBlock", err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &created, nil
}

// ClearBlock flips is_blocked off and records the audit trail. Returns the
// number of rows changed; zero means the block was already cleared.
func (r *ModerationRepository) ClearBlock(ctx context.Context, blockID uuid.UUID, actor, reason string, at time.Time) (int64, error) {
	query := `
		UPDATE user_blocks
		SET is_blocked = FALSE, unblocked_at = $2, unblocked_by = $3, unblock_reason = $4, updated_at = NOW()
		WHERE id = $1 AND is_blocked = TRUE`

	res, err := r.DB.ExecContext(ctx, query, blockID, at, actor, reason)
	if err != nil {
		logger.Error("ModerationRepository:ClearBlock", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ModerationRepository) ListBlocks(ctx context.Context, activeOnly bool) ([]entity.Block, error) {
	query := `SELECT` + blockColumns + ` FROM user_blocks`
	if activeOnly {
		query += ` WHERE is_blocked = TRUE`
	}
	query += ` ORDER BY blocked_at DESC`

	blocks := []entity.Block{}
	if err := r.DB.SelectContext(ctx, &blocks, query); err != nil {
		logger.Error("ModerationRepository:ListBlocks", err)
		return nil, err
	}
	return blocks, nil
}

// CreateAppeal inserts a pending appeal, guarding the one-pending-appeal
// invariant inside the transaction.
func (r *ModerationRepository) CreateAppeal(ctx context.Context, appeal *entity.Appeal) (*entity.Appeal, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	pending, err := pendingAppealTx(ctx, tx, appeal.UserID, appeal.BlockID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, nil
	}

	query := `
		INSERT INTO block_appeals (user_id, block_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING` + appealColumns

	var created entity.Appeal
	err = tx.GetContext(ctx, &created, query,
		appeal.UserID, appeal.BlockID, appeal.Reason, entity.AppealPending)
	if err != nil {
		logger.Error("ModerationRepository:CreateAppeal", err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &created, nil
}

func pendingAppealTx(ctx context.Context, tx *sqlx.Tx, userID, blockID uuid.UUID) (*entity.Appeal, error) {
	query := `SELECT` + appealColumns + `
		FROM block_appeals
		WHERE user_id = $1 AND block_id = $2 AND status = $3
		FOR UPDATE`

	var appeal entity.Appeal
	err := tx.GetContext(ctx, &appeal, query, userID, blockID, entity.AppealPending)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ModerationRepository:pendingAppealTx", err)
		return nil, err
	}
	return &appeal, nil
}

func (r *ModerationRepository) GetPendingAppeal(ctx context.Context, userID, blockID uuid.UUID) (*entity.Appeal, error) {
	query := `SELECT` + appealColumns + `
		FROM block_appeals
		WHERE user_id = $1 AND block_id = $2 AND status = $3`

	var appeal entity.Appeal
	err := r.DB.GetContext(ctx, &appeal, query, userID, blockID, entity.AppealPending)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ModerationRepository:GetPendingAppeal", err)
		return nil, err
	}
	return &appeal, nil
}

func (r *ModerationRepository) GetAppealByID(ctx context.Context, id uuid.UUID) (*entity.Appeal, error) {
	query := `SELECT` + appealColumns + ` FROM block_appeals WHERE id = $1`

	var appeal entity.Appeal
	err := r.DB.GetContext(ctx, &appeal, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ModerationRepository:GetAppealByID", err)
		return nil, err
	}
	return &appeal, nil
}

func (r *ModerationRepository) ListAppealsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Appeal, error) {
	query := `SELECT` + appealColumns + `
		FROM block_appeals WHERE user_id = $1 ORDER BY created_at DESC`

	appeals := []entity.Appeal{}
	if err := r.DB.SelectContext(ctx, &appeals, query, userID); err != nil {
		logger.Error("ModerationRepository:ListAppealsByUser", err)
		return nil, err
	}
	return appeals, nil
}

func (r *ModerationRepository) ListPendingAppeals(ctx context.Context) ([]entity.Appeal, error) {
	query := `SELECT` + appealColumns + `
		FROM block_appeals WHERE status = $1 ORDER BY created_at ASC`

	appeals := []entity.Appeal{}
	if err := r.DB.SelectContext(ctx, &appeals, query, entity.AppealPending); err != nil {
		logger.Error("ModerationRepository:ListPendingAppeals", err)
		return nil, err
	}
	return appeals, nil
}

// ResolveAppeal moves a pending appeal to its final status. Zero rows
// affected means the appeal was not pending.
func (r *ModerationRepository) ResolveAppeal(ctx context.Context, id uuid.UUID, status entity.AppealStatus, resolvedBy uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE block_appeals
		SET status = $2, resolved_at = $3, resolved_by = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`

	res, err := r.DB.ExecContext(ctx, query, id, status, at, resolvedBy, entity.AppealPending)
	if err != nil {
		logger.Error("ModerationRepository:ResolveAppeal", err)
		return 0, err
	}
	return res.RowsAffected()
}
