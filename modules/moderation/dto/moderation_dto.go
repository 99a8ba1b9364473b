package dto

import (
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/entity"
)

type BlockUserRequest struct {
	Reason string     `json:"reason" validate:"required"`
	Until  *time.Time `json:"until,omitempty"`
}

type UnblockUserRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type SubmitAppealRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ResolveAppealRequest struct {
	Approve bool `json:"approve"`
}

type BlockResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	IsBlocked    bool       `json:"is_blocked"`
	Expired      bool       `json:"expired"`
	BlockReason  string     `json:"block_reason"`
	BlockedAt    time.Time  `json:"blocked_at"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// ToBlockResponse renders a block with the lazy-expiry flag evaluated at
// the given time, so clients can offer the self-unblock action.
func ToBlockResponse(b *entity.Block, now time.Time) *BlockResponse {
	return &BlockResponse{
		ID:           b.ID.String(),
		UserID:       b.UserID.String(),
		IsBlocked:    b.IsBlocked,
		Expired:      b.Expired(now),
		BlockReason:  b.BlockReason,
		BlockedAt:    b.BlockedAt,
		BlockedUntil: b.BlockedUntil,
	}
}
