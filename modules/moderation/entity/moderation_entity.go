package entity

import (
	"time"

	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"

	"github.com/google/uuid"
)

// UnblockActorNone marks the self-service unblock path taken after a
// temporary block lazily expires.
const UnblockActorNone = "none"

// Block is a moderation restriction on a user. A user has at most one
// active block at a time; blocked_until null means permanent.
type Block struct {
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	IsBlocked     bool       `json:"is_blocked" db:"is_blocked"`
	BlockReason   string     `json:"block_reason" db:"block_reason"`
	BlockedAt     time.Time  `json:"blocked_at" db:"blocked_at"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty" db:"blocked_until"`
	UnblockedAt   *time.Time `json:"unblocked_at,omitempty" db:"unblocked_at"`
	UnblockedBy   *string    `json:"unblocked_by,omitempty" db:"unblocked_by"`
	UnblockReason *string    `json:"unblock_reason,omitempty" db:"unblock_reason"`

	coreEntity.BaseEntity
}

// Expired reports whether a temporary block has run out. Readers treat an
// expired block as inactive even before the row is cleared.
func (b *Block) Expired(now time.Time) bool {
	return b.BlockedUntil != nil && b.BlockedUntil.Before(now)
}

// Active reports whether the block still restricts the user at the given
// time.
func (b *Block) Active(now time.Time) bool {
	return b.IsBlocked && !b.Expired(now)
}

type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// Appeal is a user's contest of a block. At most one pending appeal may
// exist per (user, block) pair.
type Appeal struct {
	UserID     uuid.UUID    `json:"user_id" db:"user_id"`
	BlockID    uuid.UUID    `json:"block_id" db:"block_id"`
	Reason     string       `json:"reason" db:"reason"`
	Status     AppealStatus `json:"status" db:"status"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy *uuid.UUID   `json:"resolved_by,omitempty" db:"resolved_by"`

	coreEntity.BaseEntity
}
