package entity

import (
	"time"

	"github.com/google/uuid"
)

// ParticipationStatus tracks a user's membership state in an event.
type ParticipationStatus string

const (
	ParticipationStatusJoined ParticipationStatus = "joined"
	ParticipationStatusLeft   ParticipationStatus = "left"
	ParticipationStatusBanned ParticipationStatus = "banned"
)

// Participation is one user's membership row in one event. At most one row
// exists per (event, user); rejoining flips the row back to joined instead
// of inserting a second one.
type Participation struct {
	EventID   uuid.UUID           `db:"event_id" json:"event_id"`
	UserID    uuid.UUID           `db:"user_id" json:"user_id"`
	Status    ParticipationStatus `db:"status" json:"status"`
	JoinedAt  time.Time           `db:"joined_at" json:"joined_at"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}
