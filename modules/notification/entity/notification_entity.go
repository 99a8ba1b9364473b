package entity

import (
	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"

	"github.com/google/uuid"
)

// Notification is a stored in-app notification row. Kind mirrors the task
// payload kinds (participant_joined, event_cancelled, ...).
type Notification struct {
	UserID  uuid.UUID        `db:"user_id" json:"user_id"`
	Kind    string           `db:"kind" json:"kind"`
	Title   string           `db:"title" json:"title"`
	Message string           `db:"message" json:"message"`
	Data    coreEntity.JSONB `db:"data" json:"data"`
	IsRead  bool             `db:"is_read" json:"is_read"`

	coreEntity.BaseEntity
}

type PaginatedNotifications = coreEntity.Pagination[Notification]
