package entity

import (
	"time"

	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	categoryEntity "github.com/AndyVoronov/ObschiySbor-sub000/modules/category/entity"

	"github.com/google/uuid"
)

// EventStatus is the stored lifecycle state of an event. Active is the
// default; the Status Engine back-fills a date-derived state only when the
// stored value is still Active. Cancelled is terminal and sticky.
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// DerivedStatus is the display lifecycle state computed by the Status Engine.
type DerivedStatus string

const (
	DerivedUpcoming  DerivedStatus = "upcoming"
	DerivedOngoing   DerivedStatus = "ongoing"
	DerivedCompleted DerivedStatus = "completed"
	DerivedCancelled DerivedStatus = "cancelled"
)

// GenderFilter restricts who may join an event.
type GenderFilter string

const (
	GenderFilterAll    GenderFilter = "all"
	GenderFilterMale   GenderFilter = "male"
	GenderFilterFemale GenderFilter = "female"
)

func (g GenderFilter) Valid() bool {
	return g == GenderFilterAll || g == GenderFilterMale || g == GenderFilterFemale
}

// Event is a plannable activity.
type Event struct {
	CreatorID   uuid.UUID               `db:"creator_id" json:"creator_id"`
	Title       string                  `db:"title" json:"title"`
	Description *string                 `db:"description" json:"description,omitempty"`
	Slug        string                  `db:"slug" json:"slug"`
	Category    categoryEntity.Category `db:"category" json:"category"`

	// CategoryData is an opaque payload whose shape depends on Category;
	// it is validated against the schema registry on create only.
	CategoryData coreEntity.JSONB `db:"category_data" json:"category_data"`

	EventDate  time.Time  `db:"event_date" json:"event_date"`
	HasEndDate bool       `db:"has_end_date" json:"has_end_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`

	// Location: either a physical address (optionally geocoded) or an
	// online platform with a link.
	IsOnline       bool     `db:"is_online" json:"is_online"`
	Address        *string  `db:"address" json:"address,omitempty"`
	Latitude       *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64 `db:"longitude" json:"longitude,omitempty"`
	OnlinePlatform *string  `db:"online_platform" json:"online_platform,omitempty"`
	OnlineLink     *string  `db:"online_link" json:"online_link,omitempty"`

	MaxParticipants int `db:"max_participants" json:"max_participants"`

	// CurrentParticipants is denormalized and owned exclusively by the
	// participation ledger; nothing else writes it.
	CurrentParticipants int `db:"current_participants" json:"current_participants"`

	GenderFilter GenderFilter `db:"gender_filter" json:"gender_filter"`

	Status             EventStatus `db:"status" json:"status"`
	CancellationReason *string     `db:"cancellation_reason" json:"cancellation_reason,omitempty"`

	ParentEventID     *uuid.UUID `db:"parent_event_id" json:"parent_event_id,omitempty"`
	IsRecurringParent bool       `db:"is_recurring_parent" json:"is_recurring_parent"`

	CoverImageKey *string `db:"cover_image_key" json:"cover_image_key,omitempty"`

	coreEntity.BaseEntity
}

// Duration returns how long the event runs, or zero when it has no end date.
func (e *Event) Duration() time.Duration {
	if !e.HasEndDate || e.EndDate == nil {
		return 0
	}
	return e.EndDate.Sub(e.EventDate)
}
