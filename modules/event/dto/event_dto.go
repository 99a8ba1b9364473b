package dto

import (
	"time"

	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	categoryEntity "github.com/AndyVoronov/ObschiySbor-sub000/modules/category/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"

	"github.com/google/uuid"
)

// RecurrenceRuleRequest is the wire form of a recurrence rule.
type RecurrenceRuleRequest struct {
	Frequency  string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval   int        `json:"interval" validate:"required,min=1"`
	DaysOfWeek []int      `json:"days_of_week,omitempty" validate:"omitempty,dive,min=1,max=7"`
	Count      int        `json:"count,omitempty" validate:"omitempty,min=1"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

func (r *RecurrenceRuleRequest) ToRule() *entity.RecurrenceRule {
	return &entity.RecurrenceRule{
		Frequency:  entity.Frequency(r.Frequency),
		Interval:   r.Interval,
		DaysOfWeek: r.DaysOfWeek,
		Count:      r.Count,
		EndDate:    r.EndDate,
	}
}

type CreateEventRequest struct {
	Title        string           `json:"title" validate:"required,max=200"`
	Description  string           `json:"description"`
	Category     string           `json:"category" validate:"required"`
	CategoryData coreEntity.JSONB `json:"category_data"`

	EventDate  time.Time  `json:"event_date" validate:"required"`
	HasEndDate bool       `json:"has_end_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`

	IsOnline       bool     `json:"is_online"`
	Address        string   `json:"address,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	OnlinePlatform string   `json:"online_platform,omitempty"`
	OnlineLink     string   `json:"online_link,omitempty"`

	MaxParticipants int    `json:"max_participants" validate:"required,min=1"`
	GenderFilter    string `json:"gender_filter" validate:"omitempty,oneof=all male female"`

	Recurrence *RecurrenceRuleRequest `json:"recurrence,omitempty"`
}

type UpdateEventRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	CategoryData    coreEntity.JSONB `json:"category_data,omitempty"`
	EventDate       *time.Time       `json:"event_date,omitempty"`
	HasEndDate      *bool            `json:"has_end_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	Address         *string          `json:"address,omitempty"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	GenderFilter    *string          `json:"gender_filter,omitempty"`
}

type CancelEventRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type CoverUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type CoverUploadResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
}

type EventResponse struct {
	ID                  uuid.UUID               `json:"id"`
	CreatorID           uuid.UUID               `json:"creator_id"`
	Title               string                  `json:"title"`
	Description         *string                 `json:"description,omitempty"`
	Slug                string                  `json:"slug"`
	Category            categoryEntity.Category `json:"category"`
	CategoryData        coreEntity.JSONB        `json:"category_data"`
	EventDate           time.Time               `json:"event_date"`
	HasEndDate          bool                    `json:"has_end_date"`
	EndDate             *time.Time              `json:"end_date,omitempty"`
	IsOnline            bool                    `json:"is_online"`
	Address             *string                 `json:"address,omitempty"`
	Latitude            *float64                `json:"latitude,omitempty"`
	Longitude           *float64                `json:"longitude,omitempty"`
	OnlinePlatform      *string                 `json:"online_platform,omitempty"`
	OnlineLink          *string                 `json:"online_link,omitempty"`
	MaxParticipants     int                     `json:"max_participants"`
	CurrentParticipants int                     `json:"current_participants"`
	GenderFilter        entity.GenderFilter     `json:"gender_filter"`
	Status              entity.EventStatus      `json:"status"`
	DerivedStatus       entity.DerivedStatus    `json:"derived_status"`
	CancellationReason  *string                 `json:"cancellation_reason,omitempty"`
	ParentEventID       *uuid.UUID              `json:"parent_event_id,omitempty"`
	IsRecurringParent   bool                    `json:"is_recurring_parent"`
	CoverImageKey       *string                 `json:"cover_image_key,omitempty"`
	CanJoin             bool                    `json:"can_join"`
	CanCancel           bool                    `json:"can_cancel"`
	CreatedAt           time.Time               `json:"created_at"`

	// Expansion is present only in the create response of a recurring event.
	Expansion any `json:"expansion,omitempty"`
}

// ToEventResponse maps an entity plus its derived state onto the wire form.
func ToEventResponse(e *entity.Event, derived entity.DerivedStatus, canJoin, canCancel bool) *EventResponse {
	return &EventResponse{
		ID:                  e.ID,
		CreatorID:           e.CreatorID,
		Title:               e.Title,
		Description:         e.Description,
		Slug:                e.Slug,
		Category:            e.Category,
		CategoryData:        e.CategoryData,
		EventDate:           e.EventDate,
		HasEndDate:          e.HasEndDate,
		EndDate:             e.EndDate,
		IsOnline:            e.IsOnline,
		Address:             e.Address,
		Latitude:            e.Latitude,
		Longitude:           e.Longitude,
		OnlinePlatform:      e.OnlinePlatform,
		OnlineLink:          e.OnlineLink,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		GenderFilter:        e.GenderFilter,
		Status:              e.Status,
		DerivedStatus:       derived,
		CancellationReason:  e.CancellationReason,
		ParentEventID:       e.ParentEventID,
		IsRecurringParent:   e.IsRecurringParent,
		CoverImageKey:       e.CoverImageKey,
		CanJoin:             canJoin,
		CanCancel:           canCancel,
		CreatedAt:           e.CreatedAt,
	}
}
