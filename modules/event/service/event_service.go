package service

import (
	"context"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/params"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/storage"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/utils"
	categoryEntity "github.com/AndyVoronov/ObschiySbor-sub000/modules/category/entity"
	categoryService "github.com/AndyVoronov/ObschiySbor-sub000/modules/category/service"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/dto"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// BlockChecker is the slice of the moderation service the event module
// needs: blocking gates event creation globally, not per event.
type BlockChecker interface {
	IsActivelyBlocked(ctx context.Context, userID uuid.UUID) (bool, *errors.AppError)
}

// EventService owns the event lifecycle: creation (with optional recurrence
// expansion), edits, cancellation and status derivation.
type EventService struct {
	repo       repository.EventRepositoryInterface
	categories categoryService.CategoryServiceInterface
	blocks     BlockChecker
	notifier   queue.Notifier
	storage    *storage.Storage
	clock      clock.Clock
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, creatorID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError)
	GetEvent(ctx context.Context, id uuid.UUID) (*dto.EventResponse, *errors.AppError)
	ListEvents(ctx context.Context, filter repository.ListFilter, q params.QueryParams) (*coreEntity.Pagination[dto.EventResponse], *errors.AppError)
	GetMyEvents(ctx context.Context, creatorID uuid.UUID) ([]dto.EventResponse, *errors.AppError)
	UpdateEvent(ctx context.Context, id, userID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, *errors.AppError)
	CancelEvent(ctx context.Context, id, userID uuid.UUID, reason string) (*dto.EventResponse, *errors.AppError)
	GetOccurrences(ctx context.Context, parentID uuid.UUID) ([]dto.EventResponse, *errors.AppError)
	RetryExpansion(ctx context.Context, id, userID uuid.UUID, req *dto.RecurrenceRuleRequest) (*ExpansionResult, *errors.AppError)
	BuildICS(ctx context.Context, id uuid.UUID) (string, *errors.AppError)
	PresignCoverUpload(ctx context.Context, id, userID uuid.UUID, contentType string) (*dto.CoverUploadResponse, *errors.AppError)
	SyncStatuses(ctx context.Context) error
}

func NewEventService(
	repo repository.EventRepositoryInterface,
	categories categoryService.CategoryServiceInterface,
	blocks BlockChecker,
	notifier queue.Notifier,
	store *storage.Storage,
	clk clock.Clock,
) EventServiceInterface {
	return &EventService{
		repo:       repo,
		categories: categories,
		blocks:     blocks,
		notifier:   notifier,
		storage:    store,
		clock:      clk,
	}
}

func (s *EventService) toResponse(e *entity.Event) *dto.EventResponse {
	now := s.clock.Now()
	return dto.ToEventResponse(e, DeriveStatus(e, now), CanJoin(e, now), CanCancel(e, now))
}

// CreateEvent validates and persists a new event. When a recurrence rule is
// supplied the committed parent is expanded into child occurrences; a
// partial expansion failure never rolls the parent back.
func (s *EventService) CreateEvent(ctx context.Context, creatorID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError) {
	blocked, appErr := s.blocks.IsActivelyBlocked(ctx, creatorID)
	if appErr != nil {
		return nil, appErr
	}
	if blocked {
		return nil, errors.NewAppError(errors.ErrUserBlocked, "Your account is blocked and cannot create events", nil)
	}

	category := categoryEntity.Category(req.Category)
	if appErr := s.categories.ValidatePayload(ctx, category, req.CategoryData); appErr != nil {
		return nil, appErr
	}

	var rule *entity.RecurrenceRule
	if req.Recurrence != nil {
		rule = req.Recurrence.ToRule()
		if err := rule.Validate(); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidRecurrenceRule, err.Error(), nil)
		}
	}

	genderFilter := entity.GenderFilter(req.GenderFilter)
	if genderFilter == "" {
		genderFilter = entity.GenderFilterAll
	}
	if !genderFilter.Valid() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid gender filter", nil)
	}

	if req.HasEndDate {
		if req.EndDate == nil || !req.EndDate.After(req.EventDate) {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "End date must be after the start date", nil)
		}
	}

	event := &entity.Event{
		CreatorID:       creatorID,
		Title:           req.Title,
		Slug:            buildSlug(req.Title),
		Category:        category,
		CategoryData:    req.CategoryData,
		EventDate:       req.EventDate,
		HasEndDate:      req.HasEndDate,
		IsOnline:        req.IsOnline,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		MaxParticipants: req.MaxParticipants,
		GenderFilter:    genderFilter,
		Status:          entity.EventStatusActive,
	}
	if req.HasEndDate {
		event.EndDate = req.EndDate
	}
	if req.Description != "" {
		event.Description = &req.Description
	}
	if req.Address != "" {
		event.Address = &req.Address
	}
	if req.OnlinePlatform != "" {
		event.OnlinePlatform = &req.OnlinePlatform
	}
	if req.OnlineLink != "" {
		event.OnlineLink = &req.OnlineLink
	}

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create event", err)
	}

	resp := s.toResponse(created)

	if rule != nil {
		if err := s.repo.MarkRecurringParent(ctx, created.ID); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to mark recurring parent", err)
		}
		created.IsRecurringParent = true
		resp.IsRecurringParent = true
		resp.Expansion = s.expandRecurrence(ctx, created, rule)
	}

	logger.Info("EventService:CreateEvent:Success", "event_id", created.ID, "creator_id", creatorID)
	return resp, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*dto.EventResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	return s.toResponse(event), nil
}

func (s *EventService) ListEvents(ctx context.Context, filter repository.ListFilter, q params.QueryParams) (*coreEntity.Pagination[dto.EventResponse], *errors.AppError) {
	events, total, err := s.repo.ListEvents(ctx, filter, q)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list events", err)
	}

	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, *s.toResponse(&events[i]))
	}
	return coreEntity.NewPagination(items, total, q.Page, q.Limit), nil
}

func (s *EventService) GetMyEvents(ctx context.Context, creatorID uuid.UUID) ([]dto.EventResponse, *errors.AppError) {
	events, err := s.repo.GetEventsByCreator(ctx, creatorID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get events", err)
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, *s.toResponse(&events[i]))
	}
	return result, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id, userID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CreatorID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer can edit this event", nil)
	}
	if event.Status == entity.EventStatusCancelled {
		return nil, errors.NewAppError(errors.ErrEventNotJoinable, "A cancelled event cannot be edited", nil)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.CategoryData != nil {
		if appErr := s.categories.ValidatePayload(ctx, event.Category, req.CategoryData); appErr != nil {
			return nil, appErr
		}
		event.CategoryData = req.CategoryData
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.HasEndDate != nil {
		event.HasEndDate = *req.HasEndDate
		if !event.HasEndDate {
			event.EndDate = nil
		}
	}
	if req.EndDate != nil && event.HasEndDate {
		event.EndDate = req.EndDate
	}
	if req.Address != nil {
		event.Address = req.Address
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants < event.CurrentParticipants {
			return nil, errors.NewAppError(errors.ErrInvalidInput,
				"Capacity cannot be set below the current participant count", nil)
		}
		event.MaxParticipants = *req.MaxParticipants
	}
	if req.GenderFilter != nil {
		gf := entity.GenderFilter(*req.GenderFilter)
		if !gf.Valid() {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid gender filter", nil)
		}
		event.GenderFilter = gf
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update event", err)
	}

	return s.toResponse(event), nil
}

// CancelEvent moves an event into its terminal cancelled state and fans out
// a best-effort notification to joined participants via the queue.
func (s *EventService) CancelEvent(ctx context.Context, id, userID uuid.UUID, reason string) (*dto.EventResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CreatorID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer can cancel this event", nil)
	}
	if !CanCancel(event, s.clock.Now()) {
		return nil, errors.NewAppError(errors.ErrEventNotJoinable,
			"A completed or already cancelled event cannot be cancelled", nil)
	}
	if reason == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "A cancellation reason is required", nil)
	}

	if err := s.repo.CancelEvent(ctx, id, reason); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to cancel event", err)
	}

	event.Status = entity.EventStatusCancelled
	event.CancellationReason = &reason

	// Fan-out is resolved by the worker; a failing queue never fails the cancel.
	s.notifier.NotifyAsync(ctx, queue.NotificationPayload{
		Kind:    queue.KindEventCancelled,
		Title:   "Event cancelled",
		Message: event.Title + " was cancelled: " + reason,
		Data:    map[string]any{"event_id": event.ID.String()},
	})

	logger.Info("EventService:CancelEvent:Success", "event_id", id, "reason", reason)
	return s.toResponse(event), nil
}

func (s *EventService) GetOccurrences(ctx context.Context, parentID uuid.UUID) ([]dto.EventResponse, *errors.AppError) {
	parent, err := s.repo.GetEventByID(ctx, parentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if parent == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	children, err := s.repo.GetChildren(ctx, parentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get occurrences", err)
	}

	result := make([]dto.EventResponse, 0, len(children))
	for i := range children {
		result = append(result, *s.toResponse(&children[i]))
	}
	return result, nil
}

// RetryExpansion re-runs recurrence expansion after a partial failure.
// Occurrences already present for the same parent and date are skipped, so
// the operation is idempotent.
func (s *EventService) RetryExpansion(ctx context.Context, id, userID uuid.UUID, req *dto.RecurrenceRuleRequest) (*ExpansionResult, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CreatorID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer can expand this event", nil)
	}

	rule := req.ToRule()
	if err := rule.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidRecurrenceRule, err.Error(), nil)
	}

	if !event.IsRecurringParent {
		if err := s.repo.MarkRecurringParent(ctx, event.ID); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to mark recurring parent", err)
		}
		event.IsRecurringParent = true
	}

	return s.expandRecurrence(ctx, event, rule), nil
}

func (s *EventService) PresignCoverUpload(ctx context.Context, id, userID uuid.UUID, contentType string) (*dto.CoverUploadResponse, *errors.AppError) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	if event.CreatorID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the organizer can change the cover image", nil)
	}

	url, key, err := s.storage.PresignCoverUpload(ctx, event.ID.String(), contentType)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to presign upload", err)
	}
	if err := s.repo.SetCoverImage(ctx, event.ID, key); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to store cover image key", err)
	}

	return &dto.CoverUploadResponse{UploadURL: url, Key: key}, nil
}

// SyncStatuses runs the periodic stored-status back-fill.
func (s *EventService) SyncStatuses(ctx context.Context) error {
	affected, err := s.repo.SyncStatuses(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if affected > 0 {
		logger.Info("EventService:SyncStatuses", "completed", affected)
	}
	return nil
}

func buildSlug(title string) string {
	return slug.Make(title) + "-" + utils.GenerateID()
}
