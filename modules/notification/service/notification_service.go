package service

import (
	"context"

	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/params"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/repository"

	"github.com/google/uuid"
)

// NotificationService stores and serves in-app notifications. Delivery
// happens through the task worker; this service is the storage side.
type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

type NotificationServiceInterface interface {
	Deliver(ctx context.Context, p queue.NotificationPayload) error
	GetMyNotifications(ctx context.Context, userID uuid.UUID, q params.QueryParams) (*entity.PaginatedNotifications, *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) NotificationServiceInterface {
	return &NotificationService{repo: repo}
}

// Deliver materializes a task payload as a notification row.
func (s *NotificationService) Deliver(ctx context.Context, p queue.NotificationPayload) error {
	return s.repo.Create(ctx, &entity.Notification{
		UserID:  p.UserID,
		Kind:    p.Kind,
		Title:   p.Title,
		Message: p.Message,
		Data:    coreEntity.JSONB(p.Data),
	})
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, q params.QueryParams) (*entity.PaginatedNotifications, *errors.AppError) {
	page, err := s.repo.GetByUserID(ctx, userID, q)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get notifications", err)
	}
	return page, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "Failed to count unread", err)
	}
	return count, nil
}
