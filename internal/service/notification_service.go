package service

import (
	"context"
	"errors"
	"fmt"

	"travelapproval/internal/apperror"
	"travelapproval/internal/metrics"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 100
	noReasonProvided         = "No reason provided"
	unknownUserName          = "Unknown"
)

// NotificationService creates workflow notifications and serves the in-app inbox.
// Notify* methods write through the repository and therefore join the
// caller's transaction.
type NotificationService interface {
	NotifySubmitted(ctx context.Context, req *model.TravelRequest) ([]model.Notification, error)
	NotifyApproved(ctx context.Context, req *model.TravelRequest) ([]model.Notification, error)
	NotifyRejected(ctx context.Context, req *model.TravelRequest) ([]model.Notification, error)

	GetUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkReadForUser(ctx context.Context, notificationID, userID uuid.UUID) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) NotificationService {
	return &notificationService{repo: repo, userRepo: userRepo}
}

func (s *notificationService) NotifySubmitted(ctx context.Context, req *model.TravelRequest) ([]model.Notification, error) {
	if req.ApproverID == nil {
		return nil, nil
	}

	requesterName := s.userName(ctx, req.Requester, &req.RequesterID)
	return s.create(ctx, &model.Notification{
		UserID:          *req.ApproverID,
		TravelRequestID: req.ID,
		Type:            model.NotificationRequestSubmitted,
		Message:         fmt.Sprintf("New travel request #%s from %s requires your approval", req.ID, requesterName),
	})
}

// NotifyApproved tells the requester and every active accounting user.
func (s *notificationService) NotifyApproved(ctx context.Context, req *model.TravelRequest) ([]model.Notification, error) {
	approverName := s.userName(ctx, req.Approver, req.ApproverID)

	rows := []*model.Notification{{
		UserID:          req.RequesterID,
		TravelRequestID: req.ID,
		Type:            model.NotificationRequestApproved,
		Message:         fmt.Sprintf("Your travel request #%s has been approved by %s", req.ID, approverName),
	}}

	accountants, err := s.userRepo.ListActiveByRole(ctx, model.RoleAccounting)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounting users: %w", err)
	}
	for _, a := range accountants {
		rows = append(rows, &model.Notification{
			UserID:          a.ID,
			TravelRequestID: req.ID,
			Type:            model.NotificationRequestApproved,
			Message:         fmt.Sprintf("Travel request #%s has been approved and requires processing", req.ID),
		})
	}

	return s.create(ctx, rows...)
}

func (s *notificationService) NotifyRejected(ctx context.Context, req *model.TravelRequest) ([]model.Notification, error) {
	reason := noReasonProvided
	if req.RejectionReason != nil && *req.RejectionReason != "" {
		reason = *req.RejectionReason
	}

	return s.create(ctx, &model.Notification{
		UserID:          req.RequesterID,
		TravelRequestID: req.ID,
		Type:            model.NotificationRequestRejected,
		Message:         fmt.Sprintf("Your travel request #%s has been rejected: %s", req.ID, reason),
	})
}

func (s *notificationService) create(ctx context.Context, rows ...*model.Notification) ([]model.Notification, error) {
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}

	created := make([]model.Notification, 0, len(rows))
	for _, n := range rows {
		metrics.RecordNotification(n.Type)
		created = append(created, *n)
	}
	return created, nil
}

// userName prefers the preloaded user and falls back to a lookup by id.
func (s *notificationService) userName(ctx context.Context, loaded *model.User, id *uuid.UUID) string {
	if loaded != nil {
		return loaded.FullName
	}
	if id == nil {
		return unknownUserName
	}
	user, err := s.userRepo.GetByID(ctx, *id)
	if err != nil {
		return unknownUserName
	}
	return user.FullName
}

func (s *notificationService) GetUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkRead is idempotent: unknown or already read ids are a no-op.
func (s *notificationService) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if _, err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkReadForUser is the HTTP variant: it refuses unknown ids and ids owned by
// somebody else.
func (s *notificationService) MarkReadForUser(ctx context.Context, notificationID, userID uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFoundError("Notification not found")
		}
		return fmt.Errorf("failed to load notification: %w", err)
	}
	if n.UserID != userID {
		return apperror.NewForbiddenError("Not authorized to modify this notification")
	}
	return s.MarkRead(ctx, notificationID)
}
