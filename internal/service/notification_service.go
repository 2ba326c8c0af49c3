package service

import (
	"context"
	"log/slog"

	"brewlog/internal/middleware"
	"brewlog/internal/models"
	"brewlog/internal/notifications"
	"brewlog/internal/observability"
	"brewlog/internal/repository"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService stores notifications and pushes them to the
// recipient's open sockets.
type NotificationService struct {
	repo     repository.NotificationRepository
	notifier *notifications.Notifier
}

// NewNotificationService returns a new NotificationService. notifier may be
// nil, in which case nothing is pushed.
func NewNotificationService(repo repository.NotificationRepository, notifier *notifications.Notifier) *NotificationService {
	return &NotificationService{repo: repo, notifier: notifier}
}

// Notify stores n and publishes it. A notification whose actor is the
// recipient is dropped. Delivery failures are logged, not returned: the
// action that caused the notification already succeeded.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if s == nil || (n.ActorID != nil && *n.ActorID == n.UserID) {
		return
	}
	if err := s.repo.Create(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to store notification",
			slog.String("type", string(n.Type)),
			slog.Uint64("recipient", uint64(n.UserID)),
			slog.String("error", err.Error()))
		return
	}
	observability.NotificationsPublished.WithLabelValues(string(n.Type)).Inc()

	ev := notifications.Event{Type: "notification", Payload: n}
	if err := s.notifier.PublishEvent(ctx, n.UserID, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Uint64("recipient", uint64(n.UserID)),
			slog.String("error", err.Error()))
	}
}

// List returns the newest notifications of userID.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.List(ctx, userID, clampLimit(limit, defaultNotificationLimit, maxNotificationLimit), unreadOnly)
}

// MarkRead marks one notification read. Notifications addressed to someone
// else are reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

// MarkAllRead marks every unread notification of userID read and returns
// how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the number of unread notifications of userID.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func clampLimit(limit, def, hi int) int {
	if limit <= 0 {
		return def
	}
	if limit > hi {
		return hi
	}
	return limit
}

func uintPtr(v uint) *uint {
	return &v
}
