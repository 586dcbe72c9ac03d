package services

import (
	"context"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// NotificationItem is a notification with its sender resolved. Sender is nil
// for system notifications and for senders that no longer exist.
type NotificationItem struct {
	models.Notification
	Sender *models.UserCompact `json:"sender,omitempty"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type NotificationPage struct {
	Items  []NotificationItem `json:"notifications"`
	Meta   PageMeta           `json:"meta"`
	Unread int64              `json:"unread_count"`
}

type GroupedNotifications struct {
	Today     []NotificationItem `json:"today"`
	Yesterday []NotificationItem `json:"yesterday"`
	ThisWeek  []NotificationItem `json:"this_week"`
	Older     []NotificationItem `json:"older"`
}

// NotificationService is the read side of notifications. Writing them is the
// Notifier's job.
type NotificationService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewNotificationService(store *repositories.Store) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultNotificationPageSize
	}
	if limit > maxNotificationPageSize {
		limit = maxNotificationPageSize
	}

	notifications, total, err := s.store.Notifications.GetByRecipientID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.Notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.enrich(ctx, notifications)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{
		Items:  items,
		Meta:   PageMeta{Page: page, Limit: limit, Total: total, TotalPages: int((total + int64(limit) - 1) / int64(limit))},
		Unread: unread,
	}, nil
}

// Grouped buckets userID's notifications by age relative to now.
func (s *NotificationService) Grouped(ctx context.Context, userID uint) (*GroupedNotifications, error) {
	today, yesterday, week, older, err := s.store.Notifications.GetGrouped(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	var g GroupedNotifications
	for _, bucket := range []struct {
		src []models.Notification
		dst *[]NotificationItem
	}{
		{today, &g.Today},
		{yesterday, &g.Yesterday},
		{week, &g.ThisWeek},
		{older, &g.Older},
	} {
		if *bucket.dst, err = s.enrich(ctx, bucket.src); err != nil {
			return nil, err
		}
	}
	return &g, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Notifications.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return notFoundOr(s.store.Notifications.MarkAsRead(ctx, userID, notificationID), ErrNotificationNotFound)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.store.Notifications.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Clear(ctx context.Context, userID uint) error {
	return s.store.Notifications.DeleteAll(ctx, userID)
}

func (s *NotificationService) enrich(ctx context.Context, notifications []models.Notification) ([]NotificationItem, error) {
	senderIDs := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if n.SenderID != nil {
			senderIDs = append(senderIDs, *n.SenderID)
		}
	}
	senders, err := s.store.Users.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	items := make([]NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		item := NotificationItem{Notification: n}
		if n.SenderID != nil {
			if sender, ok := senders[*n.SenderID]; ok {
				compact := sender.ToCompact()
				item.Sender = &compact
			}
		}
		items = append(items, item)
	}
	return items, nil
}
