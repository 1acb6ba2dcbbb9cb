package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/notifykit/notifykit/pkg/notification"
)

// InApp delivers notifications into the read-side notification store that
// backs the in-app feed. Delivery is the write itself; there is no external
// transport.
type InApp struct {
	storage notification.Storage
}

// NewInApp creates an in-app channel sender over the notification store.
func NewInApp(storage notification.Storage) (*InApp, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	return &InApp{storage: storage}, nil
}

func (s *InApp) Channel() notification.Channel { return notification.ChannelInApp }

func (s *InApp) Send(ctx context.Context, req Request) error {
	notif := notification.Notification{
		ID:        req.NotificationID,
		UserID:    req.Notification.UserID,
		Type:      req.Notification.Type,
		Priority:  req.Notification.Priority,
		Title:     req.Content.Title,
		Message:   req.Content.Body,
		Metadata:  req.Notification.Metadata,
		ActionURL: req.Content.ActionURL,
		CreatedAt: time.Now(),
	}
	if notif.Title == "" {
		notif.Title = req.Notification.Title
	}
	if notif.Message == "" {
		notif.Message = req.Notification.Message
	}

	if err := s.storage.Create(ctx, notif); err != nil {
		return fmt.Errorf("store in-app notification: %w", err)
	}
	return nil
}
