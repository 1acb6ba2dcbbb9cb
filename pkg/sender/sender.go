package sender

import (
	"context"
	"log/slog"

	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
)

// Request carries everything a channel adapter needs for one send: the
// notification identifier assigned by the orchestrator, the original
// request, and the rendered channel-ready content.
type Request struct {
	NotificationID string
	Notification   notification.Request
	Content        notification.Content
}

// Sender delivers rendered content to a user through one channel. The
// subsystem does not know or care how an implementation reaches the user; it
// only needs a success or failure signal, with failure messages inspectable
// for retryability classification.
type Sender interface {
	// Channel identifies the delivery medium this sender serves.
	Channel() notification.Channel

	// Send delivers the content. Implementations classify failures through
	// their error messages: transient transport problems must read as such
	// (timeout, unavailable, ...), invalid-input problems likewise.
	Send(ctx context.Context, req Request) error
}

// Func adapts an external collaborator function into a Sender. This is the
// integration point for transports owned elsewhere (SMS gateways, push
// services).
type Func struct {
	channel notification.Channel
	fn      func(ctx context.Context, req Request) error
}

// NewFunc wraps a collaborator function as a Sender for the given channel.
func NewFunc(channel notification.Channel, fn func(ctx context.Context, req Request) error) (*Func, error) {
	if !channel.Valid() {
		return nil, notification.ErrUnknownChannel
	}
	if fn == nil {
		return nil, ErrNilSendFunc
	}
	return &Func{channel: channel, fn: fn}, nil
}

func (f *Func) Channel() notification.Channel { return f.channel }

func (f *Func) Send(ctx context.Context, req Request) error {
	return f.fn(ctx, req)
}

// DevSender logs sends instead of delivering them. Useful for local
// development when a transport is not configured.
type DevSender struct {
	channel notification.Channel
	logger  *slog.Logger
}

// NewDevSender creates a development sender for the given channel.
func NewDevSender(channel notification.Channel, log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{channel: channel, logger: log}
}

func (d *DevSender) Channel() notification.Channel { return d.channel }

func (d *DevSender) Send(ctx context.Context, req Request) error {
	d.logger.LogAttrs(ctx, slog.LevelInfo, "dev sender: notification delivered",
		logger.Channel(d.channel),
		logger.UserID(req.Notification.UserID),
		logger.NotificationID(req.NotificationID),
		slog.String("title", req.Content.Title),
		slog.String("body", req.Content.Body),
	)
	return nil
}
