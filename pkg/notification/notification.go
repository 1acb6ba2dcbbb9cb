package notification

import (
	"time"
)

// Channel represents a delivery medium.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Valid reports whether the channel is one of the known delivery media.
func (c Channel) Valid() bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

// AllChannels lists every supported delivery channel.
func AllChannels() []Channel {
	return []Channel{ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush}
}

// Priority represents the notification priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// rank orders priorities from least to most important.
func (p Priority) rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityNormal:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return 1
}

// AtLeast returns the higher of the two priorities.
func (p Priority) AtLeast(min Priority) Priority {
	if p.rank() < min.rank() {
		return min
	}
	return p
}

// Type tags the business event a notification describes.
type Type string

const (
	TypeOrderPaymentReceived      Type = "order_payment_received"
	TypeOrderShipped              Type = "order_shipped"
	TypePaymentFailed             Type = "payment_failed"
	TypePaymentReceived           Type = "payment_received"
	TypeBookingReminder           Type = "booking_reminder"
	TypeCourseNewContent          Type = "course_new_content"
	TypeAffiliateCommissionEarned Type = "affiliate_commission_earned"
	TypeSystemAnnouncement        Type = "system_announcement"
)

// Label returns a human-readable name for the notification type, used by
// digest summaries and grouped feed entries.
func (t Type) Label() string {
	switch t {
	case TypeOrderPaymentReceived:
		return "order payments"
	case TypeOrderShipped:
		return "shipped orders"
	case TypePaymentFailed:
		return "failed payments"
	case TypePaymentReceived:
		return "payments received"
	case TypeBookingReminder:
		return "booking reminders"
	case TypeCourseNewContent:
		return "course updates"
	case TypeAffiliateCommissionEarned:
		return "affiliate commissions"
	case TypeSystemAnnouncement:
		return "announcements"
	}
	return string(t)
}

// Request is the immutable unit of work passed into the orchestrator.
// Title and Message are used verbatim unless TemplateSlug is set, in which
// case channel-specific content is rendered from the template store.
type Request struct {
	UserID       string            `json:"user_id"`
	Type         Type              `json:"type"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	ActionURL    string            `json:"action_url,omitempty"`
	ActionLabel  string            `json:"action_label,omitempty"`
	Priority     Priority          `json:"priority"`
	Channels     []Channel         `json:"channels"`
	TemplateSlug string            `json:"template_slug,omitempty"`
	Language     string            `json:"language,omitempty"`
	ProductType  string            `json:"product_type,omitempty"`
	ProductID    string            `json:"product_id,omitempty"`
	OrderID      string            `json:"order_id,omitempty"`
}

// Validate checks the request for programmer errors before dispatch.
func (r Request) Validate() error {
	if r.UserID == "" {
		return ErrMissingUserID
	}
	if r.Type == "" {
		return ErrMissingType
	}
	for _, ch := range r.Channels {
		if !ch.Valid() {
			return ErrUnknownChannel
		}
	}
	return nil
}

// Content is the rendered, channel-ready payload handed to a sender.
type Content struct {
	Subject     string `json:"subject,omitempty"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	HTML        string `json:"html,omitempty"`
	ActionURL   string `json:"action_url,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
}

// Notification is the stored, read-side representation used by the in-app
// feed, digests and grouping.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      Type              `json:"type"`
	Priority  Priority          `json:"priority"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ActionURL string            `json:"action_url,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// MarkAsRead marks the notification as read with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
