package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notifykit/notifykit/pkg/deliverylog"
	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
	"github.com/notifykit/notifykit/pkg/ratelimit"
	"github.com/notifykit/notifykit/pkg/retry"
	"github.com/notifykit/notifykit/pkg/sender"
	"github.com/notifykit/notifykit/pkg/template"
)

// Orchestrator is the entry point of the delivery subsystem. For each
// request it resolves user preferences, intersects them with the requested
// channels, gates every channel through the rate limiter, executes the
// channel sender wrapped in retries, and records every outcome in the
// delivery log. Channels are independent: one channel failing never aborts
// the others.
type Orchestrator struct {
	senders    map[notification.Channel]sender.Sender
	limiter    *ratelimit.Limiter
	retrier    *retry.Controller
	retryQueue *retry.Processor
	log        *deliverylog.Log
	engine     *template.Engine
	prefs      PreferenceResolver
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetryController replaces the default retry policy.
func WithRetryController(c *retry.Controller) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.retrier = c
		}
	}
}

// WithRetryProcessor enables asynchronous reprocessing: exhausted sends are
// handed off as retry records instead of ending at the delivery log.
func WithRetryProcessor(p *retry.Processor) Option {
	return func(o *Orchestrator) {
		o.retryQueue = p
	}
}

// WithTemplates enables template rendering for requests carrying a
// template slug.
func WithTemplates(e *template.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = e
	}
}

// WithPreferences sets the preference collaborator. Without one, the
// channel defaults apply to every user.
func WithPreferences(p PreferenceResolver) Option {
	return func(o *Orchestrator) {
		o.prefs = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an orchestrator over the given limiter, delivery log and
// channel senders. Exactly one sender per channel; registering two senders
// for the same channel is a programmer error.
func New(limiter *ratelimit.Limiter, log *deliverylog.Log, senders []sender.Sender, opts ...Option) (*Orchestrator, error) {
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	if log == nil {
		return nil, ErrDeliveryLogRequired
	}
	if len(senders) == 0 {
		return nil, ErrNoSenders
	}

	byChannel := make(map[notification.Channel]sender.Sender, len(senders))
	for _, s := range senders {
		if _, dup := byChannel[s.Channel()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSender, s.Channel())
		}
		byChannel[s.Channel()] = s
	}

	o := &Orchestrator{
		senders: byChannel,
		limiter: limiter,
		retrier: retry.NewController(retry.DefaultConfig()),
		log:     log,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Send dispatches one notification across its effective channel set. It
// returns an error only for programmer errors (invalid request, a channel
// without a registered sender); per-channel delivery failures are reported
// in the result.
func (o *Orchestrator) Send(ctx context.Context, req notification.Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	channels := req.Channels
	if len(channels) == 0 {
		channels = []notification.Channel{notification.ChannelInApp, notification.ChannelEmail}
	}
	for _, ch := range channels {
		if _, ok := o.senders[ch]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoSenderForChannel, ch)
		}
	}

	prefs, err := o.resolvePreferences(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve preferences: %w", err)
	}

	result := &Result{
		NotificationID: uuid.New().String(),
		Channels:       make(map[notification.Channel]ChannelResult, len(channels)),
	}

	// Effective channel set = requested ∩ enabled
	var effective []notification.Channel
	for _, ch := range channels {
		if prefs.Enabled(req.Type, ch) {
			effective = append(effective, ch)
			continue
		}
		result.Channels[ch] = ChannelResult{Skipped: true}
		o.recordSkipped(ctx, req, result.NotificationID, ch)
	}

	// Channels are independent; deliver them concurrently. The rate
	// limiter's store synchronizes counter mutation internally.
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, ch := range effective {
		wg.Add(1)
		go func(ch notification.Channel) {
			defer wg.Done()
			cr := o.sendChannel(ctx, req, result.NotificationID, ch)
			mu.Lock()
			result.Channels[ch] = cr
			if cr.Success {
				result.Success = true
			}
			mu.Unlock()
		}(ch)
	}
	wg.Wait()

	if !result.Success {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "notification failed on all channels",
			logger.UserID(req.UserID),
			logger.NotificationType(req.Type),
			logger.NotificationID(result.NotificationID),
			slog.String("reason", result.FailureReason()),
		)
	}
	return result, nil
}

func (o *Orchestrator) resolvePreferences(ctx context.Context, userID string) (Preferences, error) {
	if o.prefs == nil {
		return nil, nil
	}
	return o.prefs.Preferences(ctx, userID)
}

// sendChannel runs the gate→send→record sequence for one channel.
func (o *Orchestrator) sendChannel(ctx context.Context, req notification.Request, notifID string, ch notification.Channel) ChannelResult {
	start := time.Now()

	limit, err := o.limiter.Check(ctx, req.UserID, ch, req.Type)
	if err != nil {
		return o.failChannel(ctx, req, notifID, ch, 0, start, fmt.Errorf("rate limit check: %w", err), false)
	}
	if !limit.Allowed {
		return o.failChannel(ctx, req, notifID, ch, 0, start, fmt.Errorf("%w: %s", ErrRateLimited, limit.Reason), true)
	}

	content, err := o.renderContent(ctx, req, ch)
	if err != nil {
		return o.failChannel(ctx, req, notifID, ch, 0, start, fmt.Errorf("render content: %w", err), false)
	}

	snd := o.senders[ch]
	outcome, sendErr := o.retrier.Execute(ctx, func(ctx context.Context) error {
		return snd.Send(ctx, sender.Request{
			NotificationID: notifID,
			Notification:   req,
			Content:        *content,
		})
	})

	// One rate-limit record per actually-attempted send, success or not
	if err := o.limiter.Record(ctx, req.UserID, ch, req.Type); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "failed to record rate limit usage",
			logger.UserID(req.UserID),
			logger.Channel(ch),
			logger.Error(err),
		)
	}

	if sendErr != nil {
		if errors.Is(sendErr, retry.ErrExhausted) && o.retryQueue != nil {
			if _, qErr := o.retryQueue.Enqueue(ctx, req, ch, sendErr); qErr != nil {
				o.logger.LogAttrs(ctx, slog.LevelError, "failed to queue retry record",
					logger.UserID(req.UserID),
					logger.Channel(ch),
					logger.Error(qErr),
				)
			}
		}
		return o.failChannel(ctx, req, notifID, ch, outcome.Attempts, start, sendErr, false)
	}

	attempt := deliverylog.Attempt{
		UserID:         req.UserID,
		NotificationID: notifID,
		Type:           req.Type,
		Channel:        ch,
		Status:         deliverylog.StatusSent,
		ProcessingTime: time.Since(start),
		RetryCount:     outcome.Attempts - 1,
		CreatedAt:      time.Now(),
	}
	if err := o.log.Record(ctx, attempt); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "failed to record delivery attempt",
			logger.UserID(req.UserID),
			logger.Channel(ch),
			logger.Error(err),
		)
	}

	return ChannelResult{Success: true, Attempts: outcome.Attempts}
}

// renderContent produces the channel-ready payload: rendered from the
// template store when the request names a slug, verbatim otherwise. A
// missing template falls back to the request's own title and message.
func (o *Orchestrator) renderContent(ctx context.Context, req notification.Request, ch notification.Channel) (*notification.Content, error) {
	direct := &notification.Content{
		Title:       req.Title,
		Body:        req.Message,
		ActionURL:   req.ActionURL,
		ActionLabel: req.ActionLabel,
	}

	if o.engine == nil || req.TemplateSlug == "" {
		return direct, nil
	}

	content, err := o.engine.Render(ctx, template.Key{
		Slug:     req.TemplateSlug,
		Channel:  ch,
		Language: req.Language,
	}, req.Metadata)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			return direct, nil
		}
		return nil, err
	}

	content.ActionURL = req.ActionURL
	content.ActionLabel = req.ActionLabel
	return content, nil
}

// recordSkipped writes a failed delivery attempt for a channel the user's
// preferences disabled. Policy rejections go through the delivery log like
// any other non-delivery, so suppressed sends stay auditable.
func (o *Orchestrator) recordSkipped(ctx context.Context, req notification.Request, notifID string, ch notification.Channel) {
	attempt := deliverylog.Attempt{
		UserID:         req.UserID,
		NotificationID: notifID,
		Type:           req.Type,
		Channel:        ch,
		Status:         deliverylog.StatusFailed,
		Error:          "disabled by preference",
		CreatedAt:      time.Now(),
	}
	if err := o.log.Record(ctx, attempt); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "failed to record delivery attempt",
			logger.UserID(req.UserID),
			logger.Channel(ch),
			logger.Error(err),
		)
	}
}

func (o *Orchestrator) failChannel(ctx context.Context, req notification.Request, notifID string, ch notification.Channel, attempts int, start time.Time, cause error, rateLimited bool) ChannelResult {
	retryCount := 0
	if attempts > 1 {
		retryCount = attempts - 1
	}

	attempt := deliverylog.Attempt{
		UserID:         req.UserID,
		NotificationID: notifID,
		Type:           req.Type,
		Channel:        ch,
		Status:         deliverylog.StatusFailed,
		Error:          cause.Error(),
		ProcessingTime: time.Since(start),
		RetryCount:     retryCount,
		CreatedAt:      time.Now(),
	}
	if err := o.log.Record(ctx, attempt); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "failed to record delivery attempt",
			logger.UserID(req.UserID),
			logger.Channel(ch),
			logger.Error(err),
		)
	}

	return ChannelResult{
		Attempts:    attempts,
		Error:       cause.Error(),
		RateLimited: rateLimited,
	}
}
