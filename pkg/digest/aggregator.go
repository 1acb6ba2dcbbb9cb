package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/notifykit/notifykit/pkg/dispatch"
	"github.com/notifykit/notifykit/pkg/logger"
	"github.com/notifykit/notifykit/pkg/notification"
	"github.com/notifykit/notifykit/pkg/template"
)

// Dispatcher delivers the digest notification. Satisfied by
// *dispatch.Orchestrator.
type Dispatcher interface {
	Send(ctx context.Context, req notification.Request) (*dispatch.Result, error)
}

// UserResolver supplies per-user locale information for digest rendering.
// Both methods may return zero values; the aggregator falls back to the
// default language and UTC.
type UserResolver interface {
	Language(ctx context.Context, userID string) string
	Location(ctx context.Context, userID string) *time.Location
}

// UserSource enumerates the users whose stored preference subscribes them to
// a digest period. Backed by whatever owns user preferences in the host
// application.
type UserSource interface {
	DigestUsers(ctx context.Context, period Period) ([]string, error)
}

// Aggregator builds and delivers periodic digests of unread notifications.
// Only low and normal priority notifications are digested; high and urgent
// ones are always delivered immediately and never deferred into a summary.
type Aggregator struct {
	store      notification.Storage
	dispatcher Dispatcher
	translator *template.Translator
	users      UserResolver
	source     UserSource
	log        *slog.Logger
	clock      func() time.Time
	maxItems   int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithUserResolver sets the per-user language and timezone source.
func WithUserResolver(r UserResolver) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.users = r
		}
	}
}

// WithUserSource sets the subscription source that ProcessPeriod iterates.
func WithUserSource(s UserSource) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.source = s
		}
	}
}

// WithTranslator sets the phrase translator used for digest titles and
// bodies.
func WithTranslator(t *template.Translator) Option {
	return func(a *Aggregator) {
		if t != nil {
			a.translator = t
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMaxItems caps how many notifications a single digest covers.
func WithMaxItems(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxItems = n
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// New creates a digest Aggregator.
func New(store notification.Storage, dispatcher Dispatcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:      store,
		dispatcher: dispatcher,
		translator: template.NewTranslator(),
		log:        slog.Default(),
		clock:      time.Now,
		maxItems:   50,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateDigest aggregates the user's unread low and normal priority
// notifications since the start of the period. It returns nil when there is
// nothing to digest, so callers never deliver empty summaries.
func (a *Aggregator) CreateDigest(ctx context.Context, userID string, period Period) (*Digest, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	since := period.since(a.clock(), a.location(ctx, userID))
	notifs, err := a.store.List(ctx, userID, notification.ListOptions{
		OnlyUnread: true,
		Priorities: []notification.Priority{notification.PriorityLow, notification.PriorityNormal},
		Since:      &since,
		Limit:      a.maxItems,
	})
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	if len(notifs) == 0 {
		return nil, nil
	}

	byType := make(map[notification.Type]int)
	ids := make([]string, 0, len(notifs))
	for _, n := range notifs {
		byType[n.Type]++
		ids = append(ids, n.ID)
	}

	counts := make([]TypeCount, 0, len(byType))
	for typ, count := range byType {
		counts = append(counts, TypeCount{Type: typ, Count: count})
	}
	// Largest groups first; ties broken by type for stable output.
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Type < counts[j].Type
	})

	return &Digest{
		UserID:    userID,
		Period:    period,
		Since:     since,
		Total:     len(notifs),
		Counts:    counts,
		SourceIDs: ids,
	}, nil
}

// SendDigest builds the user's digest for the period and delivers it as a
// single system announcement. Source notifications are marked read only
// after the digest was delivered, so a failed send leaves them eligible for
// the next run. A nil return with no error means there was nothing to send.
func (a *Aggregator) SendDigest(ctx context.Context, userID string, period Period) (*Digest, error) {
	d, err := a.CreateDigest(ctx, userID, period)
	if err != nil || d == nil {
		return nil, err
	}

	lang := a.language(ctx, userID)
	title := a.translator.T(lang, "digest.title."+string(period), d.Total)

	var body strings.Builder
	body.WriteString(a.translator.T(lang, "digest.body.header"))
	for _, tc := range d.Counts {
		body.WriteString("\n")
		body.WriteString(a.translator.T(lang, "digest.body.line", tc.Count, tc.Type.Label()))
	}

	res, err := a.dispatcher.Send(ctx, notification.Request{
		UserID:   userID,
		Type:     notification.TypeSystemAnnouncement,
		Title:    title,
		Message:  body.String(),
		Priority: notification.PriorityNormal,
		Channels: []notification.Channel{notification.ChannelEmail},
		Language: lang,
		Metadata: map[string]string{"digest_period": string(period)},
	})
	if err != nil {
		return nil, fmt.Errorf("send digest: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrDeliveryFailed, res.FailureReason())
	}

	if err := a.store.MarkRead(ctx, userID, d.SourceIDs...); err != nil {
		// The digest went out; a duplicate next run beats losing it.
		a.log.LogAttrs(ctx, slog.LevelError, "failed to mark digested notifications read",
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	a.log.LogAttrs(ctx, slog.LevelInfo, "digest sent",
		logger.UserID(userID),
		slog.String("period", string(period)),
		slog.Int("notifications", d.Total),
	)
	return d, nil
}

// ProcessDigests sends period digests for each user. A failure for one user
// never blocks the rest; per-user errors are logged and counted.
func (a *Aggregator) ProcessDigests(ctx context.Context, userIDs []string, period Period) (Stats, error) {
	stats := Stats{Users: len(userIDs)}
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		d, err := a.SendDigest(ctx, userID, period)
		switch {
		case err != nil:
			stats.Failed++
			a.log.LogAttrs(ctx, slog.LevelWarn, "digest delivery failed",
				logger.UserID(userID),
				slog.String("period", string(period)),
				logger.Error(err),
			)
		case d == nil:
			stats.Empty++
		default:
			stats.Sent++
		}
	}
	return stats, nil
}

// ProcessPeriod sends digests to every user the configured UserSource
// subscribes to the period. This is the entry point for the periodic sweep:
// the aggregator owns user enumeration, callers only name the period.
func (a *Aggregator) ProcessPeriod(ctx context.Context, period Period) (Stats, error) {
	if a.source == nil {
		return Stats{}, ErrUserSourceRequired
	}
	if !period.Valid() {
		return Stats{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	userIDs, err := a.source.DigestUsers(ctx, period)
	if err != nil {
		return Stats{}, fmt.Errorf("list digest users: %w", err)
	}
	return a.ProcessDigests(ctx, userIDs, period)
}

func (a *Aggregator) language(ctx context.Context, userID string) string {
	if a.users == nil {
		return ""
	}
	return a.users.Language(ctx, userID)
}

func (a *Aggregator) location(ctx context.Context, userID string) *time.Location {
	if a.users != nil {
		if loc := a.users.Location(ctx, userID); loc != nil {
			return loc
		}
	}
	return time.UTC
}
