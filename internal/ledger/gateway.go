// Package ledger is the gateway to the trip ledger. It validates requests,
// checks the caller's trip membership, sequences multi-step writes into single
// units of work and classifies every failure into the error taxonomy in
// errors.go. Transports (REST, RPC) call the Gateway and nothing else.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prathap24reddy/billsplit-complete/internal/events"
	"github.com/prathap24reddy/billsplit-complete/internal/metrics"
	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/session"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// publishTimeout bounds post-commit event delivery.
const publishTimeout = 5 * time.Second

// Gateway is the façade over the ledger store.
type Gateway struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	policy    BalancePolicy
	authorize bool
	now       func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPublisher sets the post-commit event publisher (default: events.Noop).
func WithPublisher(p events.Publisher) Option {
	return func(g *Gateway) { g.publisher = p }
}

// WithMetrics records operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithBalancePolicy sets how imbalanced allocations are handled (default: PolicyWarn).
func WithBalancePolicy(p BalancePolicy) Option {
	return func(g *Gateway) { g.policy = p }
}

// WithClock overrides time.Now for trip start dates and transaction dates.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithoutAuthorization disables the tripMember capability checks. Only for
// trusted in-process callers such as seeding tools.
func WithoutAuthorization() Option {
	return func(g *Gateway) { g.authorize = false }
}

// New creates a Gateway that owns store. Close releases it.
func New(store storage.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:     store,
		publisher: events.Noop{},
		logger:    slog.Default(),
		policy:    PolicyWarn,
		authorize: true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Close flushes the publisher and closes the store.
func (g *Gateway) Close() error {
	return errors.Join(g.publisher.Close(), g.store.Close())
}

// finish classifies *errp, records metrics and logs unexpected failures.
// Every exported operation defers it, so no raw storage error escapes.
func (g *Gateway) finish(op string, start time.Time, errp *error) {
	outcome := "ok"
	if *errp != nil {
		*errp = translate(op, *errp)
		kind := KindOf(*errp)
		outcome = kind.String()
		if kind == KindStorage {
			g.logger.Error("Ledger operation failed", "op", op, "error", *errp)
		} else {
			g.logger.Debug("Ledger operation rejected", "op", op, "kind", outcome, "error", *errp)
		}
	}
	g.metrics.ObserveOperation(op, outcome, time.Since(start))
}

func (g *Gateway) clock() time.Time {
	return g.now().UTC()
}

// actor returns the caller's user id from the session.
func (g *Gateway) actor(ctx context.Context, op string) (string, error) {
	userID := session.UserID(ctx)
	if g.authorize && userID == "" {
		return "", &Error{Op: op, Kind: KindUnauthenticated, Msg: "authentication required"}
	}
	return userID, nil
}

// requireMember enforces the tripMember capability.
func (g *Gateway) requireMember(ctx context.Context, q storage.Queries, op, tripID, actorID string) error {
	if !g.authorize {
		return nil
	}
	ok, err := q.IsMember(ctx, tripID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return &Error{Op: op, Kind: KindForbidden, Msg: "you must be a member of this trip"}
	}
	return nil
}

func (g *Gateway) publish(ctx context.Context, event events.Event) {
	event.ActorID = session.UserID(ctx)
	event.OccurredAt = g.clock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := g.publisher.Publish(ctx, event); err != nil {
		g.logger.Warn("Failed to publish ledger event", "type", event.Type, "error", err)
	}
}

func getTrip(ctx context.Context, q storage.Queries, op, tripID string) (*models.Trip, error) {
	trip, err := q.GetTrip(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(op, "trip", tripID)
	}
	return trip, err
}

func getUser(ctx context.Context, q storage.Queries, op, userID string) (*models.User, error) {
	user, err := q.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(op, "user", userID)
	}
	return user, err
}

func getTransaction(ctx context.Context, q storage.Queries, op, transactionID string) (*models.Transaction, error) {
	tx, err := q.GetTransaction(ctx, transactionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(op, "transaction", transactionID)
	}
	return tx, err
}

// required rejects blank identifiers. Pairs are (field name, value).
func required(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return validationError(op, "%s is required", pairs[i])
		}
	}
	return nil
}

func conflict(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}
