package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prathap24reddy/billsplit-complete/internal/events"
	"github.com/prathap24reddy/billsplit-complete/internal/models"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// CreateTrip creates a trip and makes creatorID its first member.
// Both rows are written in one unit of work.
func (g *Gateway) CreateTrip(ctx context.Context, name, creatorID string) (_ *models.Trip, err error) {
	const op = "CreateTrip"
	defer g.finish(op, time.Now(), &err)

	name = strings.TrimSpace(name)
	if err := required(op, "name", name, "user_id", creatorID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	if g.authorize && actorID != creatorID {
		return nil, &Error{Op: op, Kind: KindForbidden, Msg: "trips can only be created for yourself"}
	}

	trip := &models.Trip{Name: name, StartDate: g.clock()}
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		if _, err := getUser(ctx, q, op, creatorID); err != nil {
			return err
		}
		if err := q.CreateTrip(ctx, trip); err != nil {
			return err
		}
		return q.AddMembership(ctx, models.Membership{TripID: trip.ID, UserID: creatorID})
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Trip created", "trip_id", trip.ID, "creator_id", creatorID)
	g.publish(ctx, events.Event{Type: events.TripCreated, TripID: trip.ID, UserID: creatorID})
	return trip, nil
}

// AddMembership adds userID to tripID. The caller must already be a member.
// An existing membership is a conflict.
func (g *Gateway) AddMembership(ctx context.Context, tripID, userID string) (_ *models.Membership, err error) {
	const op = "AddMembership"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "trip_id", tripID, "user_id", userID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	m := models.Membership{TripID: tripID, UserID: userID}
	err = g.store.InTx(ctx, func(ctx context.Context, q storage.Queries) error {
		if _, err := getTrip(ctx, q, op, tripID); err != nil {
			return err
		}
		if err := g.requireMember(ctx, q, op, tripID, actorID); err != nil {
			return err
		}
		if _, err := getUser(ctx, q, op, userID); err != nil {
			return err
		}
		err := q.AddMembership(ctx, m)
		if errors.Is(err, storage.ErrConflict) {
			return conflict(op, "user %s is already a member of this trip", userID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Membership added", "trip_id", tripID, "user_id", userID)
	g.publish(ctx, events.Event{Type: events.MembershipAdded, TripID: tripID, UserID: userID})
	return &m, nil
}

// ListTripsForUser returns the trips userID belongs to, most recent first.
func (g *Gateway) ListTripsForUser(ctx context.Context, userID string) (_ []*models.Trip, err error) {
	const op = "ListTripsForUser"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "user_id", userID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	if g.authorize && actorID != userID {
		return nil, &Error{Op: op, Kind: KindForbidden, Msg: "you can only list your own trips"}
	}

	if _, err := getUser(ctx, g.store, op, userID); err != nil {
		return nil, err
	}
	trips, err := g.store.ListTripsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []*models.Trip{}
	}
	return trips, nil
}

// ListMembers returns the id and name of every member of tripID.
func (g *Gateway) ListMembers(ctx context.Context, tripID string) (_ []models.Member, err error) {
	const op = "ListMembers"
	defer g.finish(op, time.Now(), &err)

	if err := required(op, "trip_id", tripID); err != nil {
		return nil, err
	}
	actorID, err := g.actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if _, err := getTrip(ctx, g.store, op, tripID); err != nil {
		return nil, err
	}
	if err := g.requireMember(ctx, g.store, op, tripID, actorID); err != nil {
		return nil, err
	}
	members, err := g.store.ListMembers(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

// ListUsers returns every registered user ordered by name.
func (g *Gateway) ListUsers(ctx context.Context) (_ []*models.User, err error) {
	const op = "ListUsers"
	defer g.finish(op, time.Now(), &err)

	if _, err := g.actor(ctx, op); err != nil {
		return nil, err
	}
	users, err := g.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}
