package rooms

import (
	"time"

	"frontdesk/internal/models"

	"github.com/rs/zerolog"
)

// Query describes a candidate stay. Nil dates disable the date filter.
type Query struct {
	Checkin        *time.Time
	Checkout       *time.Time
	ExcludeGroupID string
}

// HasDates reports whether both candidate dates are set.
func (q Query) HasDates() bool {
	return q.Checkin != nil && q.Checkout != nil && !q.Checkin.IsZero() && !q.Checkout.IsZero()
}

// Resolver finds rooms that are free for a candidate stay.
type Resolver struct {
	loc    *time.Location
	logger *zerolog.Logger
}

// NewResolver creates a resolver working in loc.
func NewResolver(loc *time.Location, logger *zerolog.Logger) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Resolver{loc: loc, logger: logger}
}

// Booked returns the keys of rooms held by a Confirmed or Blocked
// reservation overlapping the query. Reservations of the excluded group
// never count.
func (r *Resolver) Booked(q Query, reservations []models.Reservation) map[models.RoomKey]bool {
	booked := make(map[models.RoomKey]bool)
	if !q.HasDates() {
		return booked
	}
	in := models.Midnight(*q.Checkin, r.loc)
	out := models.Midnight(*q.Checkout, r.loc)

	for i := range reservations {
		res := &reservations[i]
		if q.ExcludeGroupID != "" && res.GroupID == q.ExcludeGroupID {
			continue
		}
		if res.Room.IsZero() || !res.HasDates() {
			continue
		}
		if !res.BlocksRoom() {
			continue
		}
		if res.OverlapsRange(in, out, r.loc) {
			booked[res.Room] = true
		}
	}
	return booked
}

// Available returns the rooms with status "available" that no overlapping
// reservation holds, in inventory order.
func (r *Resolver) Available(q Query, inventory []models.Room, reservations []models.Reservation) []models.Room {
	booked := r.Booked(q, reservations)

	out := make([]models.Room, 0, len(inventory))
	for _, room := range inventory {
		if !room.IsAvailable() {
			continue
		}
		if booked[room.Key()] {
			continue
		}
		out = append(out, room)
	}

	r.logger.Debug().
		Bool("dated", q.HasDates()).
		Str("exclude_group", q.ExcludeGroupID).
		Int("booked", len(booked)).
		Int("available", len(out)).
		Msg("room availability resolved")
	return out
}
