package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frontdesk/internal/events"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"
	"frontdesk/internal/rooms"
	"frontdesk/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DateLayout is the wire format of stay dates.
const DateLayout = "2006-01-02"

var (
	ErrEmptyGroup    = errors.New("no reservations to save")
	ErrGroupNotFound = errors.New("booking group not found")
)

// Store persists reservations in sheet order.
type Store interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	ReservationsByGroup(ctx context.Context, groupID string) ([]models.Reservation, error)
	// ReplaceGroup deletes the group's rows and inserts rows at the position
	// of the first deleted one, or appends when the group is new.
	ReplaceGroup(ctx context.Context, groupID string, rows []models.Reservation) error
	DeleteReservation(ctx context.Context, reservationID string) error
}

// Draft is one room line of the booking form.
type Draft struct {
	GroupID   string  `json:"booking_group_id"`
	Room      string  `json:"room" validate:"required"`
	GuestName string  `json:"guest" validate:"required"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Checkin   string  `json:"checkin" validate:"required,datetime=2006-01-02"`
	Checkout  string  `json:"checkout" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required"`
	Source    string  `json:"source"`
	Adults    int     `json:"adults" validate:"gte=0"`
	Children  int     `json:"children" validate:"gte=0"`
	Plan      string  `json:"plan"`
	Rate      float64 `json:"rate" validate:"gte=0"`
	Notes     string  `json:"notes"`
}

// Group is a booking group as the edit form shows it.
type Group struct {
	GroupID   string               `json:"booking_group_id"`
	GuestName string               `json:"guest"`
	Phone     string               `json:"phone"`
	Address   string               `json:"address"`
	Checkin   string               `json:"checkin"`
	Checkout  string               `json:"checkout"`
	Adults    int                  `json:"adults"`
	Children  int                  `json:"children"`
	Plan      string               `json:"plan"`
	Rate      float64              `json:"rate"`
	Source    string               `json:"source"`
	Status    string               `json:"status"`
	Notes     string               `json:"notes"`
	Rooms     []models.Reservation `json:"reservations"`
}

// Service manages booking groups.
type Service struct {
	store    Store
	resolver *rooms.Resolver
	bus      *events.Bus
	validate *validation.Validator
	loc      *time.Location
	logger   *zerolog.Logger
	newID    func() string
}

// NewService wires the reservation service. bus may be nil.
func NewService(store Store, resolver *rooms.Resolver, bus *events.Bus, loc *time.Location, logger *zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		resolver: resolver,
		bus:      bus,
		validate: validation.New(),
		loc:      loc,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// SaveGroup stores drafts as one booking group and returns the saved rows.
// The group id comes from the first draft; a blank id starts a new group.
func (s *Service) SaveGroup(ctx context.Context, drafts []Draft) ([]models.Reservation, error) {
	if len(drafts) == 0 {
		return nil, ErrEmptyGroup
	}

	groupID := strings.TrimSpace(drafts[0].GroupID)
	isNew := groupID == ""
	if isNew {
		groupID = s.newID()
	}

	rows := make([]models.Reservation, 0, len(drafts))
	for i := range drafts {
		row, err := s.toReservation(&drafts[i])
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", i+1, err)
		}
		row.GroupID = groupID
		row.ID = s.newID()
		rows = append(rows, row)
	}

	if err := s.store.ReplaceGroup(ctx, groupID, rows); err != nil {
		return nil, fmt.Errorf("save booking group %s: %w", groupID, err)
	}

	op := "update"
	if isNew {
		op = "create"
	}
	metrics.AddReservationsSaved(op, len(rows))
	s.logger.Info().
		Str("group_id", groupID).
		Str("op", op).
		Int("rooms", len(rows)).
		Msg("booking group saved")

	s.publish(events.ReservationSaved, map[string]any{"booking_group_id": groupID, "rooms": len(rows)})
	return rows, nil
}

func (s *Service) toReservation(d *Draft) (models.Reservation, error) {
	if err := s.validate.Struct(d); err != nil {
		return models.Reservation{}, err
	}
	key, err := models.ParseRoomKey(d.Room)
	if err != nil {
		return models.Reservation{}, validation.Fail("room", err.Error())
	}
	checkin, err := time.ParseInLocation(DateLayout, d.Checkin, s.loc)
	if err != nil {
		return models.Reservation{}, validation.Fail("checkin", err.Error())
	}
	checkout, err := time.ParseInLocation(DateLayout, d.Checkout, s.loc)
	if err != nil {
		return models.Reservation{}, validation.Fail("checkout", err.Error())
	}
	if !checkin.Before(checkout) {
		return models.Reservation{}, validation.Fail("checkout", "must be after checkin")
	}

	return models.Reservation{
		Room:      key,
		GuestName: strings.TrimSpace(d.GuestName),
		Phone:     strings.TrimSpace(d.Phone),
		Address:   d.Address,
		Checkin:   checkin,
		Checkout:  checkout,
		Nights:    models.NightsBetween(checkin, checkout, s.loc),
		Status:    models.ReservationStatus(d.Status),
		Source:    d.Source,
		Adults:    d.Adults,
		Children:  d.Children,
		Plan:      d.Plan,
		Rate:      d.Rate,
		Notes:     d.Notes,
	}, nil
}

// LoadGroup returns the group with shared fields from its first row and
// guest totals across rows.
func (s *Service) LoadGroup(ctx context.Context, groupID string) (*Group, error) {
	rows, err := s.store.ReservationsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load booking group %s: %w", groupID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}

	first := rows[0]
	g := &Group{
		GroupID:   groupID,
		GuestName: first.GuestName,
		Phone:     first.Phone,
		Address:   first.Address,
		Checkin:   s.formatDate(first.Checkin),
		Checkout:  s.formatDate(first.Checkout),
		Plan:      first.Plan,
		Rate:      first.Rate,
		Source:    first.Source,
		Status:    string(first.Status),
		Notes:     first.Notes,
		Rooms:     rows,
	}
	for _, r := range rows {
		g.Adults += r.Adults
		g.Children += r.Children
	}
	return g, nil
}

func (s *Service) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(DateLayout)
}

// Delete removes a single reservation row.
func (s *Service) Delete(ctx context.Context, reservationID string) error {
	if err := s.store.DeleteReservation(ctx, reservationID); err != nil {
		return fmt.Errorf("delete reservation %s: %w", reservationID, err)
	}
	metrics.AddReservationsSaved("delete", 1)
	s.logger.Info().Str("reservation_id", reservationID).Msg("reservation deleted")
	s.publish(events.ReservationDeleted, map[string]string{"reservation_id": reservationID})
	return nil
}

// AvailableRooms lists rooms bookable for q against the current snapshot.
func (s *Service) AvailableRooms(ctx context.Context, q rooms.Query) ([]models.Room, error) {
	inventory, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return s.resolver.Available(q, inventory, reservations), nil
}

func (s *Service) publish(eventType string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish failed")
	}
}
