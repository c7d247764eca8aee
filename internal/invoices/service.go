package invoices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"frontdesk/internal/events"
	"frontdesk/internal/models"
	"frontdesk/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NumberPrefix starts every invoice number.
const NumberPrefix = "INV-"

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Store persists invoice headers and their items.
type Store interface {
	InvoiceNumbers(ctx context.Context) ([]string, error)
	// InvoiceByGroup returns nil without error when the group has no invoice.
	InvoiceByGroup(ctx context.Context, groupID string) (*models.Invoice, error)
	InsertInvoice(ctx context.Context, inv *models.Invoice) error
	// UpdateInvoice rewrites the header and replaces all items.
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	ReservationsByGroup(ctx context.Context, groupID string) ([]models.Reservation, error)
}

// BookingSummary is the booking context shown on the invoice form.
type BookingSummary struct {
	GroupID       string   `json:"booking_group_id"`
	GuestName     string   `json:"guest_name"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	Checkin       string   `json:"checkin"`
	Checkout      string   `json:"checkout"`
	Rooms         []string `json:"rooms"`
	TotalAdults   int      `json:"total_adults"`
	TotalChildren int      `json:"total_children"`
	Status        string   `json:"status"`
	Source        string   `json:"source"`
}

// Service manages invoices.
type Service struct {
	store    Store
	bus      *events.Bus
	validate *validation.Validator
	loc      *time.Location
	logger   *zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the invoice service. bus may be nil.
func NewService(store Store, bus *events.Bus, loc *time.Location, logger *zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		bus:      bus,
		validate: validation.New(),
		loc:      loc,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NextNumber returns INV-<year>-NNN, one above the highest number issued in
// the year of now.
func (s *Service) NextNumber(ctx context.Context, now time.Time) (string, error) {
	numbers, err := s.store.InvoiceNumbers(ctx)
	if err != nil {
		return "", fmt.Errorf("list invoice numbers: %w", err)
	}
	return NextNumber(numbers, now.In(s.loc).Year()), nil
}

// NextNumber picks the next sequence for year among existing numbers.
// Numbers from other years or with a non-numeric tail are ignored.
func NextNumber(existing []string, year int) string {
	prefix := NumberPrefix + strconv.Itoa(year) + "-"
	maxSeq := 0
	for _, n := range existing {
		tail, ok := strings.CutPrefix(strings.TrimSpace(n), prefix)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(tail)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxSeq+1)
}

// Save inserts a new invoice or, when the id is set, updates it and
// replaces its items. Kitchen orders follow through the event bus.
func (s *Service) Save(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	if err := s.validate.Struct(inv); err != nil {
		return nil, err
	}

	now := s.now()
	isNew := inv.ID == ""
	if isNew {
		inv.ID = s.newID()
	}
	if inv.Date.IsZero() {
		inv.Date = models.Midnight(now, s.loc)
	}
	inv.CreatedAt = now
	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID
		item.ID = s.newID()
		item.Date = now
		item.Status = item.EffectiveStatus()
	}

	var err error
	if isNew {
		err = s.store.InsertInvoice(ctx, inv)
	} else {
		err = s.store.UpdateInvoice(ctx, inv)
	}
	if err != nil {
		return nil, fmt.Errorf("save invoice %s: %w", inv.Number, err)
	}

	s.logger.Info().
		Str("invoice", inv.Number).
		Str("group_id", inv.GroupID).
		Bool("new", isNew).
		Int("items", len(inv.Items)).
		Msg("invoice saved")

	if s.bus != nil {
		if err := s.bus.PublishJSON(events.InvoiceSaved, inv); err != nil {
			s.logger.Error().Err(err).Str("invoice", inv.Number).Msg("publish invoice saved")
		}
	}
	return inv, nil
}

// Load returns the invoice of a booking group.
func (s *Service) Load(ctx context.Context, groupID string) (*models.Invoice, error) {
	inv, err := s.store.InvoiceByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load invoice for %s: %w", groupID, err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, groupID)
	}
	for i := range inv.Items {
		inv.Items[i].Status = inv.Items[i].EffectiveStatus()
	}
	return inv, nil
}

// BookingSummary collects the guest, rooms and head counts of a group.
func (s *Service) BookingSummary(ctx context.Context, groupID string) (*BookingSummary, error) {
	rows, err := s.store.ReservationsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", groupID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, groupID)
	}

	first := rows[0]
	sum := &BookingSummary{
		GroupID:   groupID,
		GuestName: first.GuestName,
		Phone:     first.Phone,
		Address:   first.Address,
		Checkin:   s.format(first.Checkin),
		Checkout:  s.format(first.Checkout),
		Status:    string(first.Status),
		Source:    first.Source,
	}
	for _, r := range rows {
		sum.Rooms = append(sum.Rooms, r.Room.String())
		sum.TotalAdults += r.Adults
		sum.TotalChildren += r.Children
	}
	return sum, nil
}

func (s *Service) format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format("2006-01-02")
}
