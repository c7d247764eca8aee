package availability

import (
	"errors"
	"fmt"
	"time"

	"frontdesk/internal/metrics"
	"frontdesk/internal/models"

	"github.com/rs/zerolog"
)

// ErrInvalidRange is returned when the requested date range is unusable.
var ErrInvalidRange = errors.New("invalid date range")

// Matrix is the per-category availability over change-point segments.
type Matrix struct {
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	Segments   []Segment        `json:"segments"`
	Categories []string         `json:"categories"`
	Counts     map[string][]int `json:"counts"`
	Skipped    SkipReport       `json:"skipped"`
}

// Labels returns the segment column headers.
func (m *Matrix) Labels() []string {
	labels := make([]string, len(m.Segments))
	for i, s := range m.Segments {
		labels[i] = s.Label()
	}
	return labels
}

// Value returns the count of category in segment i.
func (m *Matrix) Value(category string, i int) (int, bool) {
	row, ok := m.Counts[category]
	if !ok || i < 0 || i >= len(row) {
		return 0, false
	}
	return row[i], true
}

// Engine computes availability matrices in a fixed time zone.
type Engine struct {
	loc    *time.Location
	logger *zerolog.Logger
}

// NewEngine builds an engine; a nil location means UTC.
func NewEngine(loc *time.Location, logger *zerolog.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Engine{loc: loc, logger: logger}
}

// Location returns the engine time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Compute builds the availability matrix for [start, end] inclusive.
func (e *Engine) Compute(start, end time.Time, rooms []models.Room, reservations []models.Reservation) (*Matrix, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidRange)
	}
	start = models.Midnight(start, e.loc)
	end = models.Midnight(end, e.loc)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout))
	}

	inv := NewInventory(rooms)
	days := models.Days(start, end, e.loc)
	table, skipped := CountOccupancy(days, inv, reservations, e.loc)
	segments := SegmentsFrom(ChangePoints(table))

	index := make(map[string]int, len(days))
	for i := range days {
		index[table.Key(i)] = i
	}

	counts := make(map[string][]int, len(inv.Categories))
	for _, cat := range inv.Categories {
		row := make([]int, len(segments))
		for i, seg := range segments {
			row[i] = table.Value(cat, index[seg.From.Format(DateLayout)])
		}
		counts[cat] = row
	}

	e.report(skipped)
	metrics.IncAvailabilityComputed()
	e.logger.Debug().
		Str("start", start.Format(DateLayout)).
		Str("end", end.Format(DateLayout)).
		Int("categories", len(inv.Categories)).
		Int("segments", len(segments)).
		Msg("availability computed")

	return &Matrix{
		Start:      start,
		End:        end,
		Segments:   segments,
		Categories: inv.Categories,
		Counts:     counts,
		Skipped:    skipped,
	}, nil
}

func (e *Engine) report(s SkipReport) {
	metrics.AddSkipped("malformed_room_key", s.MalformedRoomKeys)
	metrics.AddSkipped("unknown_category", s.UnknownCategories)
	metrics.AddSkipped("missing_dates", s.MissingDates)
	if s.Total() == 0 {
		return
	}
	e.logger.Warn().
		Int("malformed_room_keys", s.MalformedRoomKeys).
		Int("unknown_categories", s.UnknownCategories).
		Int("missing_dates", s.MissingDates).
		Msg("confirmed reservations ignored by occupancy count")
}
