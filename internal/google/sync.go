package google

import (
	"context"
	"fmt"
	"time"

	"frontdesk/internal/availability"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"
	"frontdesk/internal/rates"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sheet ranges of the front desk workbook.
const (
	RoomsRange        = "Rooms!A2:C"
	ReservationsRange = "Reservations!A2:P"
	RatesRange        = "Ota_Rates!A24:S31"
	AvailabilitySheet = "Ota_availability"
)

// Reservations sheet columns.
const (
	ColGroupID = iota
	ColReservationID
	ColRoom
	ColGuest
	ColPhone
	ColAddress
	ColCheckin
	ColCheckout
	ColNights
	ColStatus
	ColSource
	ColAdults
	ColChildren
	ColPlan
	ColRate
	ColNotes
)

// Rooms sheet columns.
const (
	ColRoomNumber = iota
	ColRoomCategory
	ColRoomStatus
)

const (
	matrixRow   = 3
	firstOTARow = 17
	otaStride   = 11
)

// Store receives a sheet snapshot on import. Rooms and reservations are
// replaced together or not at all.
type Store interface {
	ReplaceSnapshot(ctx context.Context, rooms []models.Room, rows []models.Reservation) error
}

// Sync moves data between the spreadsheet and the local store.
type Sync struct {
	api    SheetsAPI
	loc    *time.Location
	logger *zerolog.Logger
}

func NewSync(api SheetsAPI, loc *time.Location, logger *zerolog.Logger) *Sync {
	if loc == nil {
		loc = time.UTC
	}
	return &Sync{api: api, loc: loc, logger: logger}
}

// ReadRooms reads the inventory. Rows without a room number are ignored.
func (s *Sync) ReadRooms(ctx context.Context) ([]models.Room, error) {
	values, err := s.api.Read(ctx, RoomsRange)
	if err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0, len(values))
	for _, row := range values {
		r := models.Room{
			Number:   cellString(cell(row, ColRoomNumber)),
			Category: cellString(cell(row, ColRoomCategory)),
			Status:   cellString(cell(row, ColRoomStatus)),
		}
		if r.Number == "" {
			continue
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

// ReadReservations reads every reservation row. Malformed room keys and
// unreadable dates are kept as empty values so the availability counter
// skips and reports them.
func (s *Sync) ReadReservations(ctx context.Context) ([]models.Reservation, error) {
	values, err := s.api.Read(ctx, ReservationsRange)
	if err != nil {
		return nil, err
	}

	out := make([]models.Reservation, 0, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		r := s.reservationFromRow(row, i+2)
		if r.GroupID == "" && r.Room.IsZero() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Sync) reservationFromRow(row []any, line int) models.Reservation {
	r := models.Reservation{
		GroupID:   cellString(cell(row, ColGroupID)),
		ID:        cellString(cell(row, ColReservationID)),
		GuestName: cellString(cell(row, ColGuest)),
		Phone:     cellString(cell(row, ColPhone)),
		Address:   cellString(cell(row, ColAddress)),
		Nights:    cellInt(cell(row, ColNights)),
		Status:    models.ReservationStatus(cellString(cell(row, ColStatus))),
		Source:    cellString(cell(row, ColSource)),
		Adults:    cellInt(cell(row, ColAdults)),
		Children:  cellInt(cell(row, ColChildren)),
		Plan:      cellString(cell(row, ColPlan)),
		Rate:      cellFloat(cell(row, ColRate)),
		Notes:     cellString(cell(row, ColNotes)),
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	key, err := models.ParseRoomKey(cellString(cell(row, ColRoom)))
	if err != nil {
		s.logger.Debug().Err(err).Int("row", line).Msg("Reservation room key not parsed")
		key.Category = ""
	}
	r.Room = key

	if r.Checkin, err = cellDate(cell(row, ColCheckin), s.loc); err != nil {
		s.logger.Debug().Err(err).Int("row", line).Msg("Checkin not parsed")
	}
	if r.Checkout, err = cellDate(cell(row, ColCheckout), s.loc); err != nil {
		s.logger.Debug().Err(err).Int("row", line).Msg("Checkout not parsed")
	}
	return r
}

// ReadRates reads the category rows of the rate sheet.
func (s *Sync) ReadRates(ctx context.Context) ([]rates.CategoryRates, error) {
	values, err := s.api.Read(ctx, RatesRange)
	if err != nil {
		return nil, err
	}
	var out []rates.CategoryRates
	for _, row := range values {
		category := cellString(cell(row, 0))
		if category == "" {
			continue
		}
		cells := make([]float64, rates.RowWidth-1)
		for i := range cells {
			cells[i] = cellFloat(cell(row, i+1))
		}
		out = append(out, rates.FromRow(category, cells))
	}
	return out, nil
}

// ImportResult counts what an import stored.
type ImportResult struct {
	Rooms        int `json:"rooms"`
	Reservations int `json:"reservations"`
}

// Import replaces the local rooms and reservations with the sheet contents.
func (s *Sync) Import(ctx context.Context, store Store) (ImportResult, error) {
	rooms, err := s.ReadRooms(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	reservations, err := s.ReadReservations(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	if err := store.ReplaceSnapshot(ctx, rooms, reservations); err != nil {
		return ImportResult{}, fmt.Errorf("store snapshot: %w", err)
	}
	metrics.AddReservationsSaved("import", len(reservations))
	s.logger.Info().Int("rooms", len(rooms)).Int("reservations", len(reservations)).Msg("Imported sheet snapshot")
	return ImportResult{Rooms: len(rooms), Reservations: len(reservations)}, nil
}

// WriteAvailability replaces the availability sheet with the category
// matrix followed by one block per channel.
func (s *Sync) WriteAvailability(ctx context.Context, m *availability.Matrix, otas []*availability.OTAMatrix) error {
	if err := s.api.Clear(ctx, fmt.Sprintf("%s!A%d:ZZ", AvailabilitySheet, matrixRow)); err != nil {
		return err
	}

	labels := m.Labels()
	values := [][]any{header("Category", labels)}
	for _, cat := range m.Categories {
		values = append(values, countRow(cat, m.Counts[cat]))
	}
	if err := s.api.Write(ctx, cellRange(matrixRow), values); err != nil {
		return err
	}

	row := max(firstOTARow, matrixRow+len(values)+1)
	for _, ota := range otas {
		block := [][]any{header(ota.Prefix+"Category", labels)}
		for _, b := range ota.Buckets {
			block = append(block, countRow(b, ota.Counts[b]))
		}
		if err := s.api.Write(ctx, cellRange(row), block); err != nil {
			return err
		}
		row += max(otaStride, len(block)+1)
	}

	s.logger.Info().Int("segments", len(m.Segments)).Int("channels", len(otas)).Msg("Availability written to sheet")
	return nil
}

func cellRange(row int) string {
	return fmt.Sprintf("%s!A%d", AvailabilitySheet, row)
}

func header(first string, labels []string) []any {
	out := make([]any, 0, len(labels)+1)
	out = append(out, first)
	for _, l := range labels {
		out = append(out, l)
	}
	return out
}

func countRow(name string, counts []int) []any {
	out := make([]any, 0, len(counts)+1)
	out = append(out, name)
	for _, c := range counts {
		out = append(out, c)
	}
	return out
}
