package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"frontdesk/internal/availability"
	"frontdesk/internal/database"
	"frontdesk/internal/export"
	"frontdesk/internal/google"
	"frontdesk/internal/invoices"
	"frontdesk/internal/models"
	"frontdesk/internal/rates"
	"frontdesk/internal/reservations"
	"frontdesk/internal/rooms"
	"frontdesk/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "valid-key"

type fakeSheets struct {
	written *availability.Matrix
	otas    int
	rates   []rates.CategoryRates
	err     error
}

func (f *fakeSheets) WriteAvailability(_ context.Context, m *availability.Matrix, otas []*availability.OTAMatrix) error {
	if f.err != nil {
		return f.err
	}
	f.written = m
	f.otas = len(otas)
	return nil
}

func (f *fakeSheets) ReadRates(context.Context) ([]rates.CategoryRates, error) {
	return f.rates, f.err
}

func (f *fakeSheets) Import(context.Context, google.Store) (google.ImportResult, error) {
	return google.ImportResult{Rooms: 3}, f.err
}

type testServer struct {
	handler http.Handler
	db      *database.DB
}

func jan(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func setupTestServer(t *testing.T, sheets SheetsSync) *testServer {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), time.UTC, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.ReplaceRooms(ctx, []models.Room{
		{Number: "101", Category: "Deluxe non view", Status: "Available"},
		{Number: "102", Category: "Deluxe non view", Status: "Available"},
		{Number: "103", Category: "Deluxe non view", Status: "Available"},
		{Number: "201", Category: "Standard non view", Status: "Maintenance"},
	}))
	require.NoError(t, db.ReplaceReservations(ctx, []models.Reservation{
		{ID: "a", GroupID: "GA", Room: models.RoomKey{Number: "101", Category: "Deluxe non view"},
			GuestName: "Asha", Checkin: jan(1), Checkout: jan(3), Status: models.StatusConfirmed, Adults: 2},
		{ID: "b", GroupID: "GB", Room: models.RoomKey{Number: "102", Category: "Deluxe non view"},
			GuestName: "Ravi", Checkin: jan(2), Checkout: jan(3), Status: models.StatusConfirmed, Adults: 1},
		{ID: "c", GroupID: "GC", Room: models.RoomKey{Number: "103", Category: "Deluxe non view"},
			GuestName: "Hold", Checkin: jan(1), Checkout: jan(2), Status: models.StatusBlocked},
	}))

	engine := availability.NewEngine(time.UTC, &logger)
	avail := service.NewAvailabilityService(db, engine, availability.BuiltinMappings(), nil, &logger)
	resolver := rooms.NewResolver(time.UTC, &logger)

	deps := Deps{
		Availability: avail,
		Reservations: reservations.NewService(db, resolver, nil, time.UTC, &logger),
		Invoices:     invoices.NewService(db, nil, time.UTC, &logger),
		Rates:        rates.NewClient("", nil, &logger),
		Store:        db,
		Location:     time.UTC,
		Logger:       &logger,
		Now:          func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
	if sheets != nil {
		deps.Sheets = sheets
	}
	srv := NewHTTPServer(Options{APIKey: testAPIKey, MaxRangeDays: 90, CalendarDays: 7, HotelCode: "H1"}, deps)
	return &testServer{handler: srv.Handler(), db: db}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, testAPIKey)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAPIKey(t *testing.T) {
	ts := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/next-number", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req.Header.Set(APIKeyHeader, "wrong")
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvailability_Validation(t *testing.T) {
	ts := setupTestServer(t, nil)

	tests := []struct {
		name      string
		body      any
		wantError string
	}{
		{"missing fields", map[string]string{}, "start_date and end_date are required"},
		{"bad start", map[string]string{"start_date": "01-01-2025", "end_date": "2025-01-04"}, "invalid start_date format; expected YYYY-MM-DD"},
		{"bad end", map[string]string{"start_date": "2025-01-01", "end_date": "04/01/2025"}, "invalid end_date format; expected YYYY-MM-DD"},
		{"reversed", map[string]string{"start_date": "2025-01-04", "end_date": "2025-01-01"}, "start_date must be before or equal to end_date"},
		{"too long", map[string]string{"start_date": "2025-01-01", "end_date": "2025-06-01"}, "date range exceeds maximum of 90 days"},
		{"invalid json", "not json", "invalid JSON body"},
		{"unknown field", map[string]string{"start_date": "2025-01-01", "end_date": "2025-01-02", "x": "y"}, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/availability", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantError, decode[ErrorResponse](t, w).Error)
		})
	}
}

func TestAvailability_Matrix(t *testing.T) {
	ts := setupTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/availability", RangeRequest{StartDate: "2025-01-01", EndDate: "2025-01-04"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[AvailabilityResponse](t, w)
	assert.Equal(t, Period{Start: "2025-01-01", End: "2025-01-04"}, resp.Period)
	assert.Equal(t, []string{
		"01-Jan-25 → 01-Jan-25",
		"02-Jan-25 → 02-Jan-25",
		"03-Jan-25 → 04-Jan-25",
	}, resp.Labels)
	assert.Equal(t, []string{"Deluxe non view", "Standard non view"}, resp.Matrix.Categories)
	assert.Equal(t, []int{2, 1, 3}, resp.Matrix.Counts["Deluxe non view"])
	assert.Equal(t, []int{1, 1, 1}, resp.Matrix.Counts["Standard non view"])

	require.Len(t, resp.OTA, 2)
	assert.Equal(t, "MMT-", resp.OTA[0].Prefix)
	assert.Equal(t, []int{2, 1, 3}, resp.OTA[0].Counts["Deluxe Rooms"])
	assert.Equal(t, []int{0, 0, 0}, resp.OTA[0].Counts["Family Room"])
}

func TestAvailability_Export(t *testing.T) {
	ts := setupTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/availability/export?start_date=2025-01-01&end_date=2025-01-04", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "availability_2025-01-01_2025-01-04.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = ts.do(t, http.MethodGet, "/api/availability/export?start_date=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailability_Sync(t *testing.T) {
	ts := setupTestServer(t, nil)
	w := ts.do(t, http.MethodPost, "/api/availability/sync", RangeRequest{StartDate: "2025-01-01", EndDate: "2025-01-04"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	sheets := &fakeSheets{}
	ts = setupTestServer(t, sheets)
	w = ts.do(t, http.MethodPost, "/api/availability/sync", RangeRequest{StartDate: "2025-01-01", EndDate: "2025-01-04"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, sheets.written)
	assert.Len(t, sheets.written.Segments, 3)
	assert.Equal(t, 2, sheets.otas)

	sheets.err = errors.New("quota")
	w = ts.do(t, http.MethodPost, "/api/availability/sync", RangeRequest{StartDate: "2025-01-01", EndDate: "2025-01-04"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSheetsImport(t *testing.T) {
	ts := setupTestServer(t, &fakeSheets{})
	w := ts.do(t, http.MethodPost, "/api/sheets/import", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[google.ImportResult](t, w).Rooms)
}

func TestAvailableRooms(t *testing.T) {
	ts := setupTestServer(t, nil)

	numbers := func(w *httptest.ResponseRecorder) []string {
		resp := decode[struct {
			Rooms []models.Room `json:"rooms"`
		}](t, w)
		out := []string{}
		for _, r := range resp.Rooms {
			out = append(out, r.Number)
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no dates", "", []string{"101", "102", "103"}},
		{"only checkin", "?checkin=2025-01-01", []string{"101", "102", "103"}},
		{"overlap", "?checkin=2025-01-01&checkout=2025-01-02", []string{"102"}},
		{"back to back", "?checkin=2025-01-03&checkout=2025-01-05", []string{"101", "102", "103"}},
		{"own group excluded", "?checkin=2025-01-01&checkout=2025-01-02&exclude_group=GA", []string{"101", "102"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, "/api/rooms/available"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, numbers(w))
		})
	}

	w := ts.do(t, http.MethodGet, "/api/rooms/available?checkin=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendar(t *testing.T) {
	ts := setupTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/calendar?start=2025-01-01&days=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grid struct {
		Days []string `json:"days"`
		Rows []struct {
			Room  string `json:"room"`
			Stays []struct {
				StartIndex int `json:"start_index"`
				EndIndex   int `json:"end_index"`
			} `json:"stays"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grid))
	assert.Len(t, grid.Days, 5)
	require.Len(t, grid.Rows, 4)
	require.Len(t, grid.Rows[0].Stays, 1)
	assert.Equal(t, 0, grid.Rows[0].Stays[0].StartIndex)
	assert.Equal(t, 1, grid.Rows[0].Stays[0].EndIndex)
	assert.Empty(t, grid.Rows[2].Stays, "blocked rooms are not drawn")

	w = ts.do(t, http.MethodGet, "/api/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "10-Mar-25")

	w = ts.do(t, http.MethodGet, "/api/calendar?days=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/calendar/export?start=2025-01-01&days=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "calendar_2025-01-01_2025-01-05.xlsx")
}

func TestBookings_Lifecycle(t *testing.T) {
	ts := setupTestServer(t, nil)

	draft := reservations.Draft{
		Room:      "103 — Deluxe non view",
		GuestName: "Meera",
		Checkin:   "2025-01-10",
		Checkout:  "2025-01-12",
		Status:    "Confirmed",
		Adults:    2,
		Children:  1,
	}
	w := ts.do(t, http.MethodPost, "/api/bookings", SaveBookingRequest{Reservations: []reservations.Draft{draft}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[SaveBookingResponse](t, w)
	require.NotEmpty(t, saved.GroupID)
	require.Len(t, saved.Reservations, 1)
	assert.Equal(t, 2, saved.Reservations[0].Nights)

	w = ts.do(t, http.MethodGet, "/api/bookings/"+saved.GroupID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	group := decode[reservations.Group](t, w)
	assert.Equal(t, "Meera", group.GuestName)
	assert.Equal(t, "2025-01-10", group.Checkin)
	assert.Equal(t, 1, group.Children)

	w = ts.do(t, http.MethodDelete, "/api/reservations/"+saved.Reservations[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/bookings/"+saved.GroupID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/reservations/"+saved.Reservations[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookings_Invalid(t *testing.T) {
	ts := setupTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/api/bookings", SaveBookingRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := reservations.Draft{
		Room:      "103 — Deluxe non view",
		GuestName: "Meera",
		Checkin:   "2025-01-12",
		Checkout:  "2025-01-10",
		Status:    "Confirmed",
	}
	w = ts.do(t, http.MethodPost, "/api/bookings", SaveBookingRequest{Reservations: []reservations.Draft{bad}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "checkout", resp.Fields[0].Field)
}

func TestInvoices_Lifecycle(t *testing.T) {
	ts := setupTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/invoices/next-number", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-2025-001", decode[map[string]string](t, w)["invoice_number"])

	w = ts.do(t, http.MethodGet, "/api/invoices/GA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	form := decode[InvoiceResponse](t, w)
	assert.Equal(t, "Asha", form.Booking.GuestName)
	assert.Nil(t, form.Invoice)

	inv := models.Invoice{
		GroupID:    "GA",
		Number:     "INV-2025-001",
		GuestName:  "Asha",
		Subtotal:   7000,
		GrandTotal: 7000,
		Items: []models.InvoiceItem{
			{Service: "Room", Quantity: 2, UnitPrice: 3500, Total: 7000},
		},
	}
	w = ts.do(t, http.MethodPost, "/api/invoices", inv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[models.Invoice](t, w)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, models.ItemStatusPending, saved.Items[0].Status)

	w = ts.do(t, http.MethodGet, "/api/invoices/GA", nil)
	form = decode[InvoiceResponse](t, w)
	require.NotNil(t, form.Invoice)
	assert.Equal(t, saved.ID, form.Invoice.ID)

	w = ts.do(t, http.MethodGet, "/api/invoices/next-number", nil)
	assert.Equal(t, "INV-2025-002", decode[map[string]string](t, w)["invoice_number"])

	w = ts.do(t, http.MethodGet, "/api/invoices/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/invoices", models.Invoice{GroupID: "GA"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRates(t *testing.T) {
	row := rates.FromRow("Deluxe Rooms", []float64{0, 0, 4000, 3500, 800, 400})

	ts := setupTestServer(t, nil)
	w := ts.do(t, http.MethodPost, "/api/rates/preview", RatesRequest{
		FromDate: "2025-02-01",
		ToDate:   "2025-02-28",
		Rows:     []rates.CategoryRates{row, rates.FromRow("Unknown", []float64{1000})},
		Push:     true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[RatesResponse](t, w)
	require.Len(t, resp.Payload.Data, 1)
	assert.Equal(t, "H1", resp.Payload.HotelCode)
	assert.Len(t, resp.Warnings, 1)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.DryRun)

	w = ts.do(t, http.MethodPost, "/api/rates/preview", RatesRequest{FromDate: "2025-02-01", ToDate: "2025-02-28"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts = setupTestServer(t, &fakeSheets{rates: []rates.CategoryRates{row}})
	w = ts.do(t, http.MethodPost, "/api/rates/preview", RatesRequest{FromDate: "2025-02-01", ToDate: "2025-02-28"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[RatesResponse](t, w).Payload.Data, 1)
}

func TestRouting_MethodAndPath(t *testing.T) {
	ts := setupTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"get on post route", http.MethodGet, "/api/availability", http.StatusMethodNotAllowed},
		{"delete on get route", http.MethodDelete, "/api/bookings/GA", http.StatusMethodNotAllowed},
		{"post on delete route", http.MethodPost, "/api/reservations/a", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/api/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)
		})
	}
}
