// Package api exposes the front desk operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"frontdesk/internal/availability"
	"frontdesk/internal/database"
	"frontdesk/internal/google"
	"frontdesk/internal/invoices"
	"frontdesk/internal/models"
	"frontdesk/internal/rates"
	"frontdesk/internal/reservations"
	"frontdesk/internal/service"
	"frontdesk/internal/validation"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// DateLayout is the wire format of every date parameter.
const DateLayout = "2006-01-02"

// APIKeyHeader carries the shared secret when one is configured.
const APIKeyHeader = "X-Api-Key"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// SheetsSync is the optional spreadsheet connection.
type SheetsSync interface {
	WriteAvailability(ctx context.Context, m *availability.Matrix, otas []*availability.OTAMatrix) error
	ReadRates(ctx context.Context) ([]rates.CategoryRates, error)
	Import(ctx context.Context, store google.Store) (google.ImportResult, error)
}

// Options are the request limits and identifiers of the server.
type Options struct {
	APIKey       string
	MaxRangeDays int
	CalendarDays int
	HotelCode    string
}

// Deps are the services behind the handlers. Sheets and Store may be nil.
type Deps struct {
	Availability *service.AvailabilityService
	Reservations *reservations.Service
	Invoices     *invoices.Service
	Rates        *rates.Client
	Sheets       SheetsSync
	Store        google.Store
	Location     *time.Location
	Logger       *zerolog.Logger
	Now          func() time.Time
}

type HTTPServer struct {
	opts   Options
	deps   Deps
	loc    *time.Location
	logger *zerolog.Logger
	now    func() time.Time
	router *mux.Router
}

func NewHTTPServer(opts Options, deps Deps) *HTTPServer {
	s := &HTTPServer{
		opts:   opts,
		deps:   deps,
		loc:    deps.Location,
		logger: deps.Logger,
		now:    deps.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		nop := zerolog.Nop()
		s.logger = &nop
	}
	s.router = s.routes()
	return s
}

// Handler returns the routed handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	// Routes live on the root router with full paths. A subrouter answers
	// 404 instead of 405 when only the method is wrong.
	r.Use(s.requireAPIKey)

	r.HandleFunc("/api/availability", s.handleAvailability).Methods(http.MethodPost)
	r.HandleFunc("/api/availability/export", s.handleAvailabilityExport).Methods(http.MethodGet)
	r.HandleFunc("/api/availability/sync", s.handleAvailabilitySync).Methods(http.MethodPost)
	r.HandleFunc("/api/sheets/import", s.handleSheetsImport).Methods(http.MethodPost)

	r.HandleFunc("/api/rooms/available", s.handleAvailableRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar", s.handleCalendar).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar/export", s.handleCalendarExport).Methods(http.MethodGet)

	r.HandleFunc("/api/bookings", s.handleSaveBooking).Methods(http.MethodPost)
	r.HandleFunc("/api/bookings/{group}", s.handleLoadBooking).Methods(http.MethodGet)
	r.HandleFunc("/api/reservations/{id}", s.handleDeleteReservation).Methods(http.MethodDelete)

	r.HandleFunc("/api/invoices/next-number", s.handleNextInvoiceNumber).Methods(http.MethodGet)
	r.HandleFunc("/api/invoices/{group}", s.handleLoadInvoice).Methods(http.MethodGet)
	r.HandleFunc("/api/invoices", s.handleSaveInvoice).Methods(http.MethodPost)

	r.HandleFunc("/api/rates/preview", s.handleRates).Methods(http.MethodPost)
	return r
}

func (s *HTTPServer) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" && r.Header.Get(APIKeyHeader) != s.opts.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps domain errors to status codes. Unknown errors are
// logged and hidden behind a 500.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, op string, err error) {
	var fields validation.Errors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
	case errors.Is(err, availability.ErrInvalidRange),
		errors.Is(err, reservations.ErrEmptyGroup),
		errors.Is(err, models.ErrMalformedRoomKey),
		errors.Is(err, rates.ErrNoRates),
		errors.Is(err, rates.ErrMissingToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reservations.ErrGroupNotFound),
		errors.Is(err, invoices.ErrInvoiceNotFound),
		errors.Is(err, invoices.ErrBookingNotFound),
		errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error().Err(err).Str("op", op).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}
