package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"frontdesk/internal/availability"
	"frontdesk/internal/export"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"
	"frontdesk/internal/rooms"
	"frontdesk/internal/service"
)

// RangeRequest is the body of the availability endpoints.
type RangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Period echoes the requested range.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityResponse is the answer of POST /api/availability.
type AvailabilityResponse struct {
	Period Period                    `json:"period"`
	Labels []string                  `json:"labels"`
	Matrix *availability.Matrix      `json:"matrix"`
	OTA    []*availability.OTAMatrix `json:"ota"`
}

// parseRange validates a start/end pair against the configured maximum.
func (s *HTTPServer) parseRange(startStr, endStr string) (start, end time.Time, err error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date are required")
	}
	start, err = time.ParseInLocation(DateLayout, startStr, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format; expected YYYY-MM-DD")
	}
	end, err = time.ParseInLocation(DateLayout, endStr, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format; expected YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before or equal to end_date")
	}
	if s.opts.MaxRangeDays > 0 && len(models.Days(start, end, s.loc)) > s.opts.MaxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("date range exceeds maximum of %d days", s.opts.MaxRangeDays)
	}
	return start, end, nil
}

func (s *HTTPServer) computeRange(w http.ResponseWriter, r *http.Request, startStr, endStr string) (*service.Result, bool) {
	start, end, err := s.parseRange(startStr, endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	res, err := s.deps.Availability.Availability(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, "availability", err)
		return nil, false
	}
	return res, true
}

// handleAvailability returns the category matrix and channel blocks.
// POST /api/availability
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	var req RangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, ok := s.computeRange(w, r, req.StartDate, req.EndDate)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Period: Period{Start: req.StartDate, End: req.EndDate},
		Labels: res.Matrix.Labels(),
		Matrix: res.Matrix,
		OTA:    res.OTA,
	})
}

// GET /api/availability/export?start_date=&end_date=
func (s *HTTPServer) handleAvailabilityExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_export")

	q := r.URL.Query()
	res, ok := s.computeRange(w, r, q.Get("start_date"), q.Get("end_date"))
	if !ok {
		return
	}
	wb, err := export.Availability(res.Matrix, res.OTA)
	if err != nil {
		s.writeServiceError(w, "availability_export", err)
		return
	}
	s.sendWorkbook(w, wb, export.Filename("availability", res.Matrix.Start, res.Matrix.End))
}

// handleAvailabilitySync writes the matrix to the spreadsheet.
// POST /api/availability/sync
func (s *HTTPServer) handleAvailabilitySync(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_sync")

	if s.deps.Sheets == nil {
		writeError(w, http.StatusServiceUnavailable, "google sheets sync is disabled")
		return
	}
	var req RangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, ok := s.computeRange(w, r, req.StartDate, req.EndDate)
	if !ok {
		return
	}
	if err := s.deps.Sheets.WriteAvailability(r.Context(), res.Matrix, res.OTA); err != nil {
		metrics.IncSideEffectFailure("sheet_write")
		s.logger.Error().Err(err).Msg("sheet write failed")
		writeError(w, http.StatusBadGateway, "sheet write failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"segments":   len(res.Matrix.Segments),
		"categories": len(res.Matrix.Categories),
		"channels":   len(res.OTA),
	})
}

// handleSheetsImport replaces local rooms and reservations with the sheet.
// POST /api/sheets/import
func (s *HTTPServer) handleSheetsImport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sheets_import")

	if s.deps.Sheets == nil || s.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "google sheets sync is disabled")
		return
	}
	res, err := s.deps.Sheets.Import(r.Context(), s.deps.Store)
	if err != nil {
		s.writeServiceError(w, "sheets_import", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAvailableRooms lists bookable rooms. Without both dates every room
// with an Available status is returned.
// GET /api/rooms/available?checkin=&checkout=&exclude_group=
func (s *HTTPServer) handleAvailableRooms(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_available")

	q := r.URL.Query()
	query := rooms.Query{ExcludeGroupID: q.Get("exclude_group")}
	var err error
	if query.Checkin, err = s.optionalDate(q.Get("checkin")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkin format; expected YYYY-MM-DD")
		return
	}
	if query.Checkout, err = s.optionalDate(q.Get("checkout")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid checkout format; expected YYYY-MM-DD")
		return
	}

	available, err := s.deps.Reservations.AvailableRooms(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, "rooms_available", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": available})
}

func (s *HTTPServer) optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, v, s.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *HTTPServer) calendarWindow(r *http.Request) (time.Time, int, error) {
	q := r.URL.Query()
	start := models.Midnight(s.now(), s.loc)
	if v := q.Get("start"); v != "" {
		t, err := time.ParseInLocation(DateLayout, v, s.loc)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid start format; expected YYYY-MM-DD")
		}
		start = t
	}
	days := s.opts.CalendarDays
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return time.Time{}, 0, fmt.Errorf("days must be a positive integer")
		}
		days = n
	}
	if s.opts.MaxRangeDays > 0 && days > s.opts.MaxRangeDays {
		return time.Time{}, 0, fmt.Errorf("date range exceeds maximum of %d days", s.opts.MaxRangeDays)
	}
	return start, days, nil
}

// GET /api/calendar?start=&days=
func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar")

	start, days, err := s.calendarWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	grid, err := s.deps.Availability.Calendar(r.Context(), start, days)
	if err != nil {
		s.writeServiceError(w, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// GET /api/calendar/export?start=&days=
func (s *HTTPServer) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar_export")

	start, days, err := s.calendarWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	grid, err := s.deps.Availability.Calendar(r.Context(), start, days)
	if err != nil {
		s.writeServiceError(w, "calendar_export", err)
		return
	}
	wb, err := export.Calendar(grid)
	if err != nil {
		s.writeServiceError(w, "calendar_export", err)
		return
	}
	s.sendWorkbook(w, wb, export.Filename("calendar", grid.Start, grid.Start.AddDate(0, 0, len(grid.Days)-1)))
}

func (s *HTTPServer) sendWorkbook(w http.ResponseWriter, wb export.Writer, filename string) {
	defer wb.Close()
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := wb.Write(w); err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("workbook write failed")
	}
}
