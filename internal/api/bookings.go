package api

import (
	"net/http"

	"frontdesk/internal/metrics"
	"frontdesk/internal/models"
	"frontdesk/internal/reservations"

	"github.com/gorilla/mux"
)

// SaveBookingRequest is one booking form submission.
type SaveBookingRequest struct {
	Reservations []reservations.Draft `json:"reservations"`
}

// SaveBookingResponse lists the stored rows.
type SaveBookingResponse struct {
	GroupID      string               `json:"booking_group_id"`
	Reservations []models.Reservation `json:"reservations"`
}

// POST /api/bookings
func (s *HTTPServer) handleSaveBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("save_booking")

	var req SaveBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.deps.Reservations.SaveGroup(r.Context(), req.Reservations)
	if err != nil {
		s.writeServiceError(w, "save_booking", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveBookingResponse{GroupID: rows[0].GroupID, Reservations: rows})
}

// GET /api/bookings/{group}
func (s *HTTPServer) handleLoadBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("load_booking")

	group, err := s.deps.Reservations.LoadGroup(r.Context(), mux.Vars(r)["group"])
	if err != nil {
		s.writeServiceError(w, "load_booking", err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// DELETE /api/reservations/{id}
func (s *HTTPServer) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_reservation")

	if err := s.deps.Reservations.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, "delete_reservation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
