package api

import (
	"errors"
	"net/http"

	"frontdesk/internal/invoices"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"

	"github.com/gorilla/mux"
)

// InvoiceResponse is the invoice form: the booking context plus the saved
// invoice when there is one.
type InvoiceResponse struct {
	Booking *invoices.BookingSummary `json:"booking"`
	Invoice *models.Invoice          `json:"invoice"`
}

// GET /api/invoices/next-number
func (s *HTTPServer) handleNextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("next_invoice_number")

	number, err := s.deps.Invoices.NextNumber(r.Context(), s.now())
	if err != nil {
		s.writeServiceError(w, "next_invoice_number", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"invoice_number": number})
}

// GET /api/invoices/{group}
func (s *HTTPServer) handleLoadInvoice(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("load_invoice")

	groupID := mux.Vars(r)["group"]
	summary, err := s.deps.Invoices.BookingSummary(r.Context(), groupID)
	if err != nil {
		s.writeServiceError(w, "load_invoice", err)
		return
	}
	inv, err := s.deps.Invoices.Load(r.Context(), groupID)
	if err != nil && !errors.Is(err, invoices.ErrInvoiceNotFound) {
		s.writeServiceError(w, "load_invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, InvoiceResponse{Booking: summary, Invoice: inv})
}

// POST /api/invoices
func (s *HTTPServer) handleSaveInvoice(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("save_invoice")

	var inv models.Invoice
	if err := decodeJSON(r, &inv); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.deps.Invoices.Save(r.Context(), &inv)
	if err != nil {
		s.writeServiceError(w, "save_invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
