package api

import (
	"net/http"

	"frontdesk/internal/metrics"
	"frontdesk/internal/rates"
)

// RatesRequest previews, and optionally pushes, a rate update. Rows are
// read from the rate sheet when omitted.
type RatesRequest struct {
	FromDate string                `json:"from_date"`
	ToDate   string                `json:"to_date"`
	Rows     []rates.CategoryRates `json:"rows,omitempty"`
	Push     bool                  `json:"push"`
	Token    string                `json:"token,omitempty"`
}

// RatesResponse carries the payload that was built and the push outcome.
type RatesResponse struct {
	Payload  *rates.Payload `json:"payload"`
	Warnings []string       `json:"warnings,omitempty"`
	Result   *rates.Result  `json:"result,omitempty"`
}

// POST /api/rates/preview
func (s *HTTPServer) handleRates(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rates")

	var req RatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, _, err := s.parseRange(req.FromDate, req.ToDate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := req.Rows
	if len(rows) == 0 {
		if s.deps.Sheets == nil {
			writeError(w, http.StatusBadRequest, "rows are required when google sheets sync is disabled")
			return
		}
		var err error
		if rows, err = s.deps.Sheets.ReadRates(r.Context()); err != nil {
			s.writeServiceError(w, "rates", err)
			return
		}
	}

	payload, warnings := rates.BuildPayload(s.opts.HotelCode, rows, rates.GoibiboCodes(), req.FromDate, req.ToDate)
	for _, warn := range warnings {
		s.logger.Warn().Str("warning", warn).Msg("rate row skipped")
	}
	resp := RatesResponse{Payload: payload, Warnings: warnings}

	if req.Push {
		if s.deps.Rates == nil {
			writeError(w, http.StatusServiceUnavailable, "rate push is not configured")
			return
		}
		res, err := s.deps.Rates.Push(r.Context(), req.Token, payload)
		if err != nil {
			metrics.IncSideEffectFailure("rate_push")
			if res != nil {
				s.logger.Error().Err(err).Int("status", res.Status).Msg("rate push rejected")
				writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
				return
			}
			s.writeServiceError(w, "rates", err)
			return
		}
		resp.Result = res
	}
	writeJSON(w, http.StatusOK, resp)
}
