package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pkordes/clamcard/internal/domain"
)

// ListZones handles GET /zones.
func (s *Server) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.catalog.ListZones(r.Context())
	if err != nil {
		s.handleError(w, r, err, "zone not found")
		return
	}

	out := make([]Zone, len(zones))
	for i, z := range zones {
		out[i] = zoneToResponse(z)
	}
	writeJSON(w, http.StatusOK, out)
}

// UpsertZone handles PUT /zones/{code}.
// Creates the zone or replaces its name and tariffs.
func (s *Server) UpsertZone(w http.ResponseWriter, r *http.Request) {
	var body ZoneRequest
	if !decodeBody(w, r, &body) {
		return
	}
	zone, msg := requestToZone(chi.URLParam(r, "code"), body)
	if msg != "" {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, msg)
		return
	}

	saved, err := s.catalog.UpsertZone(r.Context(), zone)
	if err != nil {
		s.handleError(w, r, err, "zone not found")
		return
	}
	writeJSON(w, http.StatusOK, zoneToResponse(saved))
}

// requestToZone converts a ZoneRequest into a domain.Zone. It returns a
// non-empty message when an amount is missing or not a decimal number.
func requestToZone(code string, body ZoneRequest) (domain.Zone, string) {
	z := domain.Zone{Code: code, Name: strings.TrimSpace(body.Name)}
	fields := []struct {
		name string
		raw  *string
		dst  *decimal.Decimal
	}{
		{"cost_per_single_journey", body.CostPerSingleJourney, &z.CostPerSingleJourney},
		{"cost_per_day_limit", body.CostPerDayLimit, &z.CostPerDayLimit},
		{"cost_per_week_limit", body.CostPerWeekLimit, &z.CostPerWeekLimit},
	}
	for _, f := range fields {
		if f.raw == nil {
			return domain.Zone{}, f.name + " is required"
		}
		d, err := decimal.NewFromString(strings.TrimSpace(*f.raw))
		if err != nil {
			return domain.Zone{}, f.name + " must be a decimal amount"
		}
		*f.dst = d
	}
	return z, ""
}
