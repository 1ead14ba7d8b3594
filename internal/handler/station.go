package handler

import (
	"net/http"
)

// ListStations handles GET /stations.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListStations(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	stations, total, err := s.catalog.ListStations(r.Context(), params)
	if err != nil {
		s.handleError(w, r, err, "station not found")
		return
	}

	data := make([]Station, len(stations))
	for i, st := range stations {
		data[i] = stationToResponse(st)
	}
	writeJSON(w, http.StatusOK, StationList{Data: data, Pagination: toPagination(params, total)})
}

// GetStation handles GET /stations/{id}.
func (s *Server) GetStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	st, err := s.catalog.Station(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "station not found")
		return
	}
	writeJSON(w, http.StatusOK, stationToResponse(st))
}
