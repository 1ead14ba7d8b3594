package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// GetCard handles GET /cards/{id}.
func (s *Server) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	state, err := s.cards.State(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "card not found")
		return
	}
	writeJSON(w, http.StatusOK, cardToResponse(state))
}

// TapIn handles POST /cards/{id}/tap-in.
// A card seen for the first time is created, so 404 always means the station.
func (s *Server) TapIn(w http.ResponseWriter, r *http.Request) {
	id, stationID, ok := s.tapParams(w, r)
	if !ok {
		return
	}

	state, err := s.cards.TapIn(r.Context(), id, stationID)
	if err != nil {
		s.handleError(w, r, err, "station not found")
		return
	}
	writeJSON(w, http.StatusOK, cardToResponse(state))
}

// TapOut handles POST /cards/{id}/tap-out.
// Returns 201 with the charged journey, or 204 when tapping out at the start
// station cancelled the journey.
func (s *Server) TapOut(w http.ResponseWriter, r *http.Request) {
	id, stationID, ok := s.tapParams(w, r)
	if !ok {
		return
	}

	j, err := s.cards.TapOut(r.Context(), id, stationID)
	if err != nil {
		s.handleError(w, r, err, "station not found")
		return
	}
	if j == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, journeyToResponse(*j))
}

// ListJourneys handles GET /cards/{id}/journeys.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListJourneys(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	params, err := pagination(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	journeys, total, err := s.cards.History(r.Context(), id, params)
	if err != nil {
		s.handleError(w, r, err, "card not found")
		return
	}

	data := make([]Journey, len(journeys))
	for i, j := range journeys {
		data[i] = journeyToResponse(j)
	}
	writeJSON(w, http.StatusOK, JourneyList{Data: data, Pagination: toPagination(params, total)})
}

// tapParams binds the card id and the station_id body field shared by both
// tap endpoints. It writes the error response itself when binding fails.
func (s *Server) tapParams(w http.ResponseWriter, r *http.Request) (cardID, stationID uuid.UUID, ok bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return cardID, stationID, false
	}

	var body TapRequest
	if !decodeBody(w, r, &body) {
		return cardID, stationID, false
	}
	if body.StationID == nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "station_id is required")
		return cardID, stationID, false
	}
	return id, *body.StationID, true
}
