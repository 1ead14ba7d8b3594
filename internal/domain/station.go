package domain

import "github.com/google/uuid"

// Station is a place where a card can tap in or out.
// Cards only borrow stations; the catalog owns them.
type Station struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"` // GTFS stop_id
	Name string    `json:"name"`
	Zone Zone      `json:"zone"`
}

// Same reports whether s and other are the same station.
// Stations are compared by ID, never by name. Stations without an ID are
// only the same when they are the same pointer.
func (s *Station) Same(other *Station) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.ID == uuid.Nil || other.ID == uuid.Nil {
		return s == other
	}
	return s.ID == other.ID
}
