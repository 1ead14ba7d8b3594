package domain

import "time"

// ExportRow is a single row in a card's journey history export.
// It is a flat, denormalized view of a Journey: station and zone fields are
// copied out so that CSV consumers need no joins.
type ExportRow struct {
	JourneyID   string
	CompletedAt time.Time

	FromStation string
	FromZone    string
	ToStation   string
	ToZone      string

	// Cost is the fare actually charged, formatted with two decimal places.
	Cost string
}
