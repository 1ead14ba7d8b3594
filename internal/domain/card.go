package domain

import (
	"time"

	"github.com/google/uuid"
)

// CardState is the persisted state of a card between taps.
// JourneyStartFrom is nil when no journey is open.
type CardState struct {
	ID               uuid.UUID
	JourneyStartFrom *Station
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
