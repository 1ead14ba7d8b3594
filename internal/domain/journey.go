package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Journey is a completed trip and the fare charged for it.
// It is created exactly once, when the journey ends, and never changes after.
// ID and CardID are zero until the journey is persisted.
type Journey struct {
	ID     uuid.UUID       `json:"id"`
	CardID uuid.UUID       `json:"card_id"`
	Date   time.Time       `json:"date"` // completion time, not tap-in time
	From   *Station        `json:"from"`
	To     *Station        `json:"to"`
	Cost   decimal.Decimal `json:"cost"`
}
