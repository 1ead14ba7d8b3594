// Package card implements the contactless fare card: a two-state journey
// machine (idle, in progress) with an append-only history of completed journeys.
//
// A Card is not safe for concurrent use. Callers that share one across
// goroutines must serialize StartJourney and EndJourney themselves.
package card

import (
	"fmt"

	"github.com/pkordes/clamcard/internal/clock"
	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/fare"
)

// state is either idle or inProgress. The switch in each operation is
// exhaustive over these two.
type state interface {
	isState()
}

type idle struct{}

type inProgress struct {
	from *domain.Station
}

func (idle) isState()       {}
func (inProgress) isState() {}

// Card tracks one open journey at most and every journey it has completed.
type Card struct {
	clock   clock.Clock
	state   state
	history []domain.Journey
}

// New returns an idle Card that reads completion times from c and starts
// with a private copy of history.
// Returns domain.ErrInvalidArgument if c or history is nil.
func New(c clock.Clock, history []domain.Journey) (*Card, error) {
	if c == nil {
		return nil, fmt.Errorf("card.New: %w: clock is required", domain.ErrInvalidArgument)
	}
	if history == nil {
		return nil, fmt.Errorf("card.New: %w: history is required", domain.ErrInvalidArgument)
	}
	owned := make([]domain.Journey, len(history))
	copy(owned, history)
	return &Card{clock: c, state: idle{}, history: owned}, nil
}

// StartJourney opens a journey at station.
// Returns domain.ErrInvalidArgument if station is nil and
// domain.ErrJourneyConflict if a journey is already open.
func (c *Card) StartJourney(station *domain.Station) error {
	if station == nil {
		return fmt.Errorf("card.Card.StartJourney: %w: station is required", domain.ErrInvalidArgument)
	}
	switch c.state.(type) {
	case inProgress:
		return fmt.Errorf("card.Card.StartJourney: %w", domain.ErrJourneyConflict)
	case idle:
		c.state = inProgress{from: station}
	}
	return nil
}

// EndJourney closes the open journey at station and returns the charged Journey.
//
// Tapping out where the journey started cancels it: the card returns to idle,
// nothing is charged, nothing is recorded, and the result is nil.
//
// Returns domain.ErrInvalidArgument if station is nil and
// domain.ErrNoJourneyInProgress if the card is idle.
func (c *Card) EndJourney(station *domain.Station) (*domain.Journey, error) {
	if station == nil {
		return nil, fmt.Errorf("card.Card.EndJourney: %w: station is required", domain.ErrInvalidArgument)
	}
	switch s := c.state.(type) {
	case idle:
		return nil, fmt.Errorf("card.Card.EndJourney: %w", domain.ErrNoJourneyInProgress)
	case inProgress:
		if s.from.Same(station) {
			c.state = idle{}
			return nil, nil
		}
		return c.complete(s.from, station), nil
	}
	return nil, nil
}

// complete prices and records the journey from -> to, then returns to idle.
// The clock is read once so the fare and the record agree on the date.
func (c *Card) complete(from, to *domain.Station) *domain.Journey {
	now := c.clock.Now()
	quote := fare.Quote(from, to, c.history, now)

	j := domain.Journey{
		Date: now,
		From: from,
		To:   to,
		Cost: quote.Charged,
	}
	c.history = append(c.history, j)
	c.state = idle{}
	return &j
}

// JourneyHistory returns the completed journeys in the order EndJourney
// recorded them. The slice is a copy; mutating it does not affect the card.
func (c *Card) JourneyHistory() []domain.Journey {
	out := make([]domain.Journey, len(c.history))
	copy(out, c.history)
	return out
}

// CurrentJourneyStartFrom returns the station the open journey started at,
// or nil when the card is idle.
func (c *Card) CurrentJourneyStartFrom() *domain.Station {
	if s, ok := c.state.(inProgress); ok {
		return s.from
	}
	return nil
}

// InProgress reports whether a journey is open.
func (c *Card) InProgress() bool {
	_, ok := c.state.(inProgress)
	return ok
}
