// Package service contains the business logic for the ClamCard API.
// Services rebuild cards from persisted state, run the card state machine,
// and persist the outcome. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/clamcard/internal/card"
	"github.com/pkordes/clamcard/internal/clock"
	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/fare"
	"github.com/pkordes/clamcard/internal/repo"
)

// Tap rejection reasons reported to the Recorder.
const (
	RejectConflict    = "journey_conflict"
	RejectNoJourney   = "no_journey_in_progress"
	RejectUnknownStop = "unknown_station"
)

// Recorder receives tap outcomes, typically for metrics.
type Recorder interface {
	JourneyCompleted(j domain.Journey, capped bool)
	JourneyCancelled()
	TapRejected(reason string)
}

// Publisher announces completed journeys to other systems.
type Publisher interface {
	PublishJourneyCompleted(ctx context.Context, j domain.Journey) error
}

// CardService runs taps against persisted cards.
//
// Taps for the same card are serialized with a per-card lock, so two readers
// racing on one card cannot both open a journey. The lock is process-local.
type CardService struct {
	cards    repo.CardRepo
	journeys repo.JourneyRepo
	stations repo.StationRepo
	clock    clock.Clock

	recorder  Recorder
	publisher Publisher
	log       *slog.Logger

	locks cardLocks
}

// CardOption configures optional CardService collaborators.
type CardOption func(*CardService)

// WithRecorder sets the Recorder notified of every tap outcome.
func WithRecorder(r Recorder) CardOption {
	return func(s *CardService) { s.recorder = r }
}

// WithPublisher sets the Publisher that receives completed journeys.
func WithPublisher(p Publisher) CardOption {
	return func(s *CardService) { s.publisher = p }
}

// WithLogger sets the logger used for failures that do not fail the tap.
func WithLogger(l *slog.Logger) CardOption {
	return func(s *CardService) { s.log = l }
}

// NewCardService constructs a CardService. clk decides each journey's
// completion time and so which day and week it is capped in.
func NewCardService(cards repo.CardRepo, journeys repo.JourneyRepo, stations repo.StationRepo, clk clock.Clock, opts ...CardOption) *CardService {
	s := &CardService{
		cards:    cards,
		journeys: journeys,
		stations: stations,
		clock:    clk,
		recorder: nopRecorder{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the persisted state of a card.
// Returns domain.ErrNotFound if the card has never tapped.
func (s *CardService) State(ctx context.Context, cardID uuid.UUID) (domain.CardState, error) {
	state, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return domain.CardState{}, fmt.Errorf("service.CardService.State: %w", err)
	}
	return state, nil
}

// TapIn opens a journey at stationID. A card seen for the first time is
// created idle first.
// Returns domain.ErrNotFound for an unknown station and
// domain.ErrJourneyConflict if the card already has an open journey.
func (s *CardService) TapIn(ctx context.Context, cardID, stationID uuid.UUID) (domain.CardState, error) {
	unlock := s.locks.lock(cardID)
	defer unlock()

	station, err := s.station(ctx, stationID)
	if err != nil {
		return domain.CardState{}, fmt.Errorf("service.CardService.TapIn: %w", err)
	}
	c, state, err := s.load(ctx, cardID)
	if err != nil {
		return domain.CardState{}, fmt.Errorf("service.CardService.TapIn: %w", err)
	}

	if err := c.StartJourney(&station); err != nil {
		s.recorder.TapRejected(RejectConflict)
		return domain.CardState{}, fmt.Errorf("service.CardService.TapIn: %w", err)
	}
	if err := s.cards.SetJourneyStart(ctx, cardID, &station.ID); err != nil {
		return domain.CardState{}, fmt.Errorf("service.CardService.TapIn: %w", err)
	}

	state.JourneyStartFrom = c.CurrentJourneyStartFrom()
	return state, nil
}

// TapOut closes the card's open journey at stationID and returns the stored
// journey. Tapping out at the start station cancels the journey: nothing is
// charged and the result is nil.
// Returns domain.ErrNotFound for an unknown station and
// domain.ErrNoJourneyInProgress if the card has no open journey.
func (s *CardService) TapOut(ctx context.Context, cardID, stationID uuid.UUID) (*domain.Journey, error) {
	unlock := s.locks.lock(cardID)
	defer unlock()

	station, err := s.station(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("service.CardService.TapOut: %w", err)
	}
	c, _, err := s.load(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("service.CardService.TapOut: %w", err)
	}

	j, err := c.EndJourney(&station)
	if err != nil {
		s.recorder.TapRejected(RejectNoJourney)
		return nil, fmt.Errorf("service.CardService.TapOut: %w", err)
	}
	if j == nil {
		if err := s.cards.SetJourneyStart(ctx, cardID, nil); err != nil {
			return nil, fmt.Errorf("service.CardService.TapOut: %w", err)
		}
		s.recorder.JourneyCancelled()
		return nil, nil
	}

	j.CardID = cardID
	stored, err := s.journeys.Complete(ctx, *j)
	if err != nil {
		return nil, fmt.Errorf("service.CardService.TapOut: %w", err)
	}

	capped := stored.Cost.LessThan(fare.SingleJourneyCost(stored.From.Zone, stored.To.Zone))
	s.recorder.JourneyCompleted(stored, capped)
	s.publish(ctx, stored)
	return &stored, nil
}

// History returns one page of a card's completed journeys in completion order.
// Returns domain.ErrNotFound if the card has never tapped.
func (s *CardService) History(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error) {
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		return nil, 0, fmt.Errorf("service.CardService.History: %w", err)
	}
	journeys, total, err := s.journeys.ListByCardPaged(ctx, cardID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CardService.History: %w", err)
	}
	if journeys == nil {
		journeys = []domain.Journey{}
	}
	return journeys, total, nil
}

// load rebuilds a card from its stored history and, if a journey is open,
// replays the tap-in that opened it.
func (s *CardService) load(ctx context.Context, cardID uuid.UUID) (*card.Card, domain.CardState, error) {
	state, err := s.cards.Ensure(ctx, cardID)
	if err != nil {
		return nil, domain.CardState{}, err
	}
	history, err := s.journeys.ListByCard(ctx, cardID)
	if err != nil {
		return nil, domain.CardState{}, err
	}
	if history == nil {
		history = []domain.Journey{}
	}

	c, err := card.New(s.clock, history)
	if err != nil {
		return nil, domain.CardState{}, err
	}
	if state.JourneyStartFrom != nil {
		if err := c.StartJourney(state.JourneyStartFrom); err != nil {
			return nil, domain.CardState{}, err
		}
	}
	return c, state, nil
}

// station looks up a station, recording unknown stations as rejected taps.
func (s *CardService) station(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	st, err := s.stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recorder.TapRejected(RejectUnknownStop)
		}
		return domain.Station{}, err
	}
	return st, nil
}

// publish sends the journey event. The journey is already stored, so a
// publish failure is logged rather than returned.
func (s *CardService) publish(ctx context.Context, j domain.Journey) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJourneyCompleted(ctx, j); err != nil {
		s.log.WarnContext(ctx, "publish journey completed",
			"error", err,
			"card_id", j.CardID,
			"journey_id", j.ID,
		)
	}
}

// nopRecorder is used when no Recorder is configured.
type nopRecorder struct{}

func (nopRecorder) JourneyCompleted(domain.Journey, bool) {}
func (nopRecorder) JourneyCancelled()                     {}
func (nopRecorder) TapRejected(string)                    {}
