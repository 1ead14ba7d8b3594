// Package publisher announces completed journeys on NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pkordes/clamcard/internal/domain"
)

// Metrics receives publish outcomes. A nil Metrics is allowed.
type Metrics interface {
	EventPublished()
	EventPublishFailed()
	SetNATSConnected(connected bool)
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// NATSPublisher publishes journey events as JSON messages.
type NATSPublisher struct {
	nc      conn
	subject string
	metrics Metrics
	log     *slog.Logger
}

// NewNATSPublisher connects to url and publishes on "<prefix>.journeys.completed".
func NewNATSPublisher(url, prefix string, m Metrics, log *slog.Logger) (*NATSPublisher, error) {
	if log == nil {
		log = slog.Default()
	}
	setConnected := func(connected bool) {
		if m != nil {
			m.SetNATSConnected(connected)
		}
	}

	nc, err := nats.Connect(url,
		nats.Name("clamcard"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			setConnected(false)
			log.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			setConnected(true)
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			setConnected(false)
			log.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("publisher.NewNATSPublisher: connect %s: %w", url, err)
	}
	setConnected(true)

	return newPublisher(nc, prefix, m, log), nil
}

func newPublisher(nc conn, prefix string, m Metrics, log *slog.Logger) *NATSPublisher {
	return &NATSPublisher{
		nc:      nc,
		subject: Subject(prefix),
		metrics: m,
		log:     log,
	}
}

// Subject returns the subject journey-completed events are published on.
func Subject(prefix string) string {
	return subjectToken(prefix) + ".journeys.completed"
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("nats drain", "error", err)
	}
	p.nc.Close()
}

// StationRef identifies a station inside an event.
type StationRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Zone string `json:"zone"`
}

// JourneyCompletedEvent is the message body for a charged journey.
type JourneyCompletedEvent struct {
	JourneyID   string     `json:"journeyId"`
	CardID      string     `json:"cardId"`
	CompletedAt time.Time  `json:"completedAt"`
	From        StationRef `json:"from"`
	To          StationRef `json:"to"`
	Cost        string     `json:"cost"`
}

// NewJourneyCompletedEvent maps a stored journey to its event.
func NewJourneyCompletedEvent(j domain.Journey) JourneyCompletedEvent {
	return JourneyCompletedEvent{
		JourneyID:   j.ID.String(),
		CardID:      j.CardID.String(),
		CompletedAt: j.Date.UTC(),
		From:        stationRef(j.From),
		To:          stationRef(j.To),
		Cost:        j.Cost.StringFixed(2),
	}
}

func stationRef(s *domain.Station) StationRef {
	if s == nil {
		return StationRef{}
	}
	return StationRef{ID: s.ID.String(), Code: s.Code, Name: s.Name, Zone: s.Zone.Code}
}

// PublishJourneyCompleted publishes j. The context is unused because a core
// NATS publish only buffers the message locally.
func (p *NATSPublisher) PublishJourneyCompleted(_ context.Context, j domain.Journey) error {
	b, err := json.Marshal(NewJourneyCompletedEvent(j))
	if err != nil {
		return fmt.Errorf("publisher.NATSPublisher.PublishJourneyCompleted: %w", err)
	}

	err = p.nc.Publish(p.subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.EventPublishFailed()
		} else {
			p.metrics.EventPublished()
		}
	}
	if err != nil {
		return fmt.Errorf("publisher.NATSPublisher.PublishJourneyCompleted: %w", err)
	}
	p.log.Debug("nats publish", "subject", p.subject, "journey_id", j.ID)
	return nil
}

// subjectToken makes s safe to use as a single NATS subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
