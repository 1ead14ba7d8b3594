package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/clamcard/internal/domain"
)

// Wire types for request and response bodies. Money is always a string with
// two decimal places so clients never see binary floating point.

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorDetail is the inner object of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error":{...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Zone is the wire form of domain.Zone.
type Zone struct {
	Code                 string `json:"code"`
	Name                 string `json:"name,omitempty"`
	CostPerSingleJourney string `json:"cost_per_single_journey"`
	CostPerDayLimit      string `json:"cost_per_day_limit"`
	CostPerWeekLimit     string `json:"cost_per_week_limit"`
}

// ZoneRequest is the body of PUT /zones/{code}. Amounts are decimal strings.
type ZoneRequest struct {
	Name                 string  `json:"name"`
	CostPerSingleJourney *string `json:"cost_per_single_journey"`
	CostPerDayLimit      *string `json:"cost_per_day_limit"`
	CostPerWeekLimit     *string `json:"cost_per_week_limit"`
}

// Station is the wire form of domain.Station. Zone is the zone code.
type Station struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
	Zone string    `json:"zone"`
}

// StationList is one page of stations.
type StationList struct {
	Data       []Station  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Card is the wire form of domain.CardState.
type Card struct {
	ID               uuid.UUID `json:"id"`
	InProgress       bool      `json:"in_progress"`
	JourneyStartFrom *Station  `json:"journey_start_from,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitzero"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

// TapRequest is the body of both tap endpoints.
type TapRequest struct {
	StationID *uuid.UUID `json:"station_id"`
}

// Journey is the wire form of domain.Journey.
type Journey struct {
	ID          uuid.UUID `json:"id"`
	CardID      uuid.UUID `json:"card_id"`
	CompletedAt time.Time `json:"completed_at"`
	From        Station   `json:"from"`
	To          Station   `json:"to"`
	Cost        string    `json:"cost"`
}

// JourneyList is one page of a card's history.
type JourneyList struct {
	Data       []Journey  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ExportRow is the JSON form of domain.ExportRow.
type ExportRow struct {
	JourneyID   string    `json:"journey_id"`
	CompletedAt time.Time `json:"completed_at"`
	FromStation string    `json:"from_station"`
	FromZone    string    `json:"from_zone"`
	ToStation   string    `json:"to_station"`
	ToZone      string    `json:"to_zone"`
	Cost        string    `json:"cost"`
}

// --- mapping helpers --------------------------------------------------------

func zoneToResponse(z domain.Zone) Zone {
	return Zone{
		Code:                 z.Code,
		Name:                 z.Name,
		CostPerSingleJourney: z.CostPerSingleJourney.StringFixed(2),
		CostPerDayLimit:      z.CostPerDayLimit.StringFixed(2),
		CostPerWeekLimit:     z.CostPerWeekLimit.StringFixed(2),
	}
}

func stationToResponse(s domain.Station) Station {
	return Station{ID: s.ID, Code: s.Code, Name: s.Name, Zone: s.Zone.Code}
}

func cardToResponse(c domain.CardState) Card {
	resp := Card{
		ID:         c.ID,
		InProgress: c.JourneyStartFrom != nil,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.JourneyStartFrom != nil {
		st := stationToResponse(*c.JourneyStartFrom)
		resp.JourneyStartFrom = &st
	}
	return resp
}

func journeyToResponse(j domain.Journey) Journey {
	resp := Journey{
		ID:          j.ID,
		CardID:      j.CardID,
		CompletedAt: j.Date.UTC(),
		Cost:        j.Cost.StringFixed(2),
	}
	if j.From != nil {
		resp.From = stationToResponse(*j.From)
	}
	if j.To != nil {
		resp.To = stationToResponse(*j.To)
	}
	return resp
}
