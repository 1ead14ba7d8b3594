// Package domain contains the core data types for the ClamCard fare service.
// It holds no behaviour beyond small value helpers and is imported by every
// other internal package (fare, card, repo, service, handler).
package domain

import "github.com/shopspring/decimal"

// Zone is a tariff-bearing grouping of stations.
// Zones are reference data: loaded once, never mutated by a card.
type Zone struct {
	// Code is the zone identifier, e.g. "A". It matches zone_id in GTFS stops.txt.
	Code string `json:"code"`
	Name string `json:"name,omitempty"`

	CostPerSingleJourney decimal.Decimal `json:"cost_per_single_journey"`
	CostPerDayLimit      decimal.Decimal `json:"cost_per_day_limit"`
	CostPerWeekLimit     decimal.Decimal `json:"cost_per_week_limit"`
}
