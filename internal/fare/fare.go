// Package fare computes journey fares with per-day and per-week caps.
// Every function here is pure: it reads zones and a journey history and
// returns amounts, so it can be tested without a card or a clock.
package fare

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/clamcard/internal/domain"
)

// Breakdown records how a fare was reached. Charged is what the card bills.
type Breakdown struct {
	Base          decimal.Decimal
	DayLimit      decimal.Decimal
	WeekLimit     decimal.Decimal
	SpentToday    decimal.Decimal
	SpentThisWeek decimal.Decimal

	// AfterDayCap is Base clamped by the day cap, before the week cap is applied.
	AfterDayCap decimal.Decimal
	Charged     decimal.Decimal
}

// DayCapped reports whether the day cap lowered the fare.
func (b Breakdown) DayCapped() bool { return b.AfterDayCap.LessThan(b.Base) }

// WeekCapped reports whether the week cap lowered the fare further.
func (b Breakdown) WeekCapped() bool { return b.Charged.LessThan(b.AfterDayCap) }

// Quote prices a journey from one station to another completed at now.
// The day cap is applied first; the week cap is then applied to the
// day-capped amount. Day and week boundaries are those of now's location.
func Quote(from, to *domain.Station, history []domain.Journey, now time.Time) Breakdown {
	b := Breakdown{
		Base:          SingleJourneyCost(from.Zone, to.Zone),
		DayLimit:      DayLimit(from.Zone, to.Zone),
		WeekLimit:     WeekLimit(from.Zone, to.Zone),
		SpentToday:    SpentOnDay(history, now),
		SpentThisWeek: SpentInWeek(history, now),
	}
	b.AfterDayCap = Limit(b.Base, b.DayLimit, b.SpentToday)
	b.Charged = Limit(b.AfterDayCap, b.WeekLimit, b.SpentThisWeek)
	return b
}

// SingleJourneyCost is the pricier of the two zones' single-journey fares.
// Direction does not matter.
func SingleJourneyCost(a, b domain.Zone) decimal.Decimal {
	return decimal.Max(a.CostPerSingleJourney, b.CostPerSingleJourney)
}

// DayLimit is the higher of the two zones' day caps.
func DayLimit(a, b domain.Zone) decimal.Decimal {
	return decimal.Max(a.CostPerDayLimit, b.CostPerDayLimit)
}

// WeekLimit is the higher of the two zones' week caps.
func WeekLimit(a, b domain.Zone) decimal.Decimal {
	return decimal.Max(a.CostPerWeekLimit, b.CostPerWeekLimit)
}

// Limit clamps cost so that alreadyCharged+cost does not exceed limit.
// When alreadyCharged is over the limit (a tariff was lowered mid-week) the
// result is zero rather than a refund.
func Limit(cost, limit, alreadyCharged decimal.Decimal) decimal.Decimal {
	if alreadyCharged.Add(cost).LessThanOrEqual(limit) {
		return cost
	}
	remaining := limit.Sub(alreadyCharged)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// SpentOnDay sums the cost of journeys completed on the same calendar date as day.
func SpentOnDay(history []domain.Journey, day time.Time) decimal.Decimal {
	y, m, d := day.Date()
	total := decimal.Zero
	for _, j := range history {
		jy, jm, jd := j.Date.In(day.Location()).Date()
		if jy == y && jm == m && jd == d {
			total = total.Add(j.Cost)
		}
	}
	return total
}

// SpentInWeek sums the cost of journeys completed in the same ISO-8601 week as t.
func SpentInWeek(history []domain.Journey, t time.Time) decimal.Decimal {
	y, w := t.ISOWeek()
	total := decimal.Zero
	for _, j := range history {
		jy, jw := j.Date.In(t.Location()).ISOWeek()
		if jy == y && jw == w {
			total = total.Add(j.Cost)
		}
	}
	return total
}
