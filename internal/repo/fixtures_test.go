package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/repo"
	"github.com/pkordes/clamcard/testutil"
)

// repos bundles every repo over one rolled-back transaction.
type repos struct {
	zones    repo.ZoneRepo
	stations repo.StationRepo
	cards    repo.CardRepo
	journeys repo.JourneyRepo
}

func newRepos(t *testing.T) repos {
	t.Helper()
	var tx pgx.Tx = testutil.NewTx(t)
	return repos{
		zones:    repo.NewZoneRepo(tx),
		stations: repo.NewStationRepo(tx),
		cards:    repo.NewCardRepo(tx),
		journeys: repo.NewJourneyRepo(tx),
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func zoneFixture(code string) domain.Zone {
	return domain.Zone{
		Code:                 code,
		Name:                 "Zone " + code,
		CostPerSingleJourney: d("2.50"),
		CostPerDayLimit:      d("7.00"),
		CostPerWeekLimit:     d("40.00"),
	}
}

// seedStation creates a zone and a station in it.
func seedStation(t *testing.T, r repos, code, zoneCode string) domain.Station {
	t.Helper()
	ctx := context.Background()
	_, err := r.zones.Upsert(ctx, zoneFixture(zoneCode))
	require.NoError(t, err)
	s, err := r.stations.Upsert(ctx, code, "Station "+code, zoneCode)
	require.NoError(t, err)
	return s
}
