package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/gtfsfeed"
	"github.com/pkordes/clamcard/internal/repo"
)

// CatalogService manages the zone and station reference data cards tap against.
type CatalogService struct {
	zones    repo.ZoneRepo
	stations repo.StationRepo
}

// NewCatalogService constructs a CatalogService backed by the provided repos.
func NewCatalogService(zones repo.ZoneRepo, stations repo.StationRepo) *CatalogService {
	return &CatalogService{zones: zones, stations: stations}
}

// ImportResult summarizes a station import.
type ImportResult struct {
	Imported int
	// Skipped holds the codes of stops that have no zone or an unknown zone.
	Skipped []string
}

// Station returns a station by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *CatalogService) Station(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	st, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return domain.Station{}, fmt.Errorf("service.CatalogService.Station: %w", err)
	}
	return st, nil
}

// ListStations returns one page of stations and the total count.
func (s *CatalogService) ListStations(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	stations, total, err := s.stations.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CatalogService.ListStations: %w", err)
	}
	if stations == nil {
		stations = []domain.Station{}
	}
	return stations, total, nil
}

// ListZones returns all zones ordered by code.
// Always returns a non-nil slice so callers can safely range over it.
func (s *CatalogService) ListZones(ctx context.Context) ([]domain.Zone, error) {
	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.ListZones: %w", err)
	}
	if zones == nil {
		return []domain.Zone{}, nil
	}
	return zones, nil
}

// UpsertZone validates and stores a zone's tariffs.
// Returns domain.ErrValidation if input violates business rules.
func (s *CatalogService) UpsertZone(ctx context.Context, zone domain.Zone) (domain.Zone, error) {
	zone.Code = strings.TrimSpace(zone.Code)
	if err := validateZone(zone); err != nil {
		return domain.Zone{}, err
	}
	result, err := s.zones.Upsert(ctx, zone)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("service.CatalogService.UpsertZone: %w", err)
	}
	return result, nil
}

// ImportStations upserts stops from a GTFS feed. Stops without a zone, or
// whose zone has not been configured, are skipped and reported rather than
// failing the whole import.
func (s *CatalogService) ImportStations(ctx context.Context, stops []gtfsfeed.Stop) (ImportResult, error) {
	var res ImportResult
	for _, stop := range stops {
		if stop.ZoneCode == "" {
			res.Skipped = append(res.Skipped, stop.Code)
			continue
		}
		name := stop.Name
		if strings.TrimSpace(name) == "" {
			name = stop.Code
		}
		_, err := s.stations.Upsert(ctx, stop.Code, name, stop.ZoneCode)
		if errors.Is(err, domain.ErrValidation) {
			res.Skipped = append(res.Skipped, stop.Code)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("service.CatalogService.ImportStations: %s: %w", stop.Code, err)
		}
		res.Imported++
	}
	return res, nil
}

// validateZone enforces the zone business rules.
//   - Code must be non-empty.
//   - Every tariff must be non-negative with at most two decimal places.
//
// Caps are not ordered against each other or the single fare; fare.Limit
// clamps correctly for any combination.
func validateZone(z domain.Zone) error {
	if z.Code == "" {
		return fmt.Errorf("%w: code is required", domain.ErrValidation)
	}
	tariffs := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"cost_per_single_journey", z.CostPerSingleJourney},
		{"cost_per_day_limit", z.CostPerDayLimit},
		{"cost_per_week_limit", z.CostPerWeekLimit},
	}
	for _, t := range tariffs {
		if t.amount.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrValidation, t.name)
		}
		// The zones table stores NUMERIC(12,2); finer amounts would be rounded silently.
		if !t.amount.Equal(t.amount.Round(2)) {
			return fmt.Errorf("%w: %s must have at most two decimal places", domain.ErrValidation, t.name)
		}
	}
	return nil
}
