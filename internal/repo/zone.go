package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/clamcard/internal/domain"
)

// ZoneRepo defines the persistence operations for tariff zones.
type ZoneRepo interface {
	// Upsert inserts a zone or overwrites the tariffs of an existing zone with
	// the same code, and returns the stored record.
	Upsert(ctx context.Context, zone domain.Zone) (domain.Zone, error)

	// GetByCode returns a zone by code, or domain.ErrNotFound.
	GetByCode(ctx context.Context, code string) (domain.Zone, error)

	// List returns all zones ordered by code.
	List(ctx context.Context) ([]domain.Zone, error)
}

// pgZoneRepo is the Postgres implementation of ZoneRepo.
type pgZoneRepo struct {
	db db
}

// NewZoneRepo constructs a ZoneRepo backed by the provided db connection.
func NewZoneRepo(db db) ZoneRepo {
	return &pgZoneRepo{db: db}
}

// Upsert inserts or updates a zone keyed by code.
func (r *pgZoneRepo) Upsert(ctx context.Context, zone domain.Zone) (domain.Zone, error) {
	q := `
		INSERT INTO zones AS z (code, name, cost_per_single_journey, cost_per_day_limit, cost_per_week_limit)
		VALUES (@code, @name, @single::numeric, @day::numeric, @week::numeric)
		ON CONFLICT (code) DO UPDATE
		SET name                    = EXCLUDED.name,
		    cost_per_single_journey = EXCLUDED.cost_per_single_journey,
		    cost_per_day_limit      = EXCLUDED.cost_per_day_limit,
		    cost_per_week_limit     = EXCLUDED.cost_per_week_limit,
		    updated_at              = now()
		RETURNING ` + zoneCols("z")

	args := pgx.NamedArgs{
		"code":   zone.Code,
		"name":   zone.Name,
		"single": zone.CostPerSingleJourney.String(),
		"day":    zone.CostPerDayLimit.String(),
		"week":   zone.CostPerWeekLimit.String(),
	}

	result, err := scanZone(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Zone{}, fmt.Errorf("repo.ZoneRepo.Upsert: %w", err)
	}
	return result, nil
}

// GetByCode retrieves a zone by its code.
func (r *pgZoneRepo) GetByCode(ctx context.Context, code string) (domain.Zone, error) {
	q := `SELECT ` + zoneCols("z") + ` FROM zones z WHERE z.code = @code`

	result, err := scanZone(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code}))
	if err != nil {
		return domain.Zone{}, fmt.Errorf("repo.ZoneRepo.GetByCode: %w", err)
	}
	return result, nil
}

// List returns every zone ordered by code.
func (r *pgZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	q := `SELECT ` + zoneCols("z") + ` FROM zones z ORDER BY z.code`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ZoneRepo.List: %w", err)
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ZoneRepo.List: scan: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ZoneRepo.List: rows: %w", err)
	}
	return zones, nil
}

// scanZone maps a single row of zoneCols into a domain.Zone.
func scanZone(s scanner) (domain.Zone, error) {
	var d zoneDest
	if err := s.Scan(d.targets()...); err != nil {
		return domain.Zone{}, mapError(err)
	}
	return d.result()
}
