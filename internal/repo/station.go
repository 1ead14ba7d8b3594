package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/clamcard/internal/domain"
)

// StationRepo defines the persistence operations for stations.
// Every station read comes back with its zone attached.
type StationRepo interface {
	// Upsert inserts a station keyed by code, or renames / re-zones the
	// existing one. Returns domain.ErrValidation if zoneCode is unknown.
	Upsert(ctx context.Context, code, name, zoneCode string) (domain.Station, error)

	// GetByID returns a station by ID, or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error)

	// ListPaged returns one page of stations ordered by name, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
}

// pgStationRepo is the Postgres implementation of StationRepo.
type pgStationRepo struct {
	db db
}

// NewStationRepo constructs a StationRepo backed by the provided db connection.
func NewStationRepo(db db) StationRepo {
	return &pgStationRepo{db: db}
}

// Upsert inserts or updates a station and returns it joined with its zone.
func (r *pgStationRepo) Upsert(ctx context.Context, code, name, zoneCode string) (domain.Station, error) {
	q := `
		WITH s AS (
			INSERT INTO stations (code, name, zone_code)
			VALUES (@code, @name, @zone_code)
			ON CONFLICT (code) DO UPDATE
			SET name       = EXCLUDED.name,
			    zone_code  = EXCLUDED.zone_code,
			    updated_at = now()
			RETURNING id, code, name, zone_code
		)
		SELECT ` + stationCols("s", "z") + `
		FROM s JOIN zones z ON z.code = s.zone_code`

	args := pgx.NamedArgs{"code": code, "name": name, "zone_code": zoneCode}

	result, err := scanStation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Station{}, fmt.Errorf("repo.StationRepo.Upsert: %w", err)
	}
	return result, nil
}

// GetByID retrieves a station by primary key.
func (r *pgStationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	q := `
		SELECT ` + stationCols("s", "z") + `
		FROM stations s JOIN zones z ON z.code = s.zone_code
		WHERE s.id = @id`

	result, err := scanStation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Station{}, fmt.Errorf("repo.StationRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns a page of stations and the total number of stations.
func (r *pgStationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: count: %w", err)
	}

	q := `
		SELECT ` + stationCols("s", "z") + `
		FROM stations s JOIN zones z ON z.code = s.zone_code
		ORDER BY s.name, s.code
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	stations := []domain.Station{}
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: scan: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.StationRepo.ListPaged: rows: %w", err)
	}
	return stations, total, nil
}

// scanStation maps a single row of stationCols into a domain.Station.
func scanStation(sc scanner) (domain.Station, error) {
	var d stationDest
	if err := sc.Scan(d.targets()...); err != nil {
		return domain.Station{}, mapError(err)
	}
	return d.result()
}
