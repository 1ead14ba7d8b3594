// Package repo contains all database access logic for the ClamCard service.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/clamcard/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// pgForeignKeyViolation is the SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

// mapError converts driver errors into domain sentinels where one applies.
// pgx.ErrNoRows becomes domain.ErrNotFound; a foreign key violation means the
// caller referenced something that does not exist, which is a validation error.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.Detail)
	}
	return err
}

// parseMoney converts a NUMERIC column read as text into a decimal.
// Money travels as text so no precision is lost to float conversion.
func parseMoney(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return v, nil
}

// zoneCols selects the columns of the zones table aliased as z, with money
// cast to text. zoneDest reads them back in the same order.
func zoneCols(z string) string {
	return z + ".code, " + z + ".name, " +
		z + ".cost_per_single_journey::text, " +
		z + ".cost_per_day_limit::text, " +
		z + ".cost_per_week_limit::text"
}

// stationCols selects a station aliased as s joined with its zone aliased as z.
// stationDest reads them back in the same order.
func stationCols(s, z string) string {
	return s + ".id, " + s + ".code, " + s + ".name, " + zoneCols(z)
}

// zoneDest holds raw zone columns until they are converted.
type zoneDest struct {
	zone                        domain.Zone
	single, dayLimit, weekLimit string
}

func (d *zoneDest) targets() []any {
	return []any{&d.zone.Code, &d.zone.Name, &d.single, &d.dayLimit, &d.weekLimit}
}

func (d *zoneDest) result() (domain.Zone, error) {
	var err error
	z := d.zone
	if z.CostPerSingleJourney, err = parseMoney(d.single); err != nil {
		return domain.Zone{}, err
	}
	if z.CostPerDayLimit, err = parseMoney(d.dayLimit); err != nil {
		return domain.Zone{}, err
	}
	if z.CostPerWeekLimit, err = parseMoney(d.weekLimit); err != nil {
		return domain.Zone{}, err
	}
	return z, nil
}

// stationDest holds raw station columns until they are converted.
type stationDest struct {
	id   pgtype.UUID
	code string
	name string
	zone zoneDest
}

func (d *stationDest) targets() []any {
	return append([]any{&d.id, &d.code, &d.name}, d.zone.targets()...)
}

func (d *stationDest) result() (domain.Station, error) {
	z, err := d.zone.result()
	if err != nil {
		return domain.Station{}, err
	}
	return domain.Station{
		ID:   uuid.UUID(d.id.Bytes),
		Code: d.code,
		Name: d.name,
		Zone: z,
	}, nil
}
