package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/clamcard/internal/domain"
)

// CardRepo defines the persistence operations for card state.
// A card row exists from the first time a reader sees the card's ID; the
// service never issues cards, it only remembers them.
type CardRepo interface {
	// Ensure returns the card with id, creating an idle card if none exists.
	Ensure(ctx context.Context, id uuid.UUID) (domain.CardState, error)

	// GetByID returns the card with id, or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.CardState, error)

	// SetJourneyStart records the station an open journey started at.
	// A nil stationID clears it. Returns domain.ErrNotFound if the card does not exist.
	SetJourneyStart(ctx context.Context, id uuid.UUID, stationID *uuid.UUID) error
}

// pgCardRepo is the Postgres implementation of CardRepo.
type pgCardRepo struct {
	db db
}

// NewCardRepo constructs a CardRepo backed by the provided db connection.
func NewCardRepo(db db) CardRepo {
	return &pgCardRepo{db: db}
}

// Ensure inserts an idle card if it is missing, then reads it back.
func (r *pgCardRepo) Ensure(ctx context.Context, id uuid.UUID) (domain.CardState, error) {
	const q = `INSERT INTO cards (id) VALUES (@id) ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return domain.CardState{}, fmt.Errorf("repo.CardRepo.Ensure: %w", err)
	}
	result, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.CardState{}, fmt.Errorf("repo.CardRepo.Ensure: %w", err)
	}
	return result, nil
}

// GetByID reads a card and, if a journey is open, its start station and zone.
func (r *pgCardRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.CardState, error) {
	q := `
		SELECT c.id, c.created_at, c.updated_at, s.id IS NOT NULL,
		       COALESCE(s.id, '00000000-0000-0000-0000-000000000000'::uuid),
		       COALESCE(s.code, ''), COALESCE(s.name, ''),
		       COALESCE(z.code, ''), COALESCE(z.name, ''),
		       COALESCE(z.cost_per_single_journey, 0)::text,
		       COALESCE(z.cost_per_day_limit, 0)::text,
		       COALESCE(z.cost_per_week_limit, 0)::text
		FROM cards c
		LEFT JOIN stations s ON s.id = c.journey_start_station_id
		LEFT JOIN zones z    ON z.code = s.zone_code
		WHERE c.id = @id`

	var (
		cardID    pgtype.UUID
		createdAt time.Time
		updatedAt time.Time
		hasStart  bool
		start     stationDest
	)
	dest := append([]any{&cardID, &createdAt, &updatedAt, &hasStart}, start.targets()...)
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(dest...); err != nil {
		return domain.CardState{}, fmt.Errorf("repo.CardRepo.GetByID: %w", mapError(err))
	}

	state := domain.CardState{
		ID:        uuid.UUID(cardID.Bytes),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if hasStart {
		st, err := start.result()
		if err != nil {
			return domain.CardState{}, fmt.Errorf("repo.CardRepo.GetByID: %w", err)
		}
		state.JourneyStartFrom = &st
	}
	return state, nil
}

// SetJourneyStart overwrites the card's open start station.
func (r *pgCardRepo) SetJourneyStart(ctx context.Context, id uuid.UUID, stationID *uuid.UUID) error {
	const q = `
		UPDATE cards
		SET journey_start_station_id = @station_id,
		    updated_at               = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "station_id": stationID})
	if err != nil {
		return fmt.Errorf("repo.CardRepo.SetJourneyStart: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CardRepo.SetJourneyStart: %w", domain.ErrNotFound)
	}
	return nil
}
