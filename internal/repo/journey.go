package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/clamcard/internal/domain"
)

// JourneyRepo defines the persistence operations for completed journeys.
// History is append-only: there is no update or delete.
type JourneyRepo interface {
	// Complete stores a completed journey and clears the card's open start
	// station in the same statement, so the two never disagree.
	// Returns the journey with its DB-generated ID, or domain.ErrNotFound if
	// the card does not exist.
	Complete(ctx context.Context, j domain.Journey) (domain.Journey, error)

	// ListByCard returns a card's full history in completion order.
	// Always returns a non-nil slice.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Journey, error)

	// ListByCardPaged returns one page of a card's history in completion order,
	// and the card's total journey count.
	ListByCardPaged(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error)
}

// pgJourneyRepo is the Postgres implementation of JourneyRepo.
type pgJourneyRepo struct {
	db db
}

// NewJourneyRepo constructs a JourneyRepo backed by the provided db connection.
func NewJourneyRepo(db db) JourneyRepo {
	return &pgJourneyRepo{db: db}
}

// Complete inserts the journey only if the card exists; the CTE clears the
// card's open start as part of the same statement.
func (r *pgJourneyRepo) Complete(ctx context.Context, j domain.Journey) (domain.Journey, error) {
	if j.From == nil || j.To == nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.Complete: %w: journey stations are required", domain.ErrValidation)
	}

	const q = `
		WITH cleared AS (
			UPDATE cards
			SET journey_start_station_id = NULL,
			    updated_at               = now()
			WHERE id = @card_id
			RETURNING id
		)
		INSERT INTO journeys (card_id, from_station_id, to_station_id, completed_at, cost)
		SELECT cleared.id, @from_id, @to_id, @completed_at, @cost::numeric
		FROM cleared
		RETURNING id`

	args := pgx.NamedArgs{
		"card_id":      j.CardID,
		"from_id":      j.From.ID,
		"to_id":        j.To.ID,
		"completed_at": j.Date,
		"cost":         j.Cost.String(),
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.Complete: %w", mapError(err))
	}
	j.ID = uuid.UUID(id.Bytes)
	return j, nil
}

// journeySelect joins both stations and their zones. Rows are read by scanJourney.
func journeySelect() string {
	return `
		SELECT j.id, j.card_id, j.completed_at, j.cost::text,
		       ` + stationCols("fs", "fz") + `,
		       ` + stationCols("ts", "tz") + `
		FROM journeys j
		JOIN stations fs ON fs.id = j.from_station_id
		JOIN zones fz    ON fz.code = fs.zone_code
		JOIN stations ts ON ts.id = j.to_station_id
		JOIN zones tz    ON tz.code = ts.zone_code
		WHERE j.card_id = @card_id`
}

// ListByCard returns every journey for a card ordered by seq.
// seq, not completed_at, defines history order.
func (r *pgJourneyRepo) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Journey, error) {
	q := journeySelect() + ` ORDER BY j.seq`

	journeys, err := r.query(ctx, q, pgx.NamedArgs{"card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("repo.JourneyRepo.ListByCard: %w", err)
	}
	return journeys, nil
}

// ListByCardPaged returns one page of a card's journeys ordered by seq.
func (r *pgJourneyRepo) ListByCardPaged(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error) {
	var total int64
	const countQ = `SELECT COUNT(*) FROM journeys WHERE card_id = @card_id`
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"card_id": cardID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.JourneyRepo.ListByCardPaged: count: %w", err)
	}

	q := journeySelect() + ` ORDER BY j.seq LIMIT @limit OFFSET @offset`
	args := pgx.NamedArgs{"card_id": cardID, "limit": p.Limit, "offset": p.Offset()}

	journeys, err := r.query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.JourneyRepo.ListByCardPaged: %w", err)
	}
	return journeys, total, nil
}

func (r *pgJourneyRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Journey, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	journeys := []domain.Journey{}
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return journeys, nil
}

// scanJourney maps a journeySelect row into a domain.Journey with both
// stations populated.
func scanJourney(s scanner) (domain.Journey, error) {
	var (
		j        domain.Journey
		id       pgtype.UUID
		cardID   pgtype.UUID
		cost     string
		from, to stationDest
	)
	dest := []any{&id, &cardID, &j.Date, &cost}
	dest = append(dest, from.targets()...)
	dest = append(dest, to.targets()...)
	if err := s.Scan(dest...); err != nil {
		return domain.Journey{}, mapError(err)
	}

	var err error
	if j.Cost, err = parseMoney(cost); err != nil {
		return domain.Journey{}, err
	}
	fromStation, err := from.result()
	if err != nil {
		return domain.Journey{}, err
	}
	toStation, err := to.result()
	if err != nil {
		return domain.Journey{}, err
	}
	j.ID = uuid.UUID(id.Bytes)
	j.CardID = uuid.UUID(cardID.Bytes)
	j.From = &fromStation
	j.To = &toStation
	return j, nil
}
