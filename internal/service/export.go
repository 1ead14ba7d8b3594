package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/repo"
)

// ExportService assembles a flat export of one card's journey history.
type ExportService struct {
	cards    repo.CardRepo
	journeys repo.JourneyRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(cards repo.CardRepo, journeys repo.JourneyRepo) *ExportService {
	return &ExportService{cards: cards, journeys: journeys}
}

// Export returns one ExportRow per completed journey, in completion order.
// Returns domain.ErrNotFound if the card has never tapped.
func (s *ExportService) Export(ctx context.Context, cardID uuid.UUID) ([]domain.ExportRow, error) {
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	journeys, err := s.journeys.ListByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(journeys))
	for _, j := range journeys {
		rows = append(rows, toExportRow(j))
	}
	return rows, nil
}

func toExportRow(j domain.Journey) domain.ExportRow {
	row := domain.ExportRow{
		JourneyID:   j.ID.String(),
		CompletedAt: j.Date,
		Cost:        j.Cost.StringFixed(2),
	}
	if j.From != nil {
		row.FromStation = j.From.Name
		row.FromZone = j.From.Zone.Code
	}
	if j.To != nil {
		row.ToStation = j.To.Name
		row.ToZone = j.To.Zone.Code
	}
	return row
}
