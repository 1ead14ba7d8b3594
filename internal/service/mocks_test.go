package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/repo"
)

// Hand-written test doubles: each method is a function field, set only the
// ones a test needs.

type mockCardRepo struct {
	ensure          func(ctx context.Context, id uuid.UUID) (domain.CardState, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.CardState, error)
	setJourneyStart func(ctx context.Context, id uuid.UUID, stationID *uuid.UUID) error
}

func (m *mockCardRepo) Ensure(ctx context.Context, id uuid.UUID) (domain.CardState, error) {
	return m.ensure(ctx, id)
}
func (m *mockCardRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.CardState, error) {
	return m.getByID(ctx, id)
}
func (m *mockCardRepo) SetJourneyStart(ctx context.Context, id uuid.UUID, stationID *uuid.UUID) error {
	return m.setJourneyStart(ctx, id, stationID)
}

type mockJourneyRepo struct {
	complete        func(ctx context.Context, j domain.Journey) (domain.Journey, error)
	listByCard      func(ctx context.Context, cardID uuid.UUID) ([]domain.Journey, error)
	listByCardPaged func(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error)
}

func (m *mockJourneyRepo) Complete(ctx context.Context, j domain.Journey) (domain.Journey, error) {
	return m.complete(ctx, j)
}
func (m *mockJourneyRepo) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Journey, error) {
	return m.listByCard(ctx, cardID)
}
func (m *mockJourneyRepo) ListByCardPaged(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error) {
	return m.listByCardPaged(ctx, cardID, p)
}

type mockStationRepo struct {
	upsert    func(ctx context.Context, code, name, zoneCode string) (domain.Station, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Station, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
}

func (m *mockStationRepo) Upsert(ctx context.Context, code, name, zoneCode string) (domain.Station, error) {
	return m.upsert(ctx, code, name, zoneCode)
}
func (m *mockStationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	return m.getByID(ctx, id)
}
func (m *mockStationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	return m.listPaged(ctx, p)
}

type mockZoneRepo struct {
	upsert    func(ctx context.Context, zone domain.Zone) (domain.Zone, error)
	getByCode func(ctx context.Context, code string) (domain.Zone, error)
	list      func(ctx context.Context) ([]domain.Zone, error)
}

func (m *mockZoneRepo) Upsert(ctx context.Context, zone domain.Zone) (domain.Zone, error) {
	return m.upsert(ctx, zone)
}
func (m *mockZoneRepo) GetByCode(ctx context.Context, code string) (domain.Zone, error) {
	return m.getByCode(ctx, code)
}
func (m *mockZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	return m.list(ctx)
}

// compile-time checks: mocks must satisfy the repo interfaces.
var (
	_ repo.CardRepo    = (*mockCardRepo)(nil)
	_ repo.JourneyRepo = (*mockJourneyRepo)(nil)
	_ repo.StationRepo = (*mockStationRepo)(nil)
	_ repo.ZoneRepo    = (*mockZoneRepo)(nil)
)
