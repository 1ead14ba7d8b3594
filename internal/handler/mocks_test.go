package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/handler"
	"github.com/pkordes/clamcard/internal/service"
)

// mockCardServicer is a test double for handler.CardServicer.
// Set only the method fields your test needs.
type mockCardServicer struct {
	state   func(ctx context.Context, cardID uuid.UUID) (domain.CardState, error)
	tapIn   func(ctx context.Context, cardID, stationID uuid.UUID) (domain.CardState, error)
	tapOut  func(ctx context.Context, cardID, stationID uuid.UUID) (*domain.Journey, error)
	history func(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error)
}

func (m *mockCardServicer) State(ctx context.Context, cardID uuid.UUID) (domain.CardState, error) {
	return m.state(ctx, cardID)
}
func (m *mockCardServicer) TapIn(ctx context.Context, cardID, stationID uuid.UUID) (domain.CardState, error) {
	return m.tapIn(ctx, cardID, stationID)
}
func (m *mockCardServicer) TapOut(ctx context.Context, cardID, stationID uuid.UUID) (*domain.Journey, error) {
	return m.tapOut(ctx, cardID, stationID)
}
func (m *mockCardServicer) History(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error) {
	return m.history(ctx, cardID, p)
}

// mockCatalogServicer is a test double for handler.CatalogServicer.
type mockCatalogServicer struct {
	station      func(ctx context.Context, id uuid.UUID) (domain.Station, error)
	listStations func(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
	listZones    func(ctx context.Context) ([]domain.Zone, error)
	upsertZone   func(ctx context.Context, zone domain.Zone) (domain.Zone, error)
}

func (m *mockCatalogServicer) Station(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	return m.station(ctx, id)
}
func (m *mockCatalogServicer) ListStations(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
	return m.listStations(ctx, p)
}
func (m *mockCatalogServicer) ListZones(ctx context.Context) ([]domain.Zone, error) {
	return m.listZones(ctx)
}
func (m *mockCatalogServicer) UpsertZone(ctx context.Context, zone domain.Zone) (domain.Zone, error) {
	return m.upsertZone(ctx, zone)
}

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, cardID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, cardID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, cardID)
}

// compile-time checks: mocks and the real services satisfy the handler interfaces.
var (
	_ handler.CardServicer    = (*mockCardServicer)(nil)
	_ handler.CatalogServicer = (*mockCatalogServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)

	_ handler.CardServicer    = (*service.CardService)(nil)
	_ handler.CatalogServicer = (*service.CatalogService)(nil)
	_ handler.ExportServicer  = (*service.ExportService)(nil)
)

// ---- helpers ---------------------------------------------------------------

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func zoneFixture(code string) domain.Zone {
	return domain.Zone{
		Code:                 code,
		Name:                 "Zone " + code,
		CostPerSingleJourney: d("2.5"),
		CostPerDayLimit:      d("7"),
		CostPerWeekLimit:     d("40"),
	}
}

func stationFixture(code, zone string) domain.Station {
	return domain.Station{ID: uuid.New(), Code: code, Name: "Station " + code, Zone: zoneFixture(zone)}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func newHTTPHandler(cards handler.CardServicer, catalog handler.CatalogServicer, export handler.ExportServicer) http.Handler {
	return handler.NewServer(cards, catalog, export).Handler()
}
