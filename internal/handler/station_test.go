package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/clamcard/internal/domain"
	"github.com/pkordes/clamcard/internal/handler"
)

func TestListStations_200(t *testing.T) {
	svc := &mockCatalogServicer{
		listStations: func(_ context.Context, p domain.PaginationParams) ([]domain.Station, int64, error) {
			return []domain.Station{stationFixture("AS", "A"), stationFixture("BA", "B")}, 2, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stations", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.StationList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "BA", resp.Data[1].Code)
	assert.Equal(t, "B", resp.Data[1].Zone)
	assert.Equal(t, handler.Pagination{Page: 1, Limit: 20, Total: 2}, resp.Pagination)
}

func TestGetStation_200(t *testing.T) {
	st := stationFixture("AS", "A")
	svc := &mockCatalogServicer{
		station: func(_ context.Context, id uuid.UUID) (domain.Station, error) {
			require.Equal(t, st.ID, id)
			return st, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stations/"+st.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.Station
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, handler.Station{ID: st.ID, Code: "AS", Name: "Station AS", Zone: "A"}, resp)
}

func TestGetStation_404(t *testing.T) {
	svc := &mockCatalogServicer{
		station: func(_ context.Context, _ uuid.UUID) (domain.Station, error) {
			return domain.Station{}, fmt.Errorf("service.CatalogService.Station: %w", domain.ErrNotFound)
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stations/"+uuid.NewString(), nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "station not found", decodeError(t, rec.Body).Message)
}
