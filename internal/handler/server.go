// Package handler implements the HTTP handlers for the ClamCard API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, card.go, zone.go, station.go, export.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/clamcard/internal/domain"
)

// CardServicer defines the card operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type CardServicer interface {
	State(ctx context.Context, cardID uuid.UUID) (domain.CardState, error)
	TapIn(ctx context.Context, cardID, stationID uuid.UUID) (domain.CardState, error)
	TapOut(ctx context.Context, cardID, stationID uuid.UUID) (*domain.Journey, error)
	History(ctx context.Context, cardID uuid.UUID, p domain.PaginationParams) ([]domain.Journey, int64, error)
}

// CatalogServicer defines the zone and station operations the handlers depend on.
type CatalogServicer interface {
	Station(ctx context.Context, id uuid.UUID) (domain.Station, error)
	ListStations(ctx context.Context, p domain.PaginationParams) ([]domain.Station, int64, error)
	ListZones(ctx context.Context) ([]domain.Zone, error)
	UpsertZone(ctx context.Context, zone domain.Zone) (domain.Zone, error)
}

// ExportServicer defines the export operation the handlers depend on.
type ExportServicer interface {
	Export(ctx context.Context, cardID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	cards   CardServicer
	catalog CatalogServicer
	export  ExportServicer
	openAPI []byte
	log     *slog.Logger
	tapMW   []func(http.Handler) http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithOpenAPI sets the document served at /openapi.yaml.
func WithOpenAPI(doc []byte) Option {
	return func(s *Server) { s.openAPI = doc }
}

// WithTapMiddleware wraps only the tap endpoints, e.g. with a per-card rate
// limiter. The middleware runs below /cards/{id}, so the id is resolvable.
func WithTapMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.tapMW = append(s.tapMW, mw...) }
}

// NewServer constructs the Server with all its dependencies.
// Any service may be nil when a test only exercises the others.
func NewServer(cards CardServicer, catalog CatalogServicer, export ExportServicer, opts ...Option) *Server {
	s := &Server{cards: cards, catalog: catalog, export: export, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes registers every endpoint on r, plus JSON 404 and 405 responses.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/zones", func(r chi.Router) {
		r.Get("/", s.ListZones)
		r.Put("/{code}", s.UpsertZone)
	})

	r.Route("/stations", func(r chi.Router) {
		r.Get("/", s.ListStations)
		r.Get("/{id}", s.GetStation)
	})

	r.Route("/cards/{id}", func(r chi.Router) {
		r.Get("/", s.GetCard)
		r.With(s.tapMW...).Post("/tap-in", s.TapIn)
		r.With(s.tapMW...).Post("/tap-out", s.TapOut)
		r.Get("/journeys", s.ListJourneys)
		r.Get("/export", s.ExportJourneys)
	})
}

// Handler returns a chi router serving every endpoint, without middleware.
// main.go calls Routes on its own router so middleware wraps every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
