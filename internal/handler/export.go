package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/clamcard/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"journey_id", "completed_at",
	"from_station", "from_zone", "to_station", "to_zone",
	"cost",
}

// ExportJourneys handles GET /cards/{id}/export.
// It returns the card's full journey history as a flat table.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportJourneys(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		requestError(w, "invalid format: must be json or csv")
		return
	}

	rows, err := s.export.Export(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "card not found")
		return
	}

	if format == "csv" {
		s.writeCSV(w, r, fmt.Sprintf("card-%s-journeys.csv", id), rows)
		return
	}

	out := make([]ExportRow, len(rows))
	for i, row := range rows {
		out[i] = ExportRow(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as a CSV attachment. The body is buffered so an
// encoding failure can still become a 500.
func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, filename string, rows []domain.ExportRow) {
	var buf bytes.Buffer
	if err := encodeCSV(&buf, rows); err != nil {
		s.handleError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// encodeCSV writes the header row followed by one record per row.
func encodeCSV(dst io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(csvHeaders); err != nil {
		return fmt.Errorf("handler.encodeCSV: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(domainRowToCSVRecord(row)); err != nil {
			return fmt.Errorf("handler.encodeCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("handler.encodeCSV: %w", err)
	}
	return nil
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.JourneyID,
		r.CompletedAt.UTC().Format(time.RFC3339),
		r.FromStation,
		r.FromZone,
		r.ToStation,
		r.ToZone,
		r.Cost,
	}
}
