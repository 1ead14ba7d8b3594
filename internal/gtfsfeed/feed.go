// Package gtfsfeed reads station records out of a GTFS static feed.
// Only stops.txt matters here: each stop's zone_id places it in a fare zone.
package gtfsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"
)

// Stop is a station as the feed describes it.
type Stop struct {
	Code     string // stop_id
	Name     string
	ZoneCode string // zone_id; empty when the feed assigns none
}

// downloadTimeout bounds fetching a remote feed.
const downloadTimeout = 60 * time.Second

// GTFS location_type values a card can be tapped at.
const (
	locationTypeStop    = 0
	locationTypeStation = 1
)

// Load reads a GTFS zip from a local path or an http(s) URL and returns its stops.
func Load(ctx context.Context, source string) ([]Stop, error) {
	b, err := read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("gtfsfeed.Load: %w", err)
	}
	stops, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("gtfsfeed.Load: %w", err)
	}
	return stops, nil
}

// Parse decodes a GTFS zip held in memory.
// Entrances, generic nodes and boarding areas are skipped: only stops and
// stations can be tapped at.
func Parse(b []byte) ([]Stop, error) {
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("parse GTFS: %w", err)
	}

	stops := make([]Stop, 0, len(static.Stops))
	for _, s := range static.Stops {
		if t := int64(s.Type); t != locationTypeStop && t != locationTypeStation {
			continue
		}
		stops = append(stops, Stop{
			Code:     s.Id,
			Name:     s.Name,
			ZoneCode: s.ZoneId,
		})
	}
	return stops, nil
}

func read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read local GTFS file: %w", err)
		}
		return b, nil
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build GTFS request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download GTFS: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download GTFS: unexpected status %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read GTFS body: %w", err)
	}
	return b, nil
}
