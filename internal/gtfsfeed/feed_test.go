package gtfsfeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/clamcard/internal/gtfsfeed"
)

func TestLoad_MissingLocalFile(t *testing.T) {
	_, err := gtfsfeed.Load(context.Background(), filepath.Join(t.TempDir(), "missing.zip"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "read local GTFS file")
}

func TestLoad_RemoteNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := gtfsfeed.Load(context.Background(), srv.URL+"/feed.zip")

	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected status")
}

func TestLoad_RemoteNotAZip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a zip archive"))
	}))
	t.Cleanup(srv.Close)

	_, err := gtfsfeed.Load(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorContains(t, err, "parse GTFS")
}

func TestParse_Garbage(t *testing.T) {
	_, err := gtfsfeed.Parse([]byte{0x00, 0x01, 0x02})

	assert.Error(t, err)
}
