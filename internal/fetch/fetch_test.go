package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestFetchDownloads(t *testing.T) {
	ts := testServer(t, "pk3 bytes")
	dest := filepath.Join(t.TempDir(), "maps", "dance.pk3")

	result, err := Fetch(context.Background(), ts.URL, dest, false)
	require.NoError(t, err)
	assert.Equal(t, Fetched, result)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "pk3 bytes", string(data))

	// No partial .part files left around.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.Contains(entries[0].Name(), ".part"))
}

func TestFetchExistingWithoutOverwrite(t *testing.T) {
	ts := testServer(t, "new bytes")
	dest := filepath.Join(t.TempDir(), "dance.pk3")
	require.NoError(t, os.WriteFile(dest, []byte("old bytes"), 0644))

	result, err := Fetch(context.Background(), ts.URL, dest, false)
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, result)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old bytes", string(data))
}

func TestFetchOverwrite(t *testing.T) {
	ts := testServer(t, "new bytes")
	dest := filepath.Join(t.TempDir(), "dance.pk3")
	require.NoError(t, os.WriteFile(dest, []byte("old bytes"), 0644))

	result, err := Fetch(context.Background(), ts.URL, dest, true)
	require.NoError(t, err)
	assert.Equal(t, Fetched, result)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new bytes", string(data))
}

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "missing.pk3")
	_, err := Fetch(context.Background(), ts.URL, dest, false)
	require.Error(t, err)

	// Nothing was written.
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchCancelled(t *testing.T) {
	ts := testServer(t, "bytes")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, ts.URL, filepath.Join(t.TempDir(), "x.pk3"), false)
	assert.Error(t, err)
}
