package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/utils"
)

const testCatalog = `{"data":[
	{"pk3":"dance.pk3","shasum":"abc123","filesize":100,"date":1,"bsp":{
		"dance":{"title":"Dance","description":"","author":"cityy","gametypes":["dm"],"license":true}}},
	{"pk3":"zed_arena.pk3","shasum":"bbb222","filesize":200,"date":2,"bsp":{
		"zed_arena":{"title":"Arena","description":"","author":"zed","gametypes":["duel"],"license":false}}},
	{"pk3":"flagrun.pk3","shasum":"ccc333","filesize":300,"date":3,"bsp":{
		"flagrun":{"title":"Flag Run","description":"","author":"basher","gametypes":["ctf"],"license":false}}}
]}`

func testSource(t *testing.T, catalog string) *Source {
	t.Helper()
	cacheFile := filepath.Join(t.TempDir(), "maps.json")
	require.NoError(t, os.WriteFile(cacheFile, []byte(catalog), 0644))
	return NewSource("testrepo", "http://dl.example.com/", "http://example.com/maps.json", cacheFile)
}

func TestGetPackages(t *testing.T) {
	s := testSource(t, testCatalog)

	packages, err := s.GetPackages()
	require.NoError(t, err)
	require.Len(t, packages, 3)
	assert.Equal(t, "dance.pk3", packages[0].Pk3)
}

func TestGetPackagesSeedsOnColdStart(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "xmm", "maps.json")
	s := NewSource("default", "http://dl.example.com/", "http://example.com/maps.json", cacheFile)

	packages, err := s.GetPackages()
	require.NoError(t, err)
	assert.NotEmpty(t, packages)

	// The seed was written to the cache file for next time.
	_, err = os.Stat(cacheFile)
	require.NoError(t, err)
}

func TestGetPackagesCompressedCache(t *testing.T) {
	compressed, err := utils.GzipCompress([]byte(testCatalog))
	require.NoError(t, err)

	cacheFile := filepath.Join(t.TempDir(), "maps.json.gz")
	require.NoError(t, os.WriteFile(cacheFile, compressed, 0644))

	s := NewSource("gz", "http://dl.example.com/", "", cacheFile)
	packages, err := s.GetPackages()
	require.NoError(t, err)
	assert.Len(t, packages, 3)
}

func TestGetPackagesCorruptCache(t *testing.T) {
	s := testSource(t, "{bogus")

	_, err := s.GetPackages()
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrCatalogUnavailable), "want CatalogUnavailable, got %v", err)
}

func TestFindByFileName(t *testing.T) {
	s := testSource(t, testCatalog)

	pkg, err := s.FindByFileName("flagrun.pk3")
	require.NoError(t, err)
	assert.Equal(t, "ccc333", pkg.Shasum)

	_, err = s.FindByFileName("ghost.pk3")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrPackageLookup))
}

func TestUpdateRefreshesCacheAndInvalidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testCatalog))
	}))
	defer ts.Close()

	cacheFile := filepath.Join(t.TempDir(), "maps.json")
	require.NoError(t, os.WriteFile(cacheFile, []byte(`{"data":[]}`), 0644))

	s := NewSource("live", "http://dl.example.com/", ts.URL, cacheFile)
	packages, err := s.GetPackages()
	require.NoError(t, err)
	assert.Empty(t, packages)

	require.NoError(t, s.Update(context.Background()))

	packages, err = s.GetPackages()
	require.NoError(t, err)
	assert.Len(t, packages, 3)
}

func TestUpdateNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := NewSource("bad", "http://dl.example.com/", ts.URL, filepath.Join(t.TempDir(), "maps.json"))

	err := s.Update(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrRepositoryUpdate), "want RepositoryUpdate, got %v", err)
}

func TestExportHashIndex(t *testing.T) {
	s := testSource(t, testCatalog)

	path := filepath.Join(t.TempDir(), "maps.shasums")
	require.NoError(t, s.ExportHashIndex(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123 dance.pk3\nbbb222 zed_arena.pk3\nccc333 flagrun.pk3", string(data))
}

func TestExportCatalog(t *testing.T) {
	s := testSource(t, testCatalog)

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, s.ExportCatalog(path))

	exported := NewSource("reread", "", "", path)
	packages, err := exported.GetPackages()
	require.NoError(t, err)
	assert.Len(t, packages, 3)
}
