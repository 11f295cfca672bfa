package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/repository"
	"github.com/z/xonotic-map-manager/internal/store"
	"github.com/z/xonotic-map-manager/internal/utils"
)

// pk3Content returns fake archive bytes that still pass zip magic
// detection.
func pk3Content(name string) []byte {
	return append([]byte{0x50, 0x4B, 0x03, 0x04}, name...)
}

type fixture struct {
	lib       *Library
	store     *store.Store
	targetDir string
	server    *httptest.Server
}

// newFixture builds a library over a temp target dir, a temp store and
// one catalog source whose packages are served by an httptest server.
// The catalog entries carry the real hashes of the served bytes.
func newFixture(t *testing.T, pk3s ...string) *fixture {
	t.Helper()

	dir := t.TempDir()
	targetDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(targetDir, 0755))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		for _, pk3 := range pk3s {
			if pk3 == name {
				w.Write(pk3Content(name))
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	var entries []string
	for _, pk3 := range pk3s {
		bspName := strings.TrimSuffix(pk3, ".pk3")
		entries = append(entries, fmt.Sprintf(
			`{"pk3":%q,"shasum":%q,"filesize":%d,"date":1453749340,"bsp":{%q:{"title":%q,"description":"","author":"cityy","gametypes":["dm"],"license":true}}}`,
			pk3, utils.HashBytes(pk3Content(pk3)), len(pk3Content(pk3)), bspName, bspName))
	}
	cacheFile := filepath.Join(dir, "maps.json")
	catalog := fmt.Sprintf(`{"data":[%s]}`, strings.Join(entries, ","))
	require.NoError(t, os.WriteFile(cacheFile, []byte(catalog), 0644))

	collection := repository.NewCollection()
	source := repository.NewSource("testrepo", server.URL+"/maps/", server.URL+"/maps.json", cacheFile)
	require.NoError(t, collection.AddSource(source))

	st := store.New(filepath.Join(dir, "library.json"))

	return &fixture{
		lib:       New(collection, st, targetDir),
		store:     st,
		targetDir: targetDir,
		server:    server,
	}
}

func (f *fixture) storedPackages(t *testing.T) []*models.MapPackage {
	t.Helper()
	packages, err := f.store.LoadAll()
	require.NoError(t, err)
	return packages
}

func TestInstallFromCatalog(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	pkg, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "dance.pk3", pkg.Pk3)

	packages := f.storedPackages(t)
	require.Len(t, packages, 1)
	assert.Equal(t, "dance.pk3", packages[0].Pk3)

	data, err := os.ReadFile(filepath.Join(f.targetDir, "dance.pk3"))
	require.NoError(t, err)
	assert.Equal(t, pk3Content("dance.pk3"), data)
}

func TestInstallUnknownPackage(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "ghost.pk3", InstallOptions{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrPackageLookup), "want PackageLookup, got %v", err)

	// Nothing was fetched and nothing was tracked.
	_, statErr := os.Stat(filepath.Join(f.targetDir, "ghost.pk3"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, f.storedPackages(t))
}

func TestInstallFromURLWithoutMetadata(t *testing.T) {
	f := newFixture(t, "custom.pk3")

	// The URL serves bytes but the catalog has no custom.pk3... rebuild
	// a fixture where the catalog is empty but the server still serves.
	f2 := newFixture(t)
	url := f.server.URL + "/maps/custom.pk3"

	pkg, err := f2.lib.Install(context.Background(), url, InstallOptions{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.WarnPackageMetadata), "want PackageMetadataWarning, got %v", err)
	assert.Nil(t, pkg)

	// The download succeeded but the store stays empty.
	_, statErr := os.Stat(filepath.Join(f2.targetDir, "custom.pk3"))
	require.NoError(t, statErr)
	assert.Empty(t, f2.storedPackages(t))
}

func TestInstallFromURLWithCatalogMatch(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	pkg, err := f.lib.Install(context.Background(), f.server.URL+"/maps/dance.pk3", InstallOptions{})
	require.NoError(t, err)
	require.NotNil(t, pkg)

	packages := f.storedPackages(t)
	require.Len(t, packages, 1)
	assert.Equal(t, "dance.pk3", packages[0].Pk3)
}

func TestInstallPromptDeclinedLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)

	// Tamper with the on-disk bytes so an overwrite would be visible.
	dest := filepath.Join(f.targetDir, "dance.pk3")
	require.NoError(t, os.WriteFile(dest, []byte("tampered"), 0644))

	f.lib.Confirm = func(prompt string) bool { return false }
	_, err = f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrCancelled), "want Cancelled, got %v", err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "tampered", string(data))
	assert.Len(t, f.storedPackages(t), 1)
}

func TestInstallPromptAcceptedReplacesBytesNotStore(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)

	dest := filepath.Join(f.targetDir, "dance.pk3")
	require.NoError(t, os.WriteFile(dest, []byte("tampered"), 0644))

	f.lib.Confirm = func(prompt string) bool { return true }
	pkg, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)
	require.NotNil(t, pkg)

	// Bytes replaced, store still has exactly one entry.
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, pk3Content("dance.pk3"), data)
	assert.Len(t, f.storedPackages(t), 1)
}

func TestInstallNilConfirmDeclines(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)

	_, err = f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrCancelled))
}

func TestInstallUnknownRepository(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{Repository: "ghost"})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrRepositoryLookup))
}

func TestInstallMissingTargetDir(t *testing.T) {
	f := newFixture(t, "dance.pk3")
	f.lib.TargetDir = filepath.Join(f.targetDir, "nope")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrNotADirectory))
}

func TestRemoveThenRemoveAgain(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)

	require.NoError(t, f.lib.Remove("dance.pk3"))
	assert.Empty(t, f.storedPackages(t))
	_, statErr := os.Stat(filepath.Join(f.targetDir, "dance.pk3"))
	assert.True(t, os.IsNotExist(statErr))

	// Second remove: file is gone, distinct FileNotFound error, store
	// stays intact.
	err = f.lib.Remove("dance.pk3")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrFileNotFound), "want FileNotFound, got %v", err)
	assert.Empty(t, f.storedPackages(t))
}

// The file is deleted before the store is touched, so a missing file
// never strands the store claiming the package is gone.
func TestRemoveMissingFileKeepsStoreEntry(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.targetDir, "dance.pk3")))

	err = f.lib.Remove("dance.pk3")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrFileNotFound))
	assert.Len(t, f.storedPackages(t), 1)
}

func TestRemoveMissingTargetDir(t *testing.T) {
	f := newFixture(t)
	f.lib.TargetDir = filepath.Join(f.targetDir, "nope")

	err := f.lib.Remove("dance.pk3")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrNotADirectory))
}

func TestListInstalled(t *testing.T) {
	f := newFixture(t, "dance.pk3", "vinegar_v3.pk3")

	packages, err := f.lib.ListInstalled()
	require.NoError(t, err)
	assert.Empty(t, packages)

	_, err = f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)
	_, err = f.lib.Install(context.Background(), "vinegar_v3.pk3", InstallOptions{})
	require.NoError(t, err)

	packages, err = f.lib.ListInstalled()
	require.NoError(t, err)
	assert.Len(t, packages, 2)
}

func TestShowMapFromRepository(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	pkg, err := f.lib.ShowMap("dance.pk3", false)
	require.NoError(t, err)
	assert.Equal(t, "dance.pk3", pkg.Pk3)

	_, err = f.lib.ShowMap("ghost.pk3", false)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrPackageLookup))
}

func TestShowMapLocal(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)

	pkg, err := f.lib.ShowMap("dance.pk3", true)
	require.NoError(t, err)
	assert.Equal(t, "dance.pk3", pkg.Pk3)
}

func TestShowMapLocalHashMismatch(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.targetDir, "dance.pk3"), []byte("tampered"), 0644))

	_, err = f.lib.ShowMap("dance.pk3", true)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.ErrHashMismatch), "want HashMismatch, got %v", err)

	// The mismatch is reported, never auto-untracked.
	assert.Len(t, f.storedPackages(t), 1)
}

func TestShowMapLocalNotTracked(t *testing.T) {
	f := newFixture(t, "dance.pk3")

	_, err := f.lib.ShowMap("dance.pk3", true)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.WarnPackageNotTracked), "want PackageNotTrackedWarning, got %v", err)
	assert.True(t, models.IsWarning(err))
}

// Store uniqueness: no sequence of install calls may produce two entries
// with the same filename.
func TestStoreNeverHoldsDuplicateFilenames(t *testing.T) {
	f := newFixture(t, "dance.pk3")
	f.lib.Confirm = func(prompt string) bool { return true }

	for i := 0; i < 3; i++ {
		_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
		require.NoError(t, err)
	}

	packages := f.storedPackages(t)
	seen := map[string]int{}
	for _, pkg := range packages {
		seen[pkg.Pk3]++
	}
	assert.Equal(t, 1, seen["dance.pk3"])
}

func TestExportHashIndexAndMaplist(t *testing.T) {
	f := newFixture(t, "dance.pk3", "vinegar_v3.pk3")

	_, err := f.lib.Install(context.Background(), "dance.pk3", InstallOptions{})
	require.NoError(t, err)
	_, err = f.lib.Install(context.Background(), "vinegar_v3.pk3", InstallOptions{})
	require.NoError(t, err)

	dir := t.TempDir()

	shasums := filepath.Join(dir, "maps.shasums")
	require.NoError(t, f.lib.ExportHashIndex(shasums))
	data, err := os.ReadFile(shasums)
	require.NoError(t, err)
	want := fmt.Sprintf("%s dance.pk3\n%s vinegar_v3.pk3",
		utils.HashBytes(pk3Content("dance.pk3")), utils.HashBytes(pk3Content("vinegar_v3.pk3")))
	assert.Equal(t, want, string(data))

	maplist := filepath.Join(dir, "maps.txt")
	require.NoError(t, f.lib.ExportMaplist(maplist))
	data, err = os.ReadFile(maplist)
	require.NoError(t, err)
	assert.Equal(t, "dance\nvinegar_v3", string(data))

	exported := filepath.Join(dir, "maps.json")
	require.NoError(t, f.lib.ExportMapPackages(exported))
	data, err = os.ReadFile(exported)
	require.NoError(t, err)
	var packages []*models.MapPackage
	require.NoError(t, json.Unmarshal(data, &packages))
	assert.Len(t, packages, 2)
}
