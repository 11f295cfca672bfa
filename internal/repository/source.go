// Package repository serves catalog queries. A Source is one named origin
// of map packages with a local cache of the catalog JSON; a Collection
// fans operations out across its sources in order.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/z/xonotic-map-manager/internal/fetch"
	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/utils"
)

// catalogDocument is the wire shape served at a source's API data URL.
type catalogDocument struct {
	Data []*models.MapPackage `json:"data"`
}

// Source is one remote origin of map packages. The catalog is cached in
// APIDataFile and materialized lazily; the in-memory cache lives until
// Update or process exit.
type Source struct {
	Name        string
	DownloadURL string
	APIDataURL  string
	APIDataFile string

	cache []*models.MapPackage
}

// NewSource creates a catalog source.
func NewSource(name, downloadURL, apiDataURL, apiDataFile string) *Source {
	return &Source{
		Name:        name,
		DownloadURL: downloadURL,
		APIDataURL:  apiDataURL,
		APIDataFile: apiDataFile,
	}
}

// GetPackages returns the cached catalog, loading it on first call. A
// missing cache file is seeded from the bundled dataset so cold start
// never hard-fails. Both the cache and the seed being unusable is a
// CatalogUnavailable error.
func (s *Source) GetPackages() ([]*models.MapPackage, error) {
	if s.cache != nil {
		return s.cache, nil
	}

	if _, err := os.Stat(s.APIDataFile); os.IsNotExist(err) {
		logrus.Warnf("No catalog cache for source %s, seeding from bundled data", s.Name)
		if err := utils.CreateIfNotExists(s.APIDataFile, seedCatalog); err != nil {
			return nil, &models.Error{Kind: models.ErrCatalogUnavailable,
				Err: fmt.Errorf("seeding catalog cache %s: %w", s.APIDataFile, err)}
		}
	}

	data, err := os.ReadFile(s.APIDataFile)
	if err != nil {
		return nil, &models.Error{Kind: models.ErrCatalogUnavailable,
			Err: fmt.Errorf("reading catalog cache %s: %w", s.APIDataFile, err)}
	}

	// Cache files may be stored gzip- or xz-compressed; sniff the
	// container by magic bytes.
	data, err = utils.MaybeDecompress(data)
	if err != nil {
		return nil, &models.Error{Kind: models.ErrCatalogUnavailable,
			Err: fmt.Errorf("decompressing catalog cache %s: %w", s.APIDataFile, err)}
	}

	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &models.Error{Kind: models.ErrCatalogUnavailable,
			Err: fmt.Errorf("parsing catalog cache %s: %w", s.APIDataFile, err)}
	}

	logrus.Debugf("Source %s: loaded %d packages", s.Name, len(doc.Data))
	s.cache = doc.Data
	return s.cache, nil
}

// Update re-fetches the catalog from the API data URL, overwriting the
// cache file and invalidating the in-memory cache. Network failures are
// surfaced as a RepositoryUpdate error, never a crash.
func (s *Source) Update(ctx context.Context) error {
	logrus.Infof("Updating source %s from %s", s.Name, s.APIDataURL)

	if _, err := fetch.Fetch(ctx, s.APIDataURL, s.APIDataFile, true); err != nil {
		return &models.Error{Kind: models.ErrRepositoryUpdate, Package: s.Name, Err: err}
	}

	s.cache = nil
	return nil
}

// FindByFileName returns the catalog entry with the given pk3 name, or a
// PackageLookup error.
func (s *Source) FindByFileName(pk3 string) (*models.MapPackage, error) {
	packages, err := s.GetPackages()
	if err != nil {
		return nil, err
	}

	for _, pkg := range packages {
		if pkg.Pk3 == pk3 {
			return pkg, nil
		}
	}

	return nil, &models.Error{Kind: models.ErrPackageLookup, Package: pk3,
		Err: fmt.Errorf("not found in source %s", s.Name)}
}

// ExportCatalog writes the full catalog document to path.
func (s *Source) ExportCatalog(path string) error {
	packages, err := s.GetPackages()
	if err != nil {
		return err
	}

	data, err := json.Marshal(catalogDocument{Data: packages})
	if err != nil {
		return err
	}

	logrus.Infof("Exporting catalog of source %s to %s", s.Name, path)
	return utils.WriteFile(path, data, 0644)
}

// ExportHashIndex writes a "<shasum> <pk3>" line per package to path, in
// catalog order. Callers needing a deterministic order sort explicitly.
func (s *Source) ExportHashIndex(path string) error {
	packages, err := s.GetPackages()
	if err != nil {
		return err
	}

	logrus.Infof("Exporting hash index of source %s to %s", s.Name, path)
	return utils.WriteFile(path, hashIndex(packages), 0644)
}

// hashIndex renders packages as newline-joined "<shasum> <pk3>" lines.
func hashIndex(packages []*models.MapPackage) []byte {
	var out []byte
	for i, pkg := range packages {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, fmt.Sprintf("%s %s", pkg.Shasum, pkg.Pk3)...)
	}
	return out
}
