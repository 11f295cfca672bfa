// Package store persists the set of packages tracked as installed for a
// target directory. The backing file is a JSON array of package objects;
// every mutation is a whole-file read-modify-write. The store itself does
// no dedup checking, that is the library's job.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/utils"
)

var emptyDB = []byte("[]")

// Store owns one backing file of locally tracked packages. The library is
// its only writer.
type Store struct {
	path string
}

// New creates a store over the backing file at path. The file is created
// on first use, not here.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// LoadAll reads every tracked package. A missing or empty backing file is
// seeded with an empty sequence and returns no packages. A legacy
// gzip-compressed store is accepted once as a migration source and
// rewritten as plain JSON. Anything else unparseable is a StoreCorrupt
// error; there is no auto-repair.
func (s *Store) LoadAll() ([]*models.MapPackage, error) {
	logrus.Debugf("Loading package db from %s", s.path)

	if err := utils.CreateIfNotExists(s.path, emptyDB); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		if err := utils.WriteFileAtomic(s.path, emptyDB, 0644); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if utils.IsGzip(data) {
		logrus.Infof("Migrating legacy compressed store: %s", s.path)
		data, err = utils.GzipDecompress(data)
		if err != nil {
			return nil, &models.Error{Kind: models.ErrStoreCorrupt,
				Err: fmt.Errorf("legacy store %s: %w", s.path, err)}
		}
		if err := utils.WriteFileAtomic(s.path, data, 0644); err != nil {
			return nil, err
		}
	}

	var packages []*models.MapPackage
	if err := json.Unmarshal(data, &packages); err != nil {
		if models.IsKind(err, models.ErrMalformedPackage) {
			return nil, err
		}
		return nil, &models.Error{Kind: models.ErrStoreCorrupt,
			Err: fmt.Errorf("store %s: %w", s.path, err)}
	}

	return packages, nil
}

// Add appends a package and rewrites the backing file.
func (s *Store) Add(pkg *models.MapPackage) error {
	logrus.Infof("Adding package: pk3=%s, filesize=%s, date=%d, shasum=%s",
		pkg.Pk3, utils.ConvertSize(pkg.Filesize), pkg.Date, pkg.Shasum)

	packages, err := s.LoadAll()
	if err != nil {
		return err
	}

	packages = append(packages, pkg)
	return s.writeAll(packages)
}

// Remove drops every entry whose (shasum, pk3) pair exactly matches pkg
// and rewrites the backing file. Removing a package that is not present
// is a no-op.
func (s *Store) Remove(pkg *models.MapPackage) error {
	logrus.Infof("Removing package: pk3=%s, shasum=%s", pkg.Pk3, pkg.Shasum)

	packages, err := s.LoadAll()
	if err != nil {
		return err
	}

	kept := packages[:0]
	for _, p := range packages {
		if !p.Matches(pkg) {
			kept = append(kept, p)
		}
	}

	return s.writeAll(kept)
}

// ExportAll dumps the full tracked sequence as JSON to path.
func (s *Store) ExportAll(path string) error {
	packages, err := s.LoadAll()
	if err != nil {
		return err
	}

	logrus.Infof("Exporting %d packages to %s", len(packages), path)

	data, err := marshalPackages(packages)
	if err != nil {
		return err
	}
	return utils.WriteFile(path, data, 0644)
}

// writeAll rewrites the backing file via temp-file-and-rename so readers
// never observe a torn write. The original rewrote in place; this is a
// deliberate strengthening with identical single-process behavior.
func (s *Store) writeAll(packages []*models.MapPackage) error {
	data, err := marshalPackages(packages)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(s.path, data, 0644)
}

func marshalPackages(packages []*models.MapPackage) ([]byte, error) {
	if len(packages) == 0 {
		return emptyDB, nil
	}
	return json.Marshal(packages)
}
