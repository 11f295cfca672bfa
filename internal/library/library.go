// Package library orchestrates install, remove, discover, list and show
// over a catalog collection, a local store and a target directory. Each
// operation is a short-lived transaction; the library keeps no state of
// its own between calls.
package library

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/z/xonotic-map-manager/internal/fetch"
	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/repository"
	"github.com/z/xonotic-map-manager/internal/scanner"
	"github.com/z/xonotic-map-manager/internal/store"
	"github.com/z/xonotic-map-manager/internal/utils"
)

// urlPattern decides whether an install argument is a direct download
// link rather than a catalog filename.
var urlPattern = regexp.MustCompile(`^(ht|f)tps?://`)

// Confirmer answers the interactive yes/no question install asks before
// overwriting a tracked package. It is the only blocking prompt in the
// system; everything else stays headless.
type Confirmer func(prompt string) bool

// Library implements the package management operations. It references,
// but does not own, its collection and store.
type Library struct {
	Repositories *repository.Collection
	Store        *store.Store
	TargetDir    string

	// Confirm handles the overwrite prompt. A nil Confirm declines.
	Confirm Confirmer

	scanner scanner.Scanner
}

// New creates a library over the given collection, store and target
// directory.
func New(repositories *repository.Collection, st *store.Store, targetDir string) *Library {
	return &Library{
		Repositories: repositories,
		Store:        st,
		TargetDir:    targetDir,
		scanner:      scanner.NewFileSystemScanner(),
	}
}

func (l *Library) confirm(prompt string) bool {
	if l.Confirm == nil {
		return false
	}
	return l.Confirm(prompt)
}

func (l *Library) requireTargetDir() error {
	info, err := os.Stat(l.TargetDir)
	if err != nil || !info.IsDir() {
		return &models.Error{Kind: models.ErrNotADirectory, Package: l.TargetDir,
			Err: fmt.Errorf("target directory does not exist")}
	}
	return nil
}

// InstallOptions tunes a single Install call.
type InstallOptions struct {
	// Repository restricts the catalog search to one named source.
	Repository string
	// Overwrite replaces on-disk bytes without prompting.
	Overwrite bool
}

// Install fetches a package into the target directory and tracks it in
// the store. The argument is either a catalog pk3 name or a direct URL;
// URL installs with no catalog match succeed but stay untracked, which is
// reported as a PackageMetadataWarning. The returned package is the
// catalog entry that was tracked, nil for untracked installs.
func (l *Library) Install(ctx context.Context, pk3OrURL string, opts InstallOptions) (*models.MapPackage, error) {
	logrus.Infof("Installing map: %s", pk3OrURL)

	if err := l.requireTargetDir(); err != nil {
		return nil, err
	}

	sources, err := l.Repositories.Select(opts.Repository)
	if err != nil {
		return nil, err
	}

	isURL := urlPattern.MatchString(pk3OrURL)
	pk3 := pk3OrURL
	url := ""
	if isURL {
		logrus.Infof("%s downloading from non-repository link", pk3OrURL)
		url = pk3OrURL
		pk3 = path.Base(pk3OrURL)
	}

	overwrite := opts.Overwrite
	addToStore := true

	// A tracked package with the same filename means this install is a
	// replacement: the bytes change, the store entry stays.
	installed, err := l.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, m := range installed {
		if m.Pk3 != pk3 {
			continue
		}
		if !overwrite {
			logrus.Warnf("%s already exists", pk3)
			if !l.confirm(fmt.Sprintf("%s already exists, overwrite?", pk3)) {
				return nil, &models.Error{Kind: models.ErrCancelled, Package: pk3,
					Err: fmt.Errorf("install aborted")}
			}
			logrus.Infof("overwriting %s", pk3)
			overwrite = true
		}
		addToStore = false
		break
	}

	// First source claiming the filename wins; later sources are not
	// consulted.
	var found *models.MapPackage
	for _, source := range sources {
		pkg, err := source.FindByFileName(pk3)
		if err != nil {
			if models.IsKind(err, models.ErrPackageLookup) {
				continue
			}
			return nil, err
		}
		logrus.Infof("Found %s in source %s", pk3, source.Name)
		found = pkg
		if !isURL {
			url = source.DownloadURL + pk3
		}
		break
	}

	if found == nil && !isURL {
		return nil, &models.Error{Kind: models.ErrPackageLookup, Package: pk3,
			Err: fmt.Errorf("not found in any repository")}
	}

	dest := filepath.Join(l.TargetDir, pk3)
	result, err := fetch.Fetch(ctx, url, dest, overwrite)
	if err != nil {
		return nil, err
	}

	if result == fetch.AlreadyExists {
		if isURL {
			logrus.Warnf("%s already present, nothing fetched", dest)
			return nil, nil
		}
		return nil, fmt.Errorf("%s already exists on disk; pass overwrite or remove it first", pk3)
	}

	if found != nil {
		if addToStore {
			if err := l.Store.Add(found); err != nil {
				return nil, err
			}
		}
		return found, nil
	}

	// URL install with no catalog match: bytes are on disk but there is
	// no metadata to track.
	logrus.Warnf("%s was not installed through a repository and has no metadata", pk3)
	return nil, &models.Error{Kind: models.WarnPackageMetadata, Package: pk3,
		Err: fmt.Errorf("installed untracked, no repository metadata")}
}

// Remove deletes a package's file from the target directory and drops
// every matching entry from the store. The file is removed first, so a
// failed delete never leaves the store claiming the package is gone.
func (l *Library) Remove(pk3 string) error {
	logrus.Infof("Removing map: %s", pk3)

	if err := l.requireTargetDir(); err != nil {
		return err
	}

	installed, err := l.Store.LoadAll()
	if err != nil {
		return err
	}

	dest := filepath.Join(l.TargetDir, pk3)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return &models.Error{Kind: models.ErrFileNotFound, Package: pk3,
			Err: fmt.Errorf("%s does not exist", dest)}
	}
	if err := os.Remove(dest); err != nil {
		return err
	}

	for _, m := range installed {
		if m.Pk3 == pk3 {
			if err := l.Store.Remove(m); err != nil {
				return err
			}
		}
	}

	return nil
}

// ListInstalled returns every package tracked by the store, in store
// order.
func (l *Library) ListInstalled() ([]*models.MapPackage, error) {
	logrus.Debug("listing maps")
	return l.Store.LoadAll()
}

// ShowMap looks a package up by pk3 name. With local set it reads the
// store and verifies the on-disk bytes still match the tracked shasum;
// otherwise it consults the catalog collection.
func (l *Library) ShowMap(pk3 string, local bool) (*models.MapPackage, error) {
	logrus.Debugf("showing map: %s", pk3)

	if !local {
		for _, source := range l.Repositories.Sources() {
			pkg, err := source.FindByFileName(pk3)
			if err != nil {
				if models.IsKind(err, models.ErrPackageLookup) {
					continue
				}
				return nil, err
			}
			return pkg, nil
		}
		return nil, &models.Error{Kind: models.ErrPackageLookup, Package: pk3,
			Err: fmt.Errorf("not found in any repository")}
	}

	installed, err := l.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	for _, m := range installed {
		if m.Pk3 != pk3 {
			continue
		}
		shasum, err := utils.HashFile(filepath.Join(l.TargetDir, pk3))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &models.Error{Kind: models.ErrFileNotFound, Package: pk3, Err: err}
			}
			return nil, err
		}
		if m.Shasum != shasum {
			logrus.Warnf("Hash for this map does not match the tracked hash: %s", pk3)
			return nil, &models.Error{Kind: models.ErrHashMismatch, Package: pk3,
				Err: fmt.Errorf("on-disk %s, tracked %s", shasum, m.Shasum)}
		}
		return m, nil
	}

	return nil, &models.Error{Kind: models.WarnPackageNotTracked, Package: pk3,
		Err: fmt.Errorf("not tracked in the library")}
}
