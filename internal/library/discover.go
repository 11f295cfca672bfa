package library

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/utils"
)

// DiscoverStatus classifies one archive seen during a discovery pass.
type DiscoverStatus int

const (
	// DiscoverFound means the archive matches a catalog entry, hash and
	// all, but was not added (add was off or it is already tracked with
	// a different hash history).
	DiscoverFound DiscoverStatus = iota
	// DiscoverAdded means the archive was added to the store.
	DiscoverAdded
	// DiscoverAlreadyTracked means the store already has this exact
	// (pk3, shasum) pair.
	DiscoverAlreadyTracked
	// DiscoverHashMismatch means the on-disk bytes differ from the
	// catalog's recorded hash; the archive is never added.
	DiscoverHashMismatch
	// DiscoverUnknown means no selected source knows the filename.
	DiscoverUnknown
)

// String returns the string representation of DiscoverStatus
func (d DiscoverStatus) String() string {
	switch d {
	case DiscoverFound:
		return "found"
	case DiscoverAdded:
		return "added"
	case DiscoverAlreadyTracked:
		return "already tracked"
	case DiscoverHashMismatch:
		return "hash mismatch"
	case DiscoverUnknown:
		return "not found in repository"
	default:
		return "unknown"
	}
}

// DiscoverResult reports the outcome for one scanned archive.
type DiscoverResult struct {
	FileName string
	Package  *models.MapPackage
	Status   DiscoverStatus
}

// Discover reconciles the target directory against the catalog: every map
// archive directly inside it is hashed and matched against the selected
// sources by filename, first match wins. With add set, matches whose
// hashes agree are tracked in the store unless the exact (pk3, shasum)
// pair already is. Hash mismatches are reported and skipped, never added.
func (l *Library) Discover(ctx context.Context, add bool, repositoryName string) ([]DiscoverResult, error) {
	logrus.Debug("discovering maps")

	if err := l.requireTargetDir(); err != nil {
		return nil, err
	}

	sources, err := l.Repositories.Select(repositoryName)
	if err != nil {
		return nil, err
	}

	local, err := l.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	archives, err := l.scanner.Scan(ctx, l.TargetDir)
	if err != nil {
		return nil, err
	}

	var results []DiscoverResult
	for _, archive := range archives {
		shasum, err := utils.HashFile(archive.Path)
		if err != nil {
			return nil, err
		}

		var found *models.MapPackage
		for _, source := range sources {
			pkg, err := source.FindByFileName(archive.Name)
			if err != nil {
				if models.IsKind(err, models.ErrPackageLookup) {
					continue
				}
				return nil, err
			}
			found = pkg
			break
		}

		if found == nil {
			logrus.Infof("%s not found in repository", archive.Name)
			results = append(results, DiscoverResult{FileName: archive.Name, Status: DiscoverUnknown})
			continue
		}

		if found.Shasum != shasum {
			logrus.Warnf("%s hash does not match repository's", archive.Name)
			results = append(results, DiscoverResult{
				FileName: archive.Name, Package: found, Status: DiscoverHashMismatch,
			})
			continue
		}

		if !add {
			results = append(results, DiscoverResult{
				FileName: archive.Name, Package: found, Status: DiscoverFound,
			})
			continue
		}

		tracked := false
		for _, m := range local {
			if m.Matches(found) {
				tracked = true
				break
			}
		}
		if tracked {
			logrus.Infof("map already installed, not adding: %s", archive.Name)
			results = append(results, DiscoverResult{
				FileName: archive.Name, Package: found, Status: DiscoverAlreadyTracked,
			})
			continue
		}

		logrus.Infof("adding discovered map: %s", archive.Name)
		if err := l.Store.Add(found); err != nil {
			return nil, err
		}
		local = append(local, found)
		results = append(results, DiscoverResult{
			FileName: archive.Name, Package: found, Status: DiscoverAdded,
		})
	}

	return results, nil
}
