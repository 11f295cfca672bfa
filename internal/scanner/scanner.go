// Package scanner finds map archives sitting in a target directory. Only
// the directory itself is scanned; pk3s in subdirectories are not served
// by the game and are none of our business.
package scanner

import "context"

// ArchiveExt is the extension map packages carry on disk.
const ArchiveExt = ".pk3"

// ScannedArchive represents a map archive found during scanning
type ScannedArchive struct {
	Path string
	Name string
	Size int64
}

// Scanner interface for locating map archives
type Scanner interface {
	// Scan lists the map archives directly inside dir
	Scan(ctx context.Context, dir string) ([]ScannedArchive, error)

	// IsArchive reports whether the file at path is a map archive
	IsArchive(path string) (bool, error)
}
