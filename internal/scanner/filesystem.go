package scanner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// pk3 files are zip archives
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// FileSystemScanner implements Scanner for a local target directory
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan lists the map archives directly inside dir
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedArchive, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var archives []ScannedArchive
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ok, err := s.IsArchive(path)
		if err != nil {
			logrus.Warnf("Failed to inspect %s: %v", path, err)
			continue
		}
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, err
		}

		logrus.Debugf("Found map archive: %s", path)
		archives = append(archives, ScannedArchive{
			Path: path,
			Name: entry.Name(),
			Size: info.Size(),
		})
	}

	logrus.Debugf("Found %d map archives in %s", len(archives), dir)
	return archives, nil
}

// IsArchive reports whether the file at path is a map archive, checking
// the extension and the zip magic bytes.
func (s *FileSystemScanner) IsArchive(path string) (bool, error) {
	if !strings.HasSuffix(path, ArchiveExt) {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(zipMagic))
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return false, err
	}

	return bytes.HasPrefix(header[:n], zipMagic), nil
}
