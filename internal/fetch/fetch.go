// Package fetch provides the byte-transfer primitive the library uses to
// bring a URL down to a local file. HTTP GET is treated as reliable and
// idempotent; everything above this package talks in terms of the Result
// values, never raw transport details.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Result describes the outcome of a successful Fetch call.
type Result int

const (
	// Fetched means the file was downloaded and written to disk.
	Fetched Result = iota
	// AlreadyExists means the destination file was present and overwrite
	// was not requested; nothing was transferred.
	AlreadyExists
)

// String returns the string representation of Result
func (r Result) String() string {
	switch r {
	case Fetched:
		return "fetched"
	case AlreadyExists:
		return "already-exists"
	default:
		return "unknown"
	}
}

var client = &http.Client{Timeout: 10 * time.Minute}

// Fetch downloads url to dest. An existing destination short-circuits to
// AlreadyExists unless overwrite is set. The file is written to a temp
// sibling and renamed in, so a failed transfer never leaves partial bytes
// at dest.
func Fetch(ctx context.Context, url, dest string, overwrite bool) (Result, error) {
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			logrus.Debugf("%s already exists, not fetching", dest)
			return AlreadyExists, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	logrus.Infof("Fetching %s", url)
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	src := newProgressReader(resp.Body, resp.ContentLength)
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return 0, err
	}

	return Fetched, nil
}
