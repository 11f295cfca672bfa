package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
)

// HashFile streams a file through SHA-1 and returns the hex digest. This
// is the digest the catalog records as a package's shasum.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the SHA-1 hex digest of data.
func HashBytes(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
