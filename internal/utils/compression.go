package utils

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Magic bytes for the compression containers a catalog cache file may be
// wrapped in.
var (
	gzipMagic = []byte{0x1F, 0x8B}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
)

// GzipCompress compresses data using gzip
func GzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GzipDecompress decompresses gzip data
func GzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// XzDecompress decompresses xz data
func XzDecompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// IsXz reports whether data starts with the xz magic bytes.
func IsXz(data []byte) bool {
	return bytes.HasPrefix(data, xzMagic)
}

// MaybeDecompress inspects data's magic bytes and unwraps a gzip or xz
// container if present. Uncompressed data is returned as-is.
func MaybeDecompress(data []byte) ([]byte, error) {
	switch {
	case IsGzip(data):
		return GzipDecompress(data)
	case IsXz(data):
		return XzDecompress(data)
	default:
		return data, nil
	}
}
