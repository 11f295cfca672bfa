package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Bsp holds the metadata for one playable map inside a MapPackage. Bsps
// have no lifecycle of their own; they live and die with their parent
// package's JSON payload.
type Bsp struct {
	MapFile     string         `json:"map,omitempty"`
	Mapshot     string         `json:"mapshot,omitempty"`
	Radar       string         `json:"radar,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Mapinfo     string         `json:"mapinfo,omitempty"`
	Author      string         `json:"author"`
	Gametypes   []string       `json:"gametypes"`
	Entities    map[string]int `json:"entities,omitempty"`
	Waypoints   string         `json:"waypoints,omitempty"`
	License     bool           `json:"license"`
}

// HasGametype reports whether the bsp is tagged with the given gametype.
func (b Bsp) HasGametype(gametype string) bool {
	for _, g := range b.Gametypes {
		if g == gametype {
			return true
		}
	}
	return false
}

// MapPackage represents one downloadable pk3 archive and the bsps inside
// it. The pk3 filename is the lookup key within a catalog or store; the
// shasum is the package's true identity for integrity comparison.
type MapPackage struct {
	Pk3      string         `json:"pk3"`
	Shasum   string         `json:"shasum"`
	Filesize int64          `json:"filesize"`
	Date     int64          `json:"date"`
	Bsp      map[string]Bsp `json:"bsp"`
}

// mapPackageJSON is the wire shape with pointer fields so missing keys can
// be told apart from zero values during validation.
type mapPackageJSON struct {
	Pk3      *string        `json:"pk3"`
	Shasum   *string        `json:"shasum"`
	Filesize *int64         `json:"filesize"`
	Date     *int64         `json:"date"`
	Bsp      map[string]Bsp `json:"bsp"`
}

// DecodeMapPackage parses a single package payload, validating that all
// required fields are present and well formed.
func DecodeMapPackage(data []byte) (*MapPackage, error) {
	var raw mapPackageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Kind: ErrMalformedPackage, Err: err}
	}
	return newMapPackage(raw)
}

// UnmarshalJSON implements json.Unmarshaler with the same required-field
// validation as DecodeMapPackage, so package payloads embedded in catalog
// or store documents get checked too.
func (m *MapPackage) UnmarshalJSON(data []byte) error {
	pkg, err := DecodeMapPackage(data)
	if err != nil {
		return err
	}
	*m = *pkg
	return nil
}

func newMapPackage(raw mapPackageJSON) (*MapPackage, error) {
	missing := func(field string) (*MapPackage, error) {
		return nil, &Error{
			Kind: ErrMalformedPackage,
			Err:  fmt.Errorf("missing required field %q", field),
		}
	}
	switch {
	case raw.Pk3 == nil || *raw.Pk3 == "":
		return missing("pk3")
	case raw.Shasum == nil || *raw.Shasum == "":
		return missing("shasum")
	case raw.Bsp == nil:
		return missing("bsp")
	case raw.Date == nil:
		return missing("date")
	case raw.Filesize == nil:
		return missing("filesize")
	}
	if *raw.Filesize < 0 {
		return nil, &Error{
			Kind:    ErrMalformedPackage,
			Package: *raw.Pk3,
			Err:     fmt.Errorf("negative filesize %d", *raw.Filesize),
		}
	}
	return &MapPackage{
		Pk3:      *raw.Pk3,
		Shasum:   *raw.Shasum,
		Filesize: *raw.Filesize,
		Date:     *raw.Date,
		Bsp:      raw.Bsp,
	}, nil
}

// MarshalJSON emits the canonical wire shape. Round-trips with
// DecodeMapPackage field for field.
func (m MapPackage) MarshalJSON() ([]byte, error) {
	type alias MapPackage
	return json.Marshal(alias(m))
}

// BspNames returns the bsp names sorted lexicographically.
func (m *MapPackage) BspNames() []string {
	names := make([]string, 0, len(m.Bsp))
	for name := range m.Bsp {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SameFile reports whether both packages claim the same pk3 filename,
// regardless of content.
func (m *MapPackage) SameFile(other *MapPackage) bool {
	return m.Pk3 == other.Pk3
}

// Matches reports whether both packages are the same file with the same
// content. Two packages with equal pk3 names but different shasums are
// drift, never equal.
func (m *MapPackage) Matches(other *MapPackage) bool {
	return m.Pk3 == other.Pk3 && m.Shasum == other.Shasum
}
