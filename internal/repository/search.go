package repository

import (
	"strings"

	"github.com/z/xonotic-map-manager/internal/models"
)

// SearchFilters is a set of optional predicates over a catalog. A package
// matches when ANY supplied predicate matches any of its bsps (or the
// package itself for Pk3Name and Shasum). Union semantics are deliberate
// and kept from the original behavior: each predicate widens the result.
type SearchFilters struct {
	// BspName matches a substring of a bsp name.
	BspName string
	// Gametype matches an exact gametype tag on a bsp.
	Gametype string
	// Author matches a substring of a bsp's author.
	Author string
	// Title matches a substring of a bsp's title.
	Title string
	// Pk3Name matches a substring of the pk3 filename.
	Pk3Name string
	// Shasum matches the package's content hash exactly.
	Shasum string
}

// Empty reports whether no predicate is supplied.
func (f SearchFilters) Empty() bool {
	return f == SearchFilters{}
}

// Matches applies the OR policy to one package.
func (f SearchFilters) Matches(pkg *models.MapPackage) bool {
	for name, bsp := range pkg.Bsp {
		if f.BspName != "" && strings.Contains(name, f.BspName) {
			return true
		}
		if f.Gametype != "" && bsp.HasGametype(f.Gametype) {
			return true
		}
		if f.Author != "" && strings.Contains(bsp.Author, f.Author) {
			return true
		}
		if f.Title != "" && strings.Contains(bsp.Title, f.Title) {
			return true
		}
	}

	if f.Pk3Name != "" && strings.Contains(pkg.Pk3, f.Pk3Name) {
		return true
	}
	if f.Shasum != "" && pkg.Shasum == f.Shasum {
		return true
	}

	return false
}

// Search returns the packages matching filters, in catalog order. Empty
// filters match everything.
func (s *Source) Search(filters SearchFilters) ([]*models.MapPackage, error) {
	packages, err := s.GetPackages()
	if err != nil {
		return nil, err
	}

	if filters.Empty() {
		return packages, nil
	}

	var matches []*models.MapPackage
	for _, pkg := range packages {
		if filters.Matches(pkg) {
			matches = append(matches, pkg)
		}
	}

	return matches, nil
}
