package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/z/xonotic-map-manager/internal/models"
)

// Collection is an ordered set of named sources. Lookups are by name;
// fan-out operations run in source order.
type Collection struct {
	sources []*Source
	byName  map[string]*Source
}

// NewCollection creates an empty source collection.
func NewCollection() *Collection {
	return &Collection{byName: make(map[string]*Source)}
}

// AddSource appends a source. Names are the lookup key, so duplicates are
// rejected.
func (c *Collection) AddSource(source *Source) error {
	if _, ok := c.byName[source.Name]; ok {
		return &models.Error{Kind: models.ErrRepositoryLookup, Package: source.Name,
			Err: fmt.Errorf("duplicate source name")}
	}
	c.sources = append(c.sources, source)
	c.byName[source.Name] = source
	return nil
}

// GetSource returns the source with the given name.
func (c *Collection) GetSource(name string) (*Source, error) {
	source, ok := c.byName[name]
	if !ok {
		return nil, &models.Error{Kind: models.ErrRepositoryLookup, Package: name,
			Err: fmt.Errorf("unknown repository")}
	}
	return source, nil
}

// Sources returns the sources in order.
func (c *Collection) Sources() []*Source {
	return c.sources
}

// Select narrows the collection to the named source, or returns every
// source when name is empty.
func (c *Collection) Select(name string) ([]*Source, error) {
	if name == "" {
		return c.sources, nil
	}
	source, err := c.GetSource(name)
	if err != nil {
		return nil, err
	}
	return []*Source{source}, nil
}

// SourceResult pairs a source with its matches for a fan-out search.
type SourceResult struct {
	Source   *Source
	Packages []*models.MapPackage
}

// SearchAll runs the filters against every source in order.
func (c *Collection) SearchAll(filters SearchFilters) ([]SourceResult, error) {
	var results []SourceResult
	for _, source := range c.sources {
		packages, err := source.Search(filters)
		if err != nil {
			return nil, err
		}
		results = append(results, SourceResult{Source: source, Packages: packages})
	}
	return results, nil
}

// UpdateAll refreshes every source. Sources update concurrently and
// independently; one failing never stops the others. If any failed, the
// call reports a RepositoryUpdate error after all have been attempted.
func (c *Collection) UpdateAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	failures := make([]error, len(c.sources))
	for i, source := range c.sources {
		i, source := i, source
		g.Go(func() error {
			if err := source.Update(ctx); err != nil {
				logrus.Errorf("Failed to update source %s: %v", source.Name, err)
				failures[i] = err
			}
			return nil
		})
	}

	// Goroutines never return errors directly, so Wait cannot cancel
	// in-flight siblings; every source gets its attempt.
	_ = g.Wait()

	var failed int
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return &models.Error{Kind: models.ErrRepositoryUpdate,
			Err: fmt.Errorf("%d of %d sources failed to update", failed, len(c.sources))}
	}

	return nil
}
