// Package server wires configuration into ready-to-use libraries. A
// LocalServer is one named target directory with its own store and
// catalog collection.
package server

import (
	"fmt"

	"github.com/z/xonotic-map-manager/internal/config"
	"github.com/z/xonotic-map-manager/internal/library"
	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/repository"
	"github.com/z/xonotic-map-manager/internal/store"
)

// LocalServer binds a target directory, its store and its sources into a
// Library.
type LocalServer struct {
	Name         string
	DownloadURL  string
	Repositories *repository.Collection
	Store        *store.Store
	Library      *library.Library
}

// New builds the LocalServer for serverName, or for the global target
// when serverName is empty. Servers without their own source list inherit
// the global sources.
func New(cfg *config.Config, serverName string) (*LocalServer, error) {
	targetDir := cfg.TargetDir
	libraryFile := cfg.Library
	sourceConfigs := cfg.Sources

	if serverName != "" {
		srv, ok := cfg.Servers[serverName]
		if !ok {
			return nil, &models.Error{Kind: models.ErrInvalidConfig, Package: serverName,
				Err: fmt.Errorf("server not defined in configuration")}
		}
		if srv.TargetDir != "" {
			targetDir = srv.TargetDir
		}
		if srv.Library != "" {
			libraryFile = srv.Library
		}
		if len(srv.Sources) > 0 {
			sourceConfigs = srv.Sources
		}
	}

	collection := repository.NewCollection()
	for _, sc := range sourceConfigs {
		src := repository.NewSource(sc.Name, sc.DownloadURL, sc.APIDataURL, sc.APIDataFile)
		if err := collection.AddSource(src); err != nil {
			return nil, err
		}
	}

	st := store.New(libraryFile)

	return &LocalServer{
		Name:         serverName,
		DownloadURL:  cfg.DownloadURL,
		Repositories: collection,
		Store:        st,
		Library:      library.New(collection, st, targetDir),
	}, nil
}
