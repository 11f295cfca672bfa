// Package config loads the explicit configuration struct everything else
// is constructed from. There is no ambient global config: callers pass
// the loaded Config into the server/library constructors.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/z/xonotic-map-manager/internal/models"
)

// SourceConfig describes one catalog source.
type SourceConfig struct {
	Name        string `yaml:"name"`
	DownloadURL string `yaml:"download_url"`
	APIDataURL  string `yaml:"api_data_url"`
	APIDataFile string `yaml:"api_data_file"`
}

// ServerConfig describes one named server target with its own map
// directory and store. Servers without their own sources inherit the
// global ones.
type ServerConfig struct {
	TargetDir string         `yaml:"target_dir"`
	Library   string         `yaml:"library"`
	Sources   []SourceConfig `yaml:"sources,omitempty"`
}

// Config is the full tool configuration.
type Config struct {
	TargetDir   string                  `yaml:"target_dir"`
	Library     string                  `yaml:"library"`
	DownloadURL string                  `yaml:"download_url"`
	APIDataURL  string                  `yaml:"api_data_url"`
	APIDataFile string                  `yaml:"api_data_file"`
	Sources     []SourceConfig          `yaml:"sources,omitempty"`
	Servers     map[string]ServerConfig `yaml:"servers,omitempty"`
}

// DefaultConfigFile is the config path used when none is given.
func DefaultConfigFile() string {
	return ExpandUser("~/.xmm/xmm.yaml")
}

// DefaultConfig returns the configuration used when no config file
// exists.
func DefaultConfig() *Config {
	return &Config{
		TargetDir:   "~/.xonotic/data",
		Library:     "~/.xmm/library.json",
		DownloadURL: "http://dl.xonotic.co/",
		APIDataURL:  "http://xonotic.co/resources/data/maps.json",
		APIDataFile: "~/.xmm/maps.json",
	}
}

// Load reads the YAML config at path, falling back to defaults when the
// file does not exist, and applies environment overrides. Variables may
// also come from a .env file (XMM_TARGET_DIR, XMM_LIBRARY,
// XMM_DOWNLOAD_URL).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logrus.Debugf("No config file at %s, using defaults", path)
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &models.Error{Kind: models.ErrInvalidConfig,
				Err: fmt.Errorf("parsing %s: %w", path, err)}
		}
	}

	if v := os.Getenv("XMM_TARGET_DIR"); v != "" {
		cfg.TargetDir = v
	}
	if v := os.Getenv("XMM_LIBRARY"); v != "" {
		cfg.Library = v
	}
	if v := os.Getenv("XMM_DOWNLOAD_URL"); v != "" {
		cfg.DownloadURL = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.expandPaths()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TargetDir == "" {
		return &models.Error{Kind: models.ErrInvalidConfig,
			Err: fmt.Errorf("target_dir is required")}
	}
	if c.Library == "" {
		return &models.Error{Kind: models.ErrInvalidConfig,
			Err: fmt.Errorf("library is required")}
	}

	// A config without explicit sources still has the implicit default
	// one built from the top-level URLs.
	if len(c.Sources) == 0 {
		c.Sources = []SourceConfig{{
			Name:        "default",
			DownloadURL: c.DownloadURL,
			APIDataURL:  c.APIDataURL,
			APIDataFile: c.APIDataFile,
		}}
	}

	for i, src := range c.Sources {
		if src.Name == "" {
			return &models.Error{Kind: models.ErrInvalidConfig,
				Err: fmt.Errorf("sources[%d]: name is required", i)}
		}
		if src.APIDataFile == "" {
			return &models.Error{Kind: models.ErrInvalidConfig, Package: src.Name,
				Err: fmt.Errorf("api_data_file is required")}
		}
	}

	return nil
}

func (c *Config) expandPaths() {
	c.TargetDir = ExpandUser(c.TargetDir)
	c.Library = ExpandUser(c.Library)
	c.APIDataFile = ExpandUser(c.APIDataFile)
	for i := range c.Sources {
		c.Sources[i].APIDataFile = ExpandUser(c.Sources[i].APIDataFile)
	}
	for name, srv := range c.Servers {
		srv.TargetDir = ExpandUser(srv.TargetDir)
		srv.Library = ExpandUser(srv.Library)
		for i := range srv.Sources {
			srv.Sources[i].APIDataFile = ExpandUser(srv.Sources[i].APIDataFile)
		}
		c.Servers[name] = srv
	}
}

// ExpandUser resolves a leading ~ to the current user's home directory.
func ExpandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
