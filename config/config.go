package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/mount/backend/consul"
	"github.com/mwantia/craftos/mount/backend/s3"
	"github.com/mwantia/craftos/term"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config describes a single computer and the drives attached to it.
type Config struct {
	Computer ComputerConfig `yaml:"computer"`
	Storage  StorageConfig  `yaml:"storage"`
	Mounts   []*MountConfig `yaml:"mounts"`
	Log      LogConfig      `yaml:"log"`
}

type ComputerConfig struct {
	ID     int    `yaml:"id"`
	Label  string `yaml:"label"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type StorageConfig struct {
	// Root is the host directory backing the root mount.
	// Defaults to $XDG_DATA_HOME/craftos/computer/<id>.
	Root string `yaml:"root"`

	// ROM is an optional host directory mounted read-only at "rom".
	// The built-in ROM is used if empty.
	ROM string `yaml:"rom"`

	// Capacity of the root mount in bytes, 0 reports the host file system.
	Capacity int64 `yaml:"capacity"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// MountConfig describes an additional drive.
type MountConfig struct {
	Path     string `yaml:"path"`
	Type     string `yaml:"type"`
	ReadOnly bool   `yaml:"readonly"`
	Capacity int64  `yaml:"capacity"`

	// Source is the host directory (host, memory), database file (sqlite)
	// or connection string (postgres).
	Source string `yaml:"source"`

	// Prefix separates several computers sharing one postgres database.
	Prefix string `yaml:"prefix"`

	Consul *consul.ConsulBackendConfig `yaml:"consul"`
	S3     *s3.S3BackendConfig         `yaml:"s3"`
}

// Mount types.
const (
	TypeHost     = "host"
	TypeMemory   = "memory"
	TypeTmp      = "tmp"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeConsul   = "consul"
	TypeS3       = "s3"
)

func Default() *Config {
	return &Config{
		Computer: ComputerConfig{
			Width:  term.DefaultWidth,
			Height: term.DefaultHeight,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Computer.ID < 0 {
		return fmt.Errorf("%w: computer id must not be negative", ErrInvalidConfig)
	}
	if c.Computer.Width <= 0 || c.Computer.Height <= 0 {
		return fmt.Errorf("%w: invalid terminal size %dx%d", ErrInvalidConfig, c.Computer.Width, c.Computer.Height)
	}
	if c.Storage.Capacity < 0 {
		return fmt.Errorf("%w: storage capacity must not be negative", ErrInvalidConfig)
	}
	if _, err := log.Parse(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	paths := map[string]bool{"rom": true}
	for i, m := range c.Mounts {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: mount #%d: %v", ErrInvalidConfig, i+1, err)
		}

		path := data.Join(data.Split(m.Path))
		if paths[path] {
			return fmt.Errorf("%w: mount #%d: path '/%s' is already in use", ErrInvalidConfig, i+1, path)
		}
		paths[path] = true
	}
	return nil
}

func (m *MountConfig) Validate() error {
	if len(data.Split(m.Path)) == 0 {
		return errors.New("path must not be the root")
	}
	if m.Capacity < 0 {
		return errors.New("capacity must not be negative")
	}

	switch m.Type {
	case TypeHost, TypeSQLite, TypePostgres:
		if m.Source == "" {
			return fmt.Errorf("type '%s' requires a source", m.Type)
		}
	case TypeS3:
		if m.S3 == nil || m.S3.Endpoint == "" || m.S3.Bucket == "" {
			return errors.New("type 's3' requires an endpoint and a bucket")
		}
	case TypeMemory, TypeTmp, TypeConsul:
	default:
		return fmt.Errorf("unknown type '%s'", m.Type)
	}
	return nil
}

// RootDir returns the host directory backing the root mount.
func (c *Config) RootDir() (string, error) {
	if c.Storage.Root != "" {
		return c.Storage.Root, nil
	}

	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve data directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "craftos", "computer", strconv.Itoa(c.Computer.ID)), nil
}
