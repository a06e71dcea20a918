package config

import (
	"context"
	"fmt"
	"os"

	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend"
	"github.com/mwantia/craftos/mount/backend/consul"
	"github.com/mwantia/craftos/mount/backend/ephemeral"
	"github.com/mwantia/craftos/mount/backend/host"
	"github.com/mwantia/craftos/mount/backend/memory"
	"github.com/mwantia/craftos/mount/backend/postgres"
	"github.com/mwantia/craftos/mount/backend/s3"
	"github.com/mwantia/craftos/mount/backend/sqlite"
	"github.com/mwantia/craftos/rom"
)

// Build constructs the configured mount.
func (m *MountConfig) Build(ctx context.Context, logger *log.Logger) (mount.Mount, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	opts := []mount.MountOption{
		mount.WithLocation(m.Path),
		mount.WithReadOnly(m.ReadOnly),
		mount.WithCapacity(m.Capacity),
		mount.WithLogger(logger),
	}

	switch m.Type {
	case TypeHost:
		return host.NewHostMount(m.Source, opts...)

	case TypeMemory:
		root := memory.Dir(nil)
		if m.Source != "" {
			snapshot, err := memory.FromFS(os.DirFS(m.Source), ".")
			if err != nil {
				return nil, fmt.Errorf("failed to load '%s': %w", m.Source, err)
			}
			root = snapshot
		}
		return memory.NewMemoryMount(root, opts...)
	}

	storage, err := m.storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", m.Type, err)
	}
	return mount.NewObjectMount(ctx, storage, opts...)
}

func (m *MountConfig) storage(ctx context.Context) (backend.ObjectStorage, error) {
	switch m.Type {
	case TypeTmp:
		return ephemeral.NewEphemeralBackend(), nil
	case TypeSQLite:
		return sqlite.NewSQLiteBackend(m.Source)
	case TypePostgres:
		return postgres.NewPostgresBackend(ctx, m.Source, m.Prefix)
	case TypeConsul:
		return consul.NewConsulBackend(m.Consul)
	case TypeS3:
		return s3.NewS3Backend(m.S3)
	default:
		return nil, fmt.Errorf("unknown type '%s'", m.Type)
	}
}

// BuildRoot constructs the host mount serving as root of the computer.
func (c *Config) BuildRoot(logger *log.Logger) (mount.Mount, error) {
	dir, err := c.RootDir()
	if err != nil {
		return nil, err
	}

	return host.NewHostMount(dir,
		mount.WithCapacity(c.Storage.Capacity),
		mount.WithLogger(logger))
}

// BuildROM constructs the read-only mount at "rom".
func (c *Config) BuildROM(logger *log.Logger) (mount.Mount, error) {
	if c.Storage.ROM == "" {
		return rom.New(mount.WithLogger(logger))
	}

	return host.NewHostMount(c.Storage.ROM,
		mount.WithLocation(rom.Location),
		mount.WithName("rom"),
		mount.WithReadOnly(true),
		mount.WithLogger(logger))
}
