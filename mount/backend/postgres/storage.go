package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount/backend"
)

func (pb *PostgresBackend) HeadObject(ctx context.Context, key string) (*data.Attributes, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	id, exists := pb.keys.Get(key)
	if !exists {
		return nil, data.ErrNotExist
	}

	attr := &data.Attributes{}
	err := pb.pool.QueryRow(ctx,
		"SELECT is_dir, size, create_time, modify_time FROM "+pb.objects()+" WHERE id = $1",
		id).Scan(&attr.IsDir, &attr.Size, &attr.Created, &attr.Modified)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query object: %w", err)
	}

	return attr, nil
}

func (pb *PostgresBackend) ListObjects(ctx context.Context, key string) ([]string, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	return backend.ChildNames(pb.keys, key), nil
}

func (pb *PostgresBackend) ReadObject(ctx context.Context, key string) ([]byte, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	id, exists := pb.keys.Get(key)
	if !exists {
		return nil, data.ErrNotExist
	}

	var content []byte
	err := pb.pool.QueryRow(ctx,
		"SELECT content FROM "+pb.contents()+" WHERE id = $1",
		id).Scan(&content)

	if errors.Is(err, pgx.ErrNoRows) {
		// No data stored yet (empty file)
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query data: %w", err)
	}

	if content == nil {
		content = []byte{}
	}
	return content, nil
}

func (pb *PostgresBackend) WriteObject(ctx context.Context, key string, content []byte) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	now := time.Now().UnixMilli()
	if content == nil {
		content = []byte{}
	}

	tx, err := pb.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	id, exists := pb.keys.Get(key)
	if exists {
		if _, err := tx.Exec(ctx,
			"UPDATE "+pb.objects()+" SET size = $1, modify_time = $2 WHERE id = $3",
			len(content), now, id); err != nil {
			return fmt.Errorf("failed to update object: %w", err)
		}
	} else {
		id = uuid.NewString()
		if _, err := tx.Exec(ctx,
			"INSERT INTO "+pb.objects()+" (id, key, is_dir, size, create_time, modify_time) VALUES ($1, $2, FALSE, $3, $4, $4)",
			id, key, len(content), now); err != nil {
			return fmt.Errorf("failed to insert object: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO "+pb.contents()+" (id, content) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content",
		id, content); err != nil {
		return fmt.Errorf("failed to store data: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	pb.keys.Set(key, id)
	return nil
}

func (pb *PostgresBackend) CreateDirectory(ctx context.Context, key string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if _, exists := pb.keys.Get(key); exists {
		return data.ErrExist
	}

	id := uuid.NewString()
	now := time.Now().UnixMilli()
	if _, err := pb.pool.Exec(ctx,
		"INSERT INTO "+pb.objects()+" (id, key, is_dir, size, create_time, modify_time) VALUES ($1, $2, TRUE, 0, $3, $3)",
		id, key, now); err != nil {
		return fmt.Errorf("failed to insert directory: %w", err)
	}

	pb.keys.Set(key, id)
	return nil
}

func (pb *PostgresBackend) DeleteObject(ctx context.Context, key string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	keys := backend.Subtree(pb.keys, key)
	if len(keys) == 0 {
		return data.ErrNotExist
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id, _ := pb.keys.Get(k)
		ids = append(ids, id)
	}

	tx, err := pb.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+pb.contents()+" WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete data: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM "+pb.objects()+" WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, k := range keys {
		pb.keys.Delete(k)
	}
	return nil
}

func (pb *PostgresBackend) Usage(ctx context.Context) (int64, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	var used int64
	err := pb.pool.QueryRow(ctx, "SELECT COALESCE(SUM(size), 0) FROM "+pb.objects()).Scan(&used)
	return used, err
}
