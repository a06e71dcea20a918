package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount/backend"
)

func (sb *SQLiteBackend) HeadObject(ctx context.Context, key string) (*data.Attributes, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	id, exists := sb.keys.Get(key)
	if !exists {
		return nil, data.ErrNotExist
	}

	var isDir bool
	var size, createTime, modifyTime int64
	err := sb.db.QueryRowContext(ctx, `
		SELECT is_dir, size, create_time, modify_time FROM craftos_objects WHERE id = ?
	`, id).Scan(&isDir, &size, &createTime, &modifyTime)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	return &data.Attributes{
		Size:     size,
		IsDir:    isDir,
		Created:  createTime,
		Modified: modifyTime,
	}, nil
}

func (sb *SQLiteBackend) ListObjects(ctx context.Context, key string) ([]string, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	return backend.ChildNames(sb.keys, key), nil
}

func (sb *SQLiteBackend) ReadObject(ctx context.Context, key string) ([]byte, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	id, exists := sb.keys.Get(key)
	if !exists {
		return nil, data.ErrNotExist
	}

	var content []byte
	err := sb.db.QueryRowContext(ctx, "SELECT content FROM craftos_data WHERE id = ?", id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
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

func (sb *SQLiteBackend) WriteObject(ctx context.Context, key string, content []byte) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	now := time.Now().UnixMilli()
	if content == nil {
		content = []byte{}
	}

	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, exists := sb.keys.Get(key)
	if exists {
		if _, err := tx.ExecContext(ctx, `
			UPDATE craftos_objects SET size = ?, modify_time = ? WHERE id = ?
		`, len(content), now, id); err != nil {
			return err
		}
	} else {
		id = uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO craftos_objects (id, key, is_dir, size, create_time, modify_time)
			VALUES (?, ?, 0, ?, ?, ?)
		`, id, key, len(content), now, now); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO craftos_data (id, content) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content
	`, id, content); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	sb.keys.Set(key, id)
	return nil
}

func (sb *SQLiteBackend) CreateDirectory(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, exists := sb.keys.Get(key); exists {
		return data.ErrExist
	}

	id := uuid.NewString()
	now := time.Now().UnixMilli()
	if _, err := sb.db.ExecContext(ctx, `
		INSERT INTO craftos_objects (id, key, is_dir, size, create_time, modify_time)
		VALUES (?, ?, 1, 0, ?, ?)
	`, id, key, now, now); err != nil {
		return err
	}

	sb.keys.Set(key, id)
	return nil
}

func (sb *SQLiteBackend) DeleteObject(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	keys := backend.Subtree(sb.keys, key)
	if len(keys) == 0 {
		return data.ErrNotExist
	}

	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, k := range keys {
		id, _ := sb.keys.Get(k)
		if _, err := tx.ExecContext(ctx, "DELETE FROM craftos_data WHERE id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM craftos_objects WHERE id = ?", id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, k := range keys {
		sb.keys.Delete(k)
	}
	return nil
}

func (sb *SQLiteBackend) Usage(ctx context.Context) (int64, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	var used int64
	err := sb.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(size), 0) FROM craftos_objects").Scan(&used)
	return used, err
}
