package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend stores a computer disk in a SQLite database:
//
// Layer 1: In-memory B-tree for fast key → ID lookups and ordered listings
// Layer 2: SQLite object table (craftos_objects) for entry attributes
// Layer 3: SQLite data table (craftos_data) for file content
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB

	// In-memory B-tree for fast key lookups
	keys *btree.Map[string, string]
}

// NewSQLiteBackend creates a new SQLite-backed object storage.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Every connection of ":memory:" opens its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	backend := &SQLiteBackend{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return backend, nil
}

// initSchema creates the database schema.
func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS craftos_objects (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		is_dir INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0 CHECK(size >= 0),
		create_time INTEGER NOT NULL,
		modify_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_craftos_objects_key ON craftos_objects(key);

	CREATE TABLE IF NOT EXISTS craftos_data (
		id TEXT PRIMARY KEY,
		content BLOB NOT NULL
	);
	`

	_, err := sb.db.Exec(schema)
	return err
}

// Name returns the identifier name defined for this backend
func (*SQLiteBackend) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	// Verify database connection
	if err := sb.db.PingContext(ctx); err != nil {
		return err
	}

	// Load all keys into memory B-tree
	rows, err := sb.db.QueryContext(ctx, "SELECT key, id FROM craftos_objects")
	if err != nil {
		return fmt.Errorf("failed to load keys: %w", err)
	}
	defer rows.Close()

	sb.keys.Clear()
	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return fmt.Errorf("failed to scan key: %w", err)
		}
		sb.keys.Set(key, id)
	}

	return rows.Err()
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.keys.Clear()
	return sb.db.Close()
}
