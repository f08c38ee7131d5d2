package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK(kind IN ('list', 'grocery_list')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS device_values (
		device_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (device_id, key),
		FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_device_values_device_id ON device_values(device_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateDevice registers a new device.
func (s *SQLiteStore) CreateDevice(ctx context.Context, device *DeviceRecord) error {
	now := time.Now()
	device.CreatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (id, name, kind, created_at)
		VALUES (?, ?, ?, ?)
	`, device.ID, device.Name, device.Kind, now)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// GetDevice retrieves a device by ID.
func (s *SQLiteStore) GetDevice(ctx context.Context, id string) (*DeviceRecord, error) {
	device := &DeviceRecord{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, created_at FROM devices WHERE id = ?
	`, id).Scan(&device.ID, &device.Name, &device.Kind, &device.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("device not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// ListDevices retrieves all devices ordered by creation time.
func (s *SQLiteStore) ListDevices(ctx context.Context) ([]DeviceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, created_at FROM devices ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceRecord
	for rows.Next() {
		var device DeviceRecord
		if err := rows.Scan(&device.ID, &device.Name, &device.Kind, &device.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}

	return devices, rows.Err()
}

// RenameDevice updates a device's display name.
func (s *SQLiteStore) RenameDevice(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE devices SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename device: %w", err)
	}
	return nil
}

// DeleteDevice deletes a device and all of its stored values.
func (s *SQLiteStore) DeleteDevice(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return nil
}

// GetValue reads one named field of a device. A field that has never
// been written yields nil without an error.
func (s *SQLiteStore) GetValue(ctx context.Context, deviceID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM device_values WHERE device_id = ? AND key = ?
	`, deviceID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get value %q: %w", key, err)
	}
	return value, nil
}

// SetValue writes one named field of a device.
func (s *SQLiteStore) SetValue(ctx context.Context, deviceID, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_values (device_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, deviceID, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set value %q: %w", key, err)
	}
	return nil
}
