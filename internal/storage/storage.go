// Package storage provides the durable backing the host platform would
// normally supply: the device table and a per-device key/value store for
// named fields such as items, color and icon.
package storage

import (
	"context"
	"time"
)

// DeviceRecord is one registered list device.
type DeviceRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for data persistence operations.
type Store interface {
	// Device operations
	CreateDevice(ctx context.Context, device *DeviceRecord) error
	GetDevice(ctx context.Context, id string) (*DeviceRecord, error)
	ListDevices(ctx context.Context) ([]DeviceRecord, error)
	RenameDevice(ctx context.Context, id, name string) error
	DeleteDevice(ctx context.Context, id string) error

	// Key/value fields scoped to one device. GetValue returns nil (not an
	// error) when the field has never been written.
	GetValue(ctx context.Context, deviceID, key string) ([]byte, error)
	SetValue(ctx context.Context, deviceID, key string, value []byte) error

	// Lifecycle
	Close() error
}
