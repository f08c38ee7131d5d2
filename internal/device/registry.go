package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"listrigo/internal/item"
	"listrigo/internal/list"
	"listrigo/internal/storage"
)

// RegistryOptions wires the capabilities devices depend on. Cutoff and
// Location must match the deadline poller's so that trigger tokens and
// rendered deadlines agree with when deadlines actually fire.
type RegistryOptions struct {
	Store     storage.Store
	Publisher list.Publisher
	Triggers  TriggerDispatcher
	Resolver  list.Resolver
	Debounce  time.Duration
	Cutoff    item.Cutoff
	Location  *time.Location
	Persons   []item.Person
}

// Registry owns every live list device, keyed by id.
type Registry struct {
	opts RegistryOptions

	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry creates an empty registry. Call Load to bring up the
// devices known to storage.
func NewRegistry(opts RegistryOptions) *Registry {
	return &Registry{
		opts:    opts,
		devices: make(map[string]*Device),
	}
}

// Load initializes a device for every record in storage.
func (r *Registry) Load(ctx context.Context) error {
	records, err := r.opts.Store.ListDevices(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		d := r.newDevice(rec.ID, rec.Name, Kind(rec.Kind))
		if err := d.Items.Load(ctx); err != nil {
			return fmt.Errorf("device %s: load items: %w", rec.ID, err)
		}
		if err := d.loadLook(ctx); err != nil {
			return fmt.Errorf("device %s: load look: %w", rec.ID, err)
		}
		r.mu.Lock()
		r.devices[d.ID] = d
		r.mu.Unlock()
	}
	return nil
}

func (r *Registry) newDevice(id, name string, kind Kind) *Device {
	cutoff := r.opts.Cutoff
	if cutoff == (item.Cutoff{}) {
		cutoff = item.EndOfDay
	}
	loc := r.opts.Location
	if loc == nil {
		loc = time.Local
	}
	d := &Device{
		ID:       id,
		name:     name,
		Kind:     kind,
		store:    r.opts.Store,
		pub:      r.opts.Publisher,
		triggers: r.opts.Triggers,
		cutoff:   cutoff,
		loc:      loc,
	}
	d.Items = list.New(id, r.opts.Store, r.opts.Publisher, list.Options{
		Debounce: r.opts.Debounce,
		Resolver: r.opts.Resolver,
		Cutoff:   r.opts.Cutoff,
		Location: r.opts.Location,
	})
	return d
}

// Create pairs a new list device.
func (r *Registry) Create(ctx context.Context, name string, kind Kind, look Look) (*Device, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown list kind %q", kind)
	}

	rec := &storage.DeviceRecord{ID: uuid.NewString(), Name: name, Kind: string(kind)}
	if err := r.opts.Store.CreateDevice(ctx, rec); err != nil {
		return nil, err
	}

	d := r.newDevice(rec.ID, name, kind)
	if err := d.SetLook(ctx, look); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.devices[d.ID] = d
	r.mu.Unlock()
	return d, nil
}

// Rename updates a device's display name.
func (r *Registry) Rename(ctx context.Context, id, name string) error {
	r.mu.RLock()
	d, ok := r.devices[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("device not found: %s", id)
	}
	if err := r.opts.Store.RenameDevice(ctx, id, name); err != nil {
		return err
	}
	d.rename(name)
	return nil
}

// Delete unpairs a device: its pending writes are dropped alongside the
// stored collection, matching the host destroying a removed device.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	d, ok := r.devices[id]
	delete(r.devices, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("device not found: %s", id)
	}

	d.Items.Close()
	return r.opts.Store.DeleteDevice(ctx, id)
}

// Device returns a live device by id.
func (r *Registry) Device(id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	return d, ok
}

// Devices returns every live device in stable id order.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByKind returns the devices of one driver.
func (r *Registry) ByKind(kind Kind) []*Device {
	var out []*Device
	for _, d := range r.Devices() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Persons returns the known persons for task assignment.
func (r *Registry) Persons() []item.Person {
	return r.opts.Persons
}

// Person resolves a person id against the known persons.
func (r *Registry) Person(id string) (item.Person, bool) {
	for _, p := range r.opts.Persons {
		if p.ID == id {
			return p, true
		}
	}
	return item.Person{}, false
}

// Close flushes every device's pending writes and cancels their timers.
func (r *Registry) Close() error {
	var firstErr error
	for _, d := range r.Devices() {
		if err := d.Items.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("device %s: %w", d.ID, err)
		}
		d.Items.Close()
	}
	return firstErr
}
