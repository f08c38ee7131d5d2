// Package device models list devices (one per physical list) and the
// registry that groups them per kind, carrying the cross-device
// behavior: trigger dispatch and deadline candidates.
package device

import (
	"context"
	"log"
	"sync"
	"time"

	"listrigo/internal/flow"
	"listrigo/internal/item"
	"listrigo/internal/list"
	"listrigo/internal/storage"
)

// Kind groups devices the way the host drivers do.
type Kind string

const (
	KindBasic   Kind = "list"
	KindGrocery Kind = "grocery_list"
)

// Valid reports whether k names a known driver.
func (k Kind) Valid() bool {
	return k == KindBasic || k == KindGrocery
}

// Look is the display appearance of a list, mutable via repairing.
type Look struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Storage keys for look fields.
const (
	colorKey = "color"
	iconKey  = "icon"
)

// EventLookChanged is the realtime event fired after a look update.
const EventLookChanged = "look"

// TriggerDispatcher is the slice of the flow engine a device fires
// triggers through.
type TriggerDispatcher interface {
	Trigger(deviceID, card string, state, tokens map[string]any) error
}

// Device is one list device: identity, look and its item store.
type Device struct {
	ID   string
	Kind Kind

	Items *list.List

	store    storage.Store
	pub      list.Publisher
	triggers TriggerDispatcher
	cutoff   item.Cutoff
	loc      *time.Location

	mu   sync.Mutex
	name string
	look Look
}

// Name returns the current device name.
func (d *Device) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

func (d *Device) rename(name string) {
	d.mu.Lock()
	d.name = name
	d.mu.Unlock()
}

// Look returns the current appearance.
func (d *Device) Look() Look {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.look
}

// SetLook persists a new appearance and notifies widgets.
func (d *Device) SetLook(ctx context.Context, look Look) error {
	if err := d.store.SetValue(ctx, d.ID, colorKey, []byte(look.Color)); err != nil {
		return err
	}
	if err := d.store.SetValue(ctx, d.ID, iconKey, []byte(look.Icon)); err != nil {
		return err
	}
	d.mu.Lock()
	d.look = look
	d.mu.Unlock()
	if d.pub != nil {
		d.pub.Publish(d.ID, EventLookChanged, look)
	}
	return nil
}

func (d *Device) loadLook(ctx context.Context) error {
	color, err := d.store.GetValue(ctx, d.ID, colorKey)
	if err != nil {
		return err
	}
	icon, err := d.store.GetValue(ctx, d.ID, iconKey)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.look = Look{Color: string(color), Icon: string(icon)}
	d.mu.Unlock()
	return nil
}

// Tasks returns the task items in stored order.
func (d *Device) Tasks() []item.Item {
	return d.itemsOfType(item.TypeTask)
}

// Products returns the product items in stored order.
func (d *Device) Products() []item.Item {
	return d.itemsOfType(item.TypeProduct)
}

func (d *Device) itemsOfType(typ item.Type) []item.Item {
	var out []item.Item
	for _, it := range d.Items.Snapshot() {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out
}

// AddNote appends a note and fires the note-created trigger.
func (d *Device) AddNote(content string) item.Item {
	added := d.Items.Add(item.Item{Type: item.TypeNote, Content: content})
	d.fire(flow.TriggerNoteCreated,
		map[string]any{"note": content},
		map[string]any{"note": content})
	return added
}

// AddTask appends a task, optionally planned and assigned, and fires
// the task-created trigger.
func (d *Device) AddTask(content, dueDate, dueTime string, person *item.Person) item.Item {
	added := d.Items.Add(item.Item{
		Type:    item.TypeTask,
		Content: content,
		DueDate: dueDate,
		DueTime: dueTime,
		Person:  person,
	})

	personName := ""
	if person != nil {
		personName = person.Name
	}
	due := ""
	if instant, ok := added.DueAt(d.cutoff, d.loc); ok {
		due = instant.Format(time.RFC3339)
	}
	d.fire(flow.TriggerTaskCreated,
		map[string]any{"task": content},
		map[string]any{"task": content, "person": personName, "due": due})
	return added
}

// EditTask rewrites a task's mutable fields. It fails on a stale id or
// a non-task item.
func (d *Device) EditTask(id, content, dueDate, dueTime string, person *item.Person) bool {
	it, ok := d.Items.Find(id)
	if !ok || it.Type != item.TypeTask {
		return false
	}
	d.Items.SetContent(id, content)
	d.Items.SetDue(id, dueDate, dueTime)
	d.Items.SetPerson(id, person)
	return true
}

// AddProduct appends a product, merging with an existing product of the
// same content by raising its quantity instead of duplicating the line.
func (d *Device) AddProduct(content string, quantity int) item.Item {
	if quantity <= 0 {
		quantity = 1
	}
	if existing, ok := d.Items.FindByContent(item.TypeProduct, content); ok {
		updated, _ := d.Items.AdjustQuantity(existing.ID, quantity)
		d.fireQuantityChanged(updated)
		return updated
	}
	return d.Items.Add(item.Item{Type: item.TypeProduct, Content: content, Quantity: quantity})
}

// AdjustQuantity applies a signed delta to a product's quantity and
// fires the quantity-changed trigger.
func (d *Device) AdjustQuantity(id string, delta int) bool {
	updated, ok := d.Items.AdjustQuantity(id, delta)
	if !ok {
		return false
	}
	d.fireQuantityChanged(updated)
	return true
}

// SetProductQuantity sets the quantity of the product with the given
// content.
func (d *Device) SetProductQuantity(content string, quantity int) bool {
	existing, ok := d.Items.FindByContent(item.TypeProduct, content)
	if !ok {
		return false
	}
	if !d.Items.SetQuantity(existing.ID, quantity) {
		return false
	}
	if updated, ok := d.Items.Find(existing.ID); ok {
		d.fireQuantityChanged(updated)
	}
	return true
}

// SetProductCategory tags the product with the given content.
func (d *Device) SetProductCategory(content, category string) bool {
	existing, ok := d.Items.FindByContent(item.TypeProduct, content)
	if !ok {
		return false
	}
	return d.Items.SetCategory(existing.ID, category)
}

// Check sets the checked state of an item and fires the matching
// per-device and any-device triggers.
func (d *Device) Check(id string, checked bool) bool {
	it, ok := d.Items.Find(id)
	if !ok || !it.Completable() {
		return false
	}
	if !d.Items.SetChecked(id, checked) {
		return false
	}

	switch it.Type {
	case item.TypeTask:
		state := map[string]any{"task": it.Content}
		if checked {
			d.fire(flow.TriggerTaskChecked, state, map[string]any{"task": it.Content})
			d.fire(flow.TriggerTaskCheckedAny, state, map[string]any{"task": it.Content})
		} else {
			d.fire(flow.TriggerTaskUnchecked, state, map[string]any{"task": it.Content})
			d.fire(flow.TriggerTaskUncheckedAny, state, map[string]any{"task": it.Content})
		}
	case item.TypeProduct:
		state := map[string]any{"product": it.Content}
		if checked {
			d.fire(flow.TriggerProductCheckedAny, state, map[string]any{"product": it.Content})
		} else {
			d.fire(flow.TriggerProductUnchecked, state, map[string]any{"product": it.Content})
		}
	}
	return true
}

// RemoveItem deletes an item by id, firing the removed trigger for
// tasks and products.
func (d *Device) RemoveItem(id string) bool {
	it, ok := d.Items.Find(id)
	if !ok {
		return false
	}
	if !d.Items.Remove(id) {
		return false
	}
	switch it.Type {
	case item.TypeTask:
		d.fire(flow.TriggerTaskRemoved,
			map[string]any{"task": it.Content},
			map[string]any{"task": it.Content})
	case item.TypeProduct:
		d.fire(flow.TriggerProductRemoved,
			map[string]any{"product": it.Content},
			map[string]any{"product": it.Content})
	}
	return true
}

// RemoveByContent deletes the first item of the given type with exactly
// this content.
func (d *Device) RemoveByContent(typ item.Type, content string) bool {
	it, ok := d.Items.FindByContent(typ, content)
	if !ok {
		return false
	}
	return d.RemoveItem(it.ID)
}

// MoveUncheckedTo transplants every unchecked item (notes included) to
// another list, preserving item identity.
func (d *Device) MoveUncheckedTo(target *Device) {
	target.Items.Adopt(d.Items.TakeUnchecked())
}

func (d *Device) fireQuantityChanged(it item.Item) {
	d.fire(flow.TriggerProductQuantityChanged,
		map[string]any{"product": it.Content},
		map[string]any{"product": it.Content, "quantity": it.Quantity})
}

// fire dispatches a trigger. Dispatch failures are logged, not
// propagated: a mutation that already happened must not look failed to
// its caller because a flow listener misbehaved.
func (d *Device) fire(card string, state, tokens map[string]any) {
	if d.triggers == nil {
		return
	}
	if err := d.triggers.Trigger(d.ID, card, state, tokens); err != nil {
		log.Printf("device %s: %v", d.ID, err)
	}
}
