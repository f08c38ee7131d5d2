// Package list implements the item store of one list device: the
// in-memory authoritative collection, its query views, and a debounced
// persistence path to host key/value storage.
package list

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"listrigo/internal/item"
)

// Reserved field name in device storage and the realtime event fired
// after every completed physical write.
const (
	ItemsKey          = "items"
	EventItemsChanged = "items"
)

// Storage is the slice of host key/value storage a list needs.
type Storage interface {
	GetValue(ctx context.Context, deviceID, key string) ([]byte, error)
	SetValue(ctx context.Context, deviceID, key string, value []byte) error
}

// Publisher pushes realtime events to dashboard widgets.
type Publisher interface {
	Publish(deviceID, event string, payload any)
}

// Resolver clears deadline bookkeeping for an item whose pending state
// changed: checked, due fields edited, or removed.
type Resolver interface {
	Resolve(deviceID, itemID string)
}

// Options tune a List. The zero value gives production defaults.
type Options struct {
	Debounce time.Duration
	Resolver Resolver
	Cutoff   item.Cutoff
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

// List is the item store of one device. All operations are safe for
// concurrent use; reads always observe the latest mutation, never a
// stale persisted state.
type List struct {
	deviceID string
	store    Storage
	pub      Publisher
	resolver Resolver
	cutoff   item.Cutoff
	loc      *time.Location
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	items []item.Item
	saver *saver
}

// New creates the item store for a device. Call Load before use and
// Close (after an optional Flush) on teardown.
func New(deviceID string, store Storage, pub Publisher, opts Options) *List {
	l := &List{
		deviceID: deviceID,
		store:    store,
		pub:      pub,
		resolver: opts.Resolver,
		cutoff:   opts.Cutoff,
		loc:      opts.Location,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if l.cutoff == (item.Cutoff{}) {
		l.cutoff = item.EndOfDay
	}
	if l.loc == nil {
		l.loc = time.Local
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	l.saver = newSaver(opts.Debounce, l.persist, l.notifyChanged)
	return l
}

func (l *List) persist(snapshot []byte) error {
	return l.store.SetValue(context.Background(), l.deviceID, ItemsKey, snapshot)
}

func (l *List) notifyChanged() {
	if l.pub != nil {
		l.pub.Publish(l.deviceID, EventItemsChanged, l.Items())
	}
}

// Load reads the persisted collection into memory. It waits for any
// in-flight write to settle first so it never observes a half-committed
// value.
func (l *List) Load(ctx context.Context) error {
	l.saver.Settle()

	data, err := l.store.GetValue(ctx, l.deviceID, ItemsKey)
	if err != nil {
		return err
	}
	items, dropped, err := item.Decode(data)
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Printf("list %s: dropped %d undecodable item(s) at load", l.deviceID, dropped)
	}

	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
	return nil
}

// Add assigns a fresh id and creation timestamp, normalizes the item to
// its variant, appends it and schedules persistence.
func (l *List) Add(it item.Item) item.Item {
	it.ID = l.newID()
	it.Created = l.now()
	switch it.Type {
	case item.TypeNote:
		it.Checked = false
		it.Category = ""
		it.Quantity = 0
		it.DueDate, it.DueTime = "", ""
		it.Person = nil
	case item.TypeProduct:
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		it.DueDate, it.DueTime = "", ""
		it.Person = nil
	case item.TypeTask:
		it.Category = ""
		it.Quantity = 0
	}

	l.mu.Lock()
	l.items = append(l.items, it)
	l.scheduleSaveLocked()
	l.mu.Unlock()
	return it
}

// Adopt appends items that already carry an identity, preserving their
// id and creation timestamp. Used when moving items between lists.
func (l *List) Adopt(items []item.Item) {
	if len(items) == 0 {
		return
	}
	l.mu.Lock()
	l.items = append(l.items, items...)
	l.scheduleSaveLocked()
	l.mu.Unlock()
}

// Find returns the item with the given id.
func (l *List) Find(id string) (item.Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	return item.Item{}, false
}

// FindByContent returns the first item of the given type with exactly
// this content, in creation order. Duplicate contents resolve to the
// oldest item. An empty type matches any variant.
func (l *List) FindByContent(typ item.Type, content string) (item.Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if typ != "" && it.Type != typ {
			continue
		}
		if it.Content == content {
			return it, true
		}
	}
	return item.Item{}, false
}

// FindIndex returns the position of an item in stored order, -1 when
// the item is gone.
func (l *List) FindIndex(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexLocked(id)
}

func (l *List) indexLocked(id string) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the item with the given id and reports whether a
// removal occurred.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.scheduleSaveLocked()
	l.mu.Unlock()

	l.resolve(id)
	return true
}

// Clear empties the collection.
func (l *List) Clear() {
	l.mu.Lock()
	removed := l.items
	l.items = nil
	l.scheduleSaveLocked()
	l.mu.Unlock()

	for _, it := range removed {
		l.resolve(it.ID)
	}
}

// RemoveChecked deletes every checked item. Notes carry no checked
// state and always survive.
func (l *List) RemoveChecked() {
	l.mu.Lock()
	var kept []item.Item
	var removed []item.Item
	for _, it := range l.items {
		if it.Checked {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	l.scheduleSaveLocked()
	l.mu.Unlock()

	for _, it := range removed {
		l.resolve(it.ID)
	}
}

// TakeUnchecked removes and returns every unchecked item (notes
// included) in stored order.
func (l *List) TakeUnchecked() []item.Item {
	l.mu.Lock()
	var kept, taken []item.Item
	for _, it := range l.items {
		if it.Checked {
			kept = append(kept, it)
			continue
		}
		taken = append(taken, it)
	}
	l.items = kept
	if len(taken) > 0 {
		l.scheduleSaveLocked()
	}
	l.mu.Unlock()

	for _, it := range taken {
		l.resolve(it.ID)
	}
	return taken
}

// set mutates one existing item in place. It fails when the item is no
// longer present (stale reference).
func (l *List) set(id string, apply func(*item.Item)) bool {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	apply(&l.items[i])
	l.scheduleSaveLocked()
	l.mu.Unlock()
	return true
}

// SetContent updates an item's content.
func (l *List) SetContent(id, content string) bool {
	return l.set(id, func(it *item.Item) { it.Content = content })
}

// SetChecked updates the checked flag. Checking an item clears any
// deadline bookkeeping for it.
func (l *List) SetChecked(id string, checked bool) bool {
	ok := l.set(id, func(it *item.Item) {
		if it.Completable() {
			it.Checked = checked
		}
	})
	if ok && checked {
		l.resolve(id)
	}
	return ok
}

// SetQuantity sets a product's quantity, floored at zero.
func (l *List) SetQuantity(id string, quantity int) bool {
	if quantity < 0 {
		quantity = 0
	}
	return l.set(id, func(it *item.Item) {
		if it.Type == item.TypeProduct {
			it.Quantity = quantity
		}
	})
}

// AdjustQuantity applies a signed delta to a product's quantity,
// clamping at zero, and returns the updated item.
func (l *List) AdjustQuantity(id string, delta int) (item.Item, bool) {
	var updated item.Item
	ok := l.set(id, func(it *item.Item) {
		if it.Type != item.TypeProduct {
			return
		}
		it.Quantity += delta
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		updated = *it
	})
	if !ok || updated.ID == "" {
		return item.Item{}, false
	}
	return updated, true
}

// SetCategory updates a product's category tag.
func (l *List) SetCategory(id, category string) bool {
	return l.set(id, func(it *item.Item) {
		if it.Type == item.TypeProduct {
			it.Category = category
		}
	})
}

// SetDue updates a task's due fields and clears any deadline
// bookkeeping so an edited deadline can fire again.
func (l *List) SetDue(id, dueDate, dueTime string) bool {
	ok := l.set(id, func(it *item.Item) {
		if it.Type == item.TypeTask {
			it.DueDate, it.DueTime = dueDate, dueTime
		}
	})
	if ok {
		l.resolve(id)
	}
	return ok
}

// SetPerson updates a task's assignee.
func (l *List) SetPerson(id string, person *item.Person) bool {
	return l.set(id, func(it *item.Item) {
		if it.Type == item.TypeTask {
			it.Person = person
		}
	})
}

// Items returns the canonical sorted view.
func (l *List) Items() []item.Item {
	return item.Sorted(l.Snapshot(), l.loc)
}

// Snapshot returns a copy of the collection in stored order.
func (l *List) Snapshot() []item.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]item.Item, len(l.items))
	copy(out, l.items)
	return out
}

// CategorizedItems groups the sorted view by category, known categories
// in catalog order and the uncategorized bucket last.
func (l *List) CategorizedItems() []item.CategoryGroup {
	return item.Categorize(l.Items())
}

// Contents renders a plain-text summary of the sorted view.
func (l *List) Contents(filter item.Filter) string {
	return item.Contents(l.Items(), filter, l.cutoff, l.loc)
}

// ContentsMarkdown renders a markdown summary of the sorted view.
func (l *List) ContentsMarkdown(filter item.Filter) string {
	return item.ContentsMarkdown(l.Items(), filter, l.cutoff, l.loc)
}

// Len reports the number of stored items.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Flush drains any pending write synchronously.
func (l *List) Flush() error {
	return l.saver.Flush()
}

// Close cancels the debounce timer. Pending mutations are dropped
// unless Flush ran first.
func (l *List) Close() {
	l.saver.Stop()
}

func (l *List) resolve(id string) {
	if l.resolver != nil {
		l.resolver.Resolve(l.deviceID, id)
	}
}

// scheduleSaveLocked snapshots the collection for the debounced writer.
// Callers hold l.mu.
func (l *List) scheduleSaveLocked() {
	data, err := item.Encode(l.items)
	if err != nil {
		log.Printf("list %s: encode items: %v", l.deviceID, err)
		return
	}
	l.saver.Schedule(data)
}
