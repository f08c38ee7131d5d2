package list

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"listrigo/internal/item"
)

type fakeStorage struct {
	mu     sync.Mutex
	values map[string][]byte
	writes int
	fail   bool
	wrote  chan struct{}
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		values: make(map[string][]byte),
		wrote:  make(chan struct{}, 64),
	}
}

func (f *fakeStorage) GetValue(_ context.Context, deviceID, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[deviceID+"/"+key], nil
}

func (f *fakeStorage) SetValue(_ context.Context, deviceID, key string, value []byte) error {
	f.mu.Lock()
	fail := f.fail
	if !fail {
		f.values[deviceID+"/"+key] = value
		f.writes++
	}
	f.mu.Unlock()
	if fail {
		return errors.New("storage rejected write")
	}
	select {
	case f.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeStorage) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeStorage) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(deviceID, event string, payload any) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeResolver struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeResolver) Resolve(deviceID, itemID string) {
	f.mu.Lock()
	f.seen = append(f.seen, itemID)
	f.mu.Unlock()
}

func (f *fakeResolver) resolved(itemID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.seen {
		if id == itemID {
			return true
		}
	}
	return false
}

func newTestList(t *testing.T, opts Options) (*List, *fakeStorage, *fakePublisher) {
	t.Helper()
	store := newFakeStorage()
	pub := &fakePublisher{}
	if opts.Debounce == 0 {
		opts.Debounce = 20 * time.Millisecond
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	l := New("dev-1", store, pub, opts)
	t.Cleanup(l.Close)
	return l, store, pub
}

func TestAddAssignsIdentity(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	got := l.Add(item.Item{Type: item.TypeTask, Content: "Call mom"})

	if got.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if got.Created.IsZero() {
		t.Error("expected a creation timestamp")
	}

	stored, ok := l.Find(got.ID)
	if !ok || stored.Content != "Call mom" {
		t.Errorf("expected the stored item back, got %+v ok=%v", stored, ok)
	}
}

func TestAddNormalizesVariants(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	note := l.Add(item.Item{Type: item.TypeNote, Content: "n", Checked: true, Quantity: 5})
	if note.Checked || note.Quantity != 0 {
		t.Errorf("note should carry no completion state or quantity: %+v", note)
	}

	product := l.Add(item.Item{Type: item.TypeProduct, Content: "Milk"})
	if product.Quantity != 1 {
		t.Errorf("product quantity should default to 1, got %d", product.Quantity)
	}
}

func TestReadYourWrites(t *testing.T) {
	// A long debounce guarantees no flush happens during the test.
	l, store, _ := newTestList(t, Options{Debounce: time.Hour})

	added := l.Add(item.Item{Type: item.TypeProduct, Content: "Milk"})
	l.SetChecked(added.ID, true)

	if store.writeCount() != 0 {
		t.Fatal("no physical write should have happened yet")
	}

	got, ok := l.Find(added.ID)
	if !ok || !got.Checked {
		t.Error("read after mutation must observe the mutated state")
	}
}

func TestRemove(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	added := l.Add(item.Item{Type: item.TypeNote, Content: "x"})

	if !l.Remove(added.ID) {
		t.Error("expected removal to report true")
	}
	if l.Remove(added.ID) {
		t.Error("second removal should report false")
	}
	if l.Len() != 0 {
		t.Errorf("expected empty list, got %d items", l.Len())
	}
}

func TestSetStaleReference(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	added := l.Add(item.Item{Type: item.TypeTask, Content: "x"})
	l.Remove(added.ID)

	if l.SetContent(added.ID, "y") {
		t.Error("setting a removed item should fail")
	}
	if l.SetChecked(added.ID, true) {
		t.Error("checking a removed item should fail")
	}
}

func TestRemoveCheckedKeepsNotes(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	p1 := l.Add(item.Item{Type: item.TypeProduct, Content: "Milk"})
	p2 := l.Add(item.Item{Type: item.TypeProduct, Content: "Bread"})
	l.Add(item.Item{Type: item.TypeNote, Content: "keep me"})
	l.SetChecked(p1.ID, true)
	l.SetChecked(p2.ID, true)

	l.RemoveChecked()

	items := l.Items()
	if len(items) != 1 || items[0].Type != item.TypeNote {
		t.Errorf("expected only the note to remain, got %+v", items)
	}
}

func TestFindByContentFirstMatch(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	first := l.Add(item.Item{Type: item.TypeTask, Content: "dup"})
	l.Add(item.Item{Type: item.TypeTask, Content: "dup"})

	got, ok := l.FindByContent(item.TypeTask, "dup")
	if !ok || got.ID != first.ID {
		t.Errorf("expected the oldest duplicate, got %+v", got)
	}

	if _, ok := l.FindByContent(item.TypeNote, "dup"); ok {
		t.Error("type filter should exclude the tasks")
	}
	if _, ok := l.FindByContent(item.TypeTask, "DUP"); ok {
		t.Error("content matching is case-sensitive")
	}
}

func TestAdjustQuantityClampsAtZero(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	p := l.Add(item.Item{Type: item.TypeProduct, Content: "Milk", Quantity: 2})

	got, ok := l.AdjustQuantity(p.ID, -5)
	if !ok {
		t.Fatal("expected adjustment to succeed")
	}
	if got.Quantity != 0 {
		t.Errorf("expected quantity clamped at 0, got %d", got.Quantity)
	}

	got, _ = l.AdjustQuantity(p.ID, 3)
	if got.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", got.Quantity)
	}

	task := l.Add(item.Item{Type: item.TypeTask, Content: "not a product"})
	if _, ok := l.AdjustQuantity(task.ID, 1); ok {
		t.Error("adjusting a non-product should fail")
	}
}

func TestResolverHooks(t *testing.T) {
	resolver := &fakeResolver{}
	l, _, _ := newTestList(t, Options{Resolver: resolver})

	checked := l.Add(item.Item{Type: item.TypeTask, Content: "a", DueDate: "2024-01-01"})
	edited := l.Add(item.Item{Type: item.TypeTask, Content: "b", DueDate: "2024-01-01"})
	removed := l.Add(item.Item{Type: item.TypeTask, Content: "c", DueDate: "2024-01-01"})

	l.SetChecked(checked.ID, true)
	l.SetDue(edited.ID, "2030-01-01", "")
	l.Remove(removed.ID)

	for _, id := range []string{checked.ID, edited.ID, removed.ID} {
		if !resolver.resolved(id) {
			t.Errorf("expected %s to be resolved", id)
		}
	}
}

func TestClearResolvesAll(t *testing.T) {
	resolver := &fakeResolver{}
	l, _, _ := newTestList(t, Options{Resolver: resolver})

	a := l.Add(item.Item{Type: item.TypeTask, Content: "a"})
	b := l.Add(item.Item{Type: item.TypeNote, Content: "b"})

	l.Clear()

	if l.Len() != 0 {
		t.Error("expected an empty list")
	}
	if !resolver.resolved(a.ID) || !resolver.resolved(b.ID) {
		t.Error("clearing should resolve every removed item")
	}
}

func TestTakeUncheckedAndAdopt(t *testing.T) {
	source, _, _ := newTestList(t, Options{})
	target, _, _ := newTestList(t, Options{})

	open := source.Add(item.Item{Type: item.TypeProduct, Content: "Milk"})
	done := source.Add(item.Item{Type: item.TypeProduct, Content: "Bread"})
	source.SetChecked(done.ID, true)

	taken := source.TakeUnchecked()
	target.Adopt(taken)

	if source.Len() != 1 {
		t.Errorf("source should keep only the checked item, has %d", source.Len())
	}
	moved, ok := target.Find(open.ID)
	if !ok {
		t.Fatal("expected the moved item on the target list")
	}
	if moved.Created != open.Created {
		t.Error("moving must preserve the creation timestamp")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	store := newFakeStorage()
	pub := &fakePublisher{}

	l := New("dev-1", store, pub, Options{Debounce: 5 * time.Millisecond, Location: time.UTC})
	added := l.Add(item.Item{Type: item.TypeTask, Content: "persist me", DueDate: "2024-05-01"})
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	l.Close()

	reloaded := New("dev-1", store, pub, Options{Debounce: 5 * time.Millisecond, Location: time.UTC})
	t.Cleanup(reloaded.Close)
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, ok := reloaded.Find(added.ID)
	if !ok {
		t.Fatal("expected the persisted item after reload")
	}
	if got.Content != "persist me" || got.DueDate != "2024-05-01" {
		t.Errorf("reloaded item mismatch: %+v", got)
	}
}

func TestItemsSortedView(t *testing.T) {
	l, _, _ := newTestList(t, Options{})

	a := l.Add(item.Item{Type: item.TypeTask, Content: "A", DueDate: "2024-01-01"})
	l.Add(item.Item{Type: item.TypeTask, Content: "B", DueDate: "2024-01-02"})
	l.Add(item.Item{Type: item.TypeTask, Content: "C"})
	l.SetChecked(a.ID, true)

	got := l.Items()
	want := []string{"B", "C", "A"}
	for i, content := range want {
		if got[i].Content != content {
			t.Errorf("position %d: expected %q, got %q", i, content, got[i].Content)
		}
	}
}
