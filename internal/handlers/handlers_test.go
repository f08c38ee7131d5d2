package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"listrigo/internal/device"
	"listrigo/internal/item"
	"listrigo/internal/realtime"
	"listrigo/internal/storage"
)

func setupTestHandlers(t *testing.T) (*Handlers, *device.Registry) {
	t.Helper()
	s, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	registry := device.NewRegistry(device.RegistryOptions{
		Store:     s,
		Publisher: hub,
		Debounce:  time.Hour, // keep writes out of the way
		Persons: []item.Person{
			{ID: "p1", Name: "Bas"},
			{ID: "p2", Name: "Anna"},
		},
	})
	t.Cleanup(func() { registry.Close() })

	return New(registry, hub), registry
}

func createTestList(t *testing.T, registry *device.Registry, kind device.Kind) *device.Device {
	t.Helper()
	d, err := registry.Create(context.Background(), "Test List", kind, device.Look{Color: "#FF5722", Icon: "list"})
	if err != nil {
		t.Fatalf("failed to create list: %v", err)
	}
	return d
}

func doJSON(t *testing.T, h *Handlers, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

func decodeItem(t *testing.T, rr *httptest.ResponseRecorder) item.Item {
	t.Helper()
	var it item.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &it); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	return it
}

func TestCreateDevice(t *testing.T) {
	h, registry := setupTestHandlers(t)

	rr := doJSON(t, h, http.MethodPost, "/api/lists", map[string]string{
		"name": "Groceries", "kind": "grocery_list", "color": "#4CAF50", "icon": "cart",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var view deviceView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.ID == "" {
		t.Error("expected a generated id")
	}
	if view.Kind != "grocery_list" || view.Color != "#4CAF50" {
		t.Errorf("unexpected view: %+v", view)
	}
	if _, ok := registry.Device(view.ID); !ok {
		t.Error("device not registered")
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rr := doJSON(t, h, http.MethodPost, "/api/lists", map[string]string{"kind": "list"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing name: expected status 400, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/lists", map[string]string{"name": "X", "kind": "fridge"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad kind: expected status 400, got %d", rr.Code)
	}
}

func TestGetLookAndUpdate(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodGet, "/api/lists/"+d.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var view deviceView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Color != "#FF5722" {
		t.Errorf("expected color #FF5722, got %q", view.Color)
	}

	rr = doJSON(t, h, http.MethodPut, "/api/lists/"+d.ID+"/look", map[string]string{
		"color": "#2196F3", "icon": "tasks",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if look := d.Look(); look.Color != "#2196F3" || look.Icon != "tasks" {
		t.Errorf("look not updated: %+v", look)
	}
}

func TestDeviceNotFound(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rr := doJSON(t, h, http.MethodGet, "/api/lists/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, "/api/lists/nope/items", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestDeleteDevice(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodDelete, "/api/lists/"+d.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if _, ok := registry.Device(d.ID); ok {
		t.Error("device still registered after delete")
	}
}

func TestAddAndGetItems(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items", map[string]any{
		"type": "task", "content": "Call mom", "dueDate": "2026-09-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	added := decodeItem(t, rr)
	if added.ID == "" || added.Type != item.TypeTask || added.DueDate != "2026-09-01" {
		t.Errorf("unexpected item: %+v", added)
	}
	// The body carries no id or created; both are assigned server side.
	if added.Created.IsZero() {
		t.Error("expected a server-assigned creation time")
	}

	rr = doJSON(t, h, http.MethodGet, "/api/lists/"+d.ID+"/items", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var items []item.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	if len(items) != 1 || items[0].ID != added.ID {
		t.Errorf("expected the added item back, got %+v", items)
	}
}

func TestAddItemValidation(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items", map[string]any{
		"type": "sticker", "content": "x",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad type: expected status 400, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items", map[string]any{
		"type": "note",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing content: expected status 400, got %d", rr.Code)
	}
}

func TestGetItemsFilter(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	open := d.AddTask("Open", "", "", nil)
	done := d.AddTask("Done", "", "", nil)
	d.Check(done.ID, true)

	rr := doJSON(t, h, http.MethodGet, "/api/lists/"+d.ID+"/items?filter=open", nil)
	var items []item.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	if len(items) != 1 || items[0].ID != open.ID {
		t.Errorf("expected only the open task, got %+v", items)
	}
}

func TestEditItem(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)
	it := d.AddTask("Call mom", "", "", nil)

	rr := doJSON(t, h, http.MethodPut, "/api/lists/"+d.ID+"/items/"+it.ID, map[string]any{
		"content": "Call dad", "dueDate": "2026-09-02", "dueTime": "18:00",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	updated := decodeItem(t, rr)
	if updated.Content != "Call dad" || updated.DueDate != "2026-09-02" || updated.DueTime != "18:00" {
		t.Errorf("unexpected item after edit: %+v", updated)
	}
}

func TestCheckAndUncheck(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)
	it := d.AddTask("Call mom", "", "", nil)

	rr := doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items/"+it.ID+"/checked", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decodeItem(t, rr); !got.Checked {
		t.Error("expected item to be checked")
	}

	rr = doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items/"+it.ID+"/unchecked", nil)
	if got := decodeItem(t, rr); got.Checked {
		t.Error("expected item to be unchecked")
	}
}

func TestCheckNoteRejected(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)
	note := d.AddNote("Remember this")

	rr := doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items/"+note.ID+"/checked", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestAdjustQuantity(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindGrocery)
	it := d.AddProduct("Milk", 2)

	rr := doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items/"+it.ID+"/quantity", map[string]int{"delta": 3})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decodeItem(t, rr); got.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", got.Quantity)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/lists/"+d.ID+"/items/"+it.ID+"/quantity", map[string]int{"delta": 0})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("zero delta: expected status 400, got %d", rr.Code)
	}
}

func TestRemoveItem(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)
	it := d.AddNote("gone soon")

	rr := doJSON(t, h, http.MethodDelete, "/api/lists/"+d.ID+"/items/"+it.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodDelete, "/api/lists/"+d.ID+"/items/"+it.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on second delete, got %d", rr.Code)
	}
}

func TestGetCategories(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindGrocery)
	milk := d.AddProduct("Milk", 1)
	d.Items.SetCategory(milk.ID, "dairy")
	d.AddProduct("Batteries", 1)

	rr := doJSON(t, h, http.MethodGet, "/api/lists/"+d.ID+"/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var groups []item.CategoryGroup
	if err := json.Unmarshal(rr.Body.Bytes(), &groups); err != nil {
		t.Fatalf("failed to decode groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// Uncategorized sorts last.
	if groups[0].Category != "dairy" {
		t.Errorf("expected dairy first, got %q", groups[0].Category)
	}
}

func TestRunActionAddAndContents(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodPost, "/api/flow/actions/add_task", map[string]any{
		"list": d.ID, "task": "Water plants",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if _, ok := d.Items.FindByContent(item.TypeTask, "Water plants"); !ok {
		t.Error("task not added")
	}

	rr = doJSON(t, h, http.MethodPost, "/api/flow/actions/get_contents", map[string]any{
		"list": d.ID, "filter": "all",
	})
	var result map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result["contents"] != "[ ] Water plants" {
		t.Errorf("unexpected contents: %q", result["contents"])
	}
}

func TestRunActionPersonResolved(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodPost, "/api/flow/actions/add_person_task", map[string]any{
		"list": d.ID, "task": "Walk dog", "person": map[string]string{"id": "p1"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	it, ok := d.Items.FindByContent(item.TypeTask, "Walk dog")
	if !ok || it.Person == nil || it.Person.Name != "Bas" {
		t.Errorf("expected person resolved from catalog, got %+v", it.Person)
	}
}

func TestRunActionMissingContentIsNoOp(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodPost, "/api/flow/actions/check_task", map[string]any{
		"list": d.ID, "task": "Not here",
	})
	if rr.Code != http.StatusOK {
		t.Errorf("expected silent no-op, got %d", rr.Code)
	}
}

func TestRunActionUnknownCard(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindBasic)

	rr := doJSON(t, h, http.MethodPost, "/api/flow/actions/paint_fence", map[string]any{"list": d.ID})
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestRunActionMoveUnchecked(t *testing.T) {
	h, registry := setupTestHandlers(t)
	src := createTestList(t, registry, device.KindBasic)
	dst := createTestList(t, registry, device.KindBasic)

	kept := src.AddTask("Done", "", "", nil)
	src.Check(kept.ID, true)
	src.AddTask("Open", "", "", nil)

	rr := doJSON(t, h, http.MethodPost, "/api/flow/actions/move_unchecked", map[string]any{
		"list": src.ID, "target": dst.ID,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if src.Items.Len() != 1 {
		t.Errorf("expected 1 item left on source, got %d", src.Items.Len())
	}
	if _, ok := dst.Items.FindByContent(item.TypeTask, "Open"); !ok {
		t.Error("open task not moved to target")
	}
}

func TestEvalConditions(t *testing.T) {
	h, registry := setupTestHandlers(t)
	d := createTestList(t, registry, device.KindGrocery)
	milk := d.AddProduct("Milk", 2)
	d.Check(milk.ID, true)

	cases := []struct {
		card string
		args map[string]any
		want bool
	}{
		{"product_exists", map[string]any{"list": d.ID, "product": "Milk"}, true},
		{"product_exists", map[string]any{"list": d.ID, "product": "Eggs"}, false},
		{"product_is_checked", map[string]any{"list": d.ID, "product": "Milk"}, true},
		{"product_has_quantity", map[string]any{"list": d.ID, "product": "Milk", "quantity": 2}, true},
		{"product_has_quantity", map[string]any{"list": d.ID, "product": "Milk", "quantity": 3}, false},
		{"task_is", map[string]any{"list": d.ID, "task": "Call mom", "state": map[string]any{"task": "Call mom"}}, true},
		{"task_is", map[string]any{"list": d.ID, "task": "Call mom", "state": map[string]any{"task": "Call dad"}}, false},
	}
	for _, tc := range cases {
		rr := doJSON(t, h, http.MethodPost, "/api/flow/conditions/"+tc.card, tc.args)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", tc.card, rr.Code)
		}
		var result map[string]bool
		if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
			t.Fatalf("%s: failed to decode result: %v", tc.card, err)
		}
		if result["result"] != tc.want {
			t.Errorf("%s with %v: expected %v", tc.card, tc.args, tc.want)
		}
	}
}

func TestAutocomplete(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rr := doJSON(t, h, http.MethodGet, "/api/flow/autocomplete/persons?query=ba", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var results []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 1 || results[0]["name"] != "Bas" {
		t.Errorf("unexpected persons result: %+v", results)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/flow/autocomplete/lists?query=", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/flow/autocomplete/settings?query=", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown provider, got %d", rr.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rr := doJSON(t, h, http.MethodGet, "/api/catalog/colors", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var colors []device.Color
	if err := json.Unmarshal(rr.Body.Bytes(), &colors); err != nil {
		t.Fatalf("failed to decode colors: %v", err)
	}
	if len(colors) == 0 {
		t.Error("expected a non-empty color catalog")
	}
}
