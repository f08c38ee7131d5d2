package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"listrigo/internal/item"
)

// GetItems handles GET /api/lists/{deviceId}/items.
func (h *Handlers) GetItems(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	items := d.Items.Items()
	if filter := r.URL.Query().Get("filter"); filter != "" {
		f := item.ParseFilter(filter)
		filtered := items[:0]
		for _, it := range items {
			if f == item.FilterAll ||
				(f == item.FilterChecked && it.Checked) ||
				(f == item.FilterOpen && !it.Checked) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	respondJSON(w, items)
}

// GetCategories handles GET /api/lists/{deviceId}/categories. Items are
// grouped per grocery category in catalog order.
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	respondJSON(w, d.Items.CategorizedItems())
}

// GetPersons handles GET /api/lists/{deviceId}/persons.
func (h *Handlers) GetPersons(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.deviceParam(r); !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	respondJSON(w, h.registry.Persons())
}

// GetItem handles GET /api/lists/{deviceId}/items/{id}.
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	it, ok := d.Items.Find(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, it)
}

// itemRequest is the mutable slice of an item a widget may send.
// Identity, type and creation time are assigned server side and never
// accepted from the body.
type itemRequest struct {
	Type     item.Type    `json:"type"`
	Content  string       `json:"content"`
	Category string       `json:"category"`
	Quantity int          `json:"quantity"`
	DueDate  string       `json:"dueDate"`
	DueTime  string       `json:"dueTime"`
	Person   *item.Person `json:"person"`
}

// AddItem handles POST /api/lists/{deviceId}/items.
func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		respondError(w, http.StatusBadRequest, "unknown item type")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	var added item.Item
	switch req.Type {
	case item.TypeNote:
		added = d.AddNote(req.Content)
	case item.TypeTask:
		added = d.AddTask(req.Content, req.DueDate, req.DueTime, req.Person)
	case item.TypeProduct:
		quantity := req.Quantity
		if quantity < 1 {
			quantity = 1
		}
		added = d.AddProduct(req.Content, quantity)
		if req.Category != "" {
			d.Items.SetCategory(added.ID, req.Category)
			added.Category = req.Category
		}
	}
	w.WriteHeader(http.StatusCreated)
	respondJSON(w, added)
}

// EditItem handles PUT /api/lists/{deviceId}/items/{id}. Only the
// fields the variant carries are applied; identity, type and creation
// time are immutable.
func (h *Handlers) EditItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	id := chi.URLParam(r, "id")
	existing, ok := d.Items.Find(id)
	if !ok {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	switch existing.Type {
	case item.TypeNote:
		d.Items.SetContent(id, req.Content)
	case item.TypeTask:
		d.EditTask(id, req.Content, req.DueDate, req.DueTime, req.Person)
	case item.TypeProduct:
		d.Items.SetContent(id, req.Content)
		if req.Quantity > 0 {
			d.Items.SetQuantity(id, req.Quantity)
		}
		d.Items.SetCategory(id, req.Category)
	}

	updated, _ := d.Items.Find(id)
	respondJSON(w, updated)
}

// RemoveItem handles DELETE /api/lists/{deviceId}/items/{id}.
func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	if !d.RemoveItem(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkChecked handles POST /api/lists/{deviceId}/items/{id}/checked.
func (h *Handlers) MarkChecked(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, true)
}

// MarkUnchecked handles POST /api/lists/{deviceId}/items/{id}/unchecked.
func (h *Handlers) MarkUnchecked(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, false)
}

func (h *Handlers) check(w http.ResponseWriter, r *http.Request, checked bool) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	id := chi.URLParam(r, "id")
	it, ok := d.Items.Find(id)
	if !ok {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if !it.Completable() {
		respondError(w, http.StatusBadRequest, "item has no checked state")
		return
	}
	d.Check(id, checked)
	updated, _ := d.Items.Find(id)
	respondJSON(w, updated)
}

// AdjustQuantity handles POST /api/lists/{deviceId}/items/{id}/quantity.
func (h *Handlers) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	id := chi.URLParam(r, "id")
	it, ok := d.Items.Find(id)
	if !ok {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if it.Type != item.TypeProduct {
		respondError(w, http.StatusBadRequest, "item has no quantity")
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeBody(r, &req); err != nil || req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "delta is required")
		return
	}
	d.AdjustQuantity(id, req.Delta)
	updated, _ := d.Items.Find(id)
	respondJSON(w, updated)
}
