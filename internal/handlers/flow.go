package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"listrigo/internal/device"
	"listrigo/internal/flow"
	"listrigo/internal/item"
)

// flowArgs is the argument envelope the flow cards post. Every card
// addresses a list; the remaining fields depend on the card.
type flowArgs struct {
	List     string       `json:"list"`
	Target   string       `json:"target"`
	Note     string       `json:"note"`
	Task     string       `json:"task"`
	Product  string       `json:"product"`
	Quantity int          `json:"quantity"`
	Category string       `json:"category"`
	DueDate  string       `json:"due_date"`
	DueTime  string       `json:"due_time"`
	Filter   string       `json:"filter"`
	Person   *item.Person `json:"person"`
	// State carries the trigger tokens a stateful condition compares
	// against.
	State map[string]any `json:"state"`
}

// person resolves the person argument, filling in catalog data when the
// card only carries an id.
func (h *Handlers) person(arg *item.Person) *item.Person {
	if arg == nil {
		return nil
	}
	if full, ok := h.registry.Person(arg.ID); ok {
		return &full
	}
	return arg
}

func deviceEntries(devices []*device.Device) []flow.ListEntry {
	entries := make([]flow.ListEntry, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, flow.ListEntry{ID: d.ID, Name: d.Name()})
	}
	return entries
}

// RunAction handles POST /api/flow/actions/{card}. Actions addressing
// content that is not on the list are silent no-ops; only an unknown
// card or list is an error.
func (h *Handlers) RunAction(w http.ResponseWriter, r *http.Request) {
	card := chi.URLParam(r, "card")
	var args flowArgs
	if err := decodeBody(r, &args); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, ok := h.registry.Device(args.List)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}

	result := map[string]any{}
	switch card {
	case flow.ActionAddNote:
		d.AddNote(args.Note)
	case flow.ActionAddTask:
		d.AddTask(args.Task, "", "", nil)
	case flow.ActionAddPersonTask:
		d.AddTask(args.Task, "", "", h.person(args.Person))
	case flow.ActionAddPlannedTask:
		d.AddTask(args.Task, args.DueDate, args.DueTime, nil)
	case flow.ActionAddPlannedPersonTask:
		d.AddTask(args.Task, args.DueDate, args.DueTime, h.person(args.Person))
	case flow.ActionAddProduct:
		d.AddProduct(args.Product, 1)
	case flow.ActionAddProductQuantity:
		quantity := args.Quantity
		if quantity < 1 {
			quantity = 1
		}
		d.AddProduct(args.Product, quantity)
	case flow.ActionSetProductQuantity:
		d.SetProductQuantity(args.Product, args.Quantity)
	case flow.ActionSetProductCategory:
		d.SetProductCategory(args.Product, args.Category)
	case flow.ActionCheckTask:
		h.checkByContent(d, item.TypeTask, args.Task, true)
	case flow.ActionUncheckTask:
		h.checkByContent(d, item.TypeTask, args.Task, false)
	case flow.ActionCheckProduct:
		h.checkByContent(d, item.TypeProduct, args.Product, true)
	case flow.ActionUncheckProduct:
		h.checkByContent(d, item.TypeProduct, args.Product, false)
	case flow.ActionRemoveNote:
		d.RemoveByContent(item.TypeNote, args.Note)
	case flow.ActionRemoveTask:
		d.RemoveByContent(item.TypeTask, args.Task)
	case flow.ActionRemoveProduct:
		d.RemoveByContent(item.TypeProduct, args.Product)
	case flow.ActionRemoveChecked:
		d.Items.RemoveChecked()
	case flow.ActionClearList:
		d.Items.Clear()
	case flow.ActionMoveUnchecked:
		target, ok := h.registry.Device(args.Target)
		if !ok {
			respondError(w, http.StatusNotFound, "target list not found")
			return
		}
		d.MoveUncheckedTo(target)
	case flow.ActionGetContents:
		result["contents"] = d.Items.Contents(item.ParseFilter(args.Filter))
	case flow.ActionGetContentsMarkdown:
		result["contents"] = d.Items.ContentsMarkdown(item.ParseFilter(args.Filter))
	default:
		respondError(w, http.StatusNotFound, "unknown action card")
		return
	}
	respondJSON(w, result)
}

func (h *Handlers) checkByContent(d *device.Device, typ item.Type, content string, checked bool) {
	if it, ok := d.Items.FindByContent(typ, content); ok {
		d.Check(it.ID, checked)
	}
}

// EvalCondition handles POST /api/flow/conditions/{card}. Conditions on
// content that is not on the list evaluate to false.
func (h *Handlers) EvalCondition(w http.ResponseWriter, r *http.Request) {
	card := chi.URLParam(r, "card")
	var args flowArgs
	if err := decodeBody(r, &args); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, ok := h.registry.Device(args.List)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}

	var result bool
	switch card {
	case flow.ConditionNoteExists:
		_, result = d.Items.FindByContent(item.TypeNote, args.Note)
	case flow.ConditionTaskExists:
		_, result = d.Items.FindByContent(item.TypeTask, args.Task)
	case flow.ConditionProductExists:
		_, result = d.Items.FindByContent(item.TypeProduct, args.Product)
	case flow.ConditionTaskIsChecked:
		it, ok := d.Items.FindByContent(item.TypeTask, args.Task)
		result = ok && it.Checked
	case flow.ConditionProductIsChecked:
		it, ok := d.Items.FindByContent(item.TypeProduct, args.Product)
		result = ok && it.Checked
	case flow.ConditionProductHasQuantity:
		it, ok := d.Items.FindByContent(item.TypeProduct, args.Product)
		result = ok && it.Quantity == args.Quantity
	case flow.ConditionTaskIs:
		task, _ := args.State["task"].(string)
		result = args.Task == task
	default:
		respondError(w, http.StatusNotFound, "unknown condition card")
		return
	}
	respondJSON(w, map[string]bool{"result": result})
}

// Autocomplete handles GET /api/flow/autocomplete/{provider} for the
// person and category pickers.
func (h *Handlers) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	switch chi.URLParam(r, "provider") {
	case "persons":
		respondJSON(w, flow.AutocompletePersons(h.registry.Persons(), query))
	case "categories":
		respondJSON(w, flow.AutocompleteCategories(query))
	case "lists":
		devices := h.registry.Devices()
		if kind := device.Kind(r.URL.Query().Get("kind")); kind.Valid() {
			devices = h.registry.ByKind(kind)
		}
		respondJSON(w, flow.AutocompleteLists(deviceEntries(devices), query))
	default:
		respondError(w, http.StatusNotFound, "unknown autocomplete provider")
		return
	}
}
