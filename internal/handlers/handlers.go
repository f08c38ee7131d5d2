// Package handlers exposes the widget API, the pairing endpoints and
// the flow-card surface over HTTP.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"listrigo/internal/device"
	"listrigo/internal/realtime"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	registry *device.Registry
	hub      *realtime.Hub
}

// New creates a new Handlers instance.
func New(registry *device.Registry, hub *realtime.Hub) *Handlers {
	return &Handlers{
		registry: registry,
		hub:      hub,
	}
}

// Routes mounts every endpoint on a fresh router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	// Pairing / device management
	r.Get("/api/lists", h.ListDevices)
	r.Post("/api/lists", h.CreateDevice)
	r.Get("/api/lists/{deviceId}", h.GetLook)
	r.Put("/api/lists/{deviceId}/look", h.UpdateLook)
	r.Put("/api/lists/{deviceId}/name", h.RenameDevice)
	r.Delete("/api/lists/{deviceId}", h.DeleteDevice)
	r.Get("/api/catalog/colors", h.GetColors)
	r.Get("/api/catalog/icons", h.GetIcons)

	// Widget API
	r.Get("/api/lists/{deviceId}/categories", h.GetCategories)
	r.Get("/api/lists/{deviceId}/persons", h.GetPersons)
	r.Get("/api/lists/{deviceId}/items", h.GetItems)
	r.Post("/api/lists/{deviceId}/items", h.AddItem)
	r.Get("/api/lists/{deviceId}/items/{id}", h.GetItem)
	r.Put("/api/lists/{deviceId}/items/{id}", h.EditItem)
	r.Delete("/api/lists/{deviceId}/items/{id}", h.RemoveItem)
	r.Post("/api/lists/{deviceId}/items/{id}/checked", h.MarkChecked)
	r.Post("/api/lists/{deviceId}/items/{id}/unchecked", h.MarkUnchecked)
	r.Post("/api/lists/{deviceId}/items/{id}/quantity", h.AdjustQuantity)

	// Flow-card surface
	r.Post("/api/flow/actions/{card}", h.RunAction)
	r.Post("/api/flow/conditions/{card}", h.EvalCondition)
	r.Get("/api/flow/autocomplete/{provider}", h.Autocomplete)

	// Realtime
	r.Get("/ws/{deviceId}", h.Subscribe)

	return r
}

// deviceParam resolves the device addressed by the request.
func (h *Handlers) deviceParam(r *http.Request) (*device.Device, bool) {
	return h.registry.Device(chi.URLParam(r, "deviceId"))
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	w.Write([]byte(message))
}

func respondServerError(w http.ResponseWriter, err error) {
	log.Printf("internal server error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// Subscribe attaches a widget to a device's realtime events.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	h.hub.ServeDevice(w, r, d.ID)
}
