package handlers

import (
	"net/http"

	"listrigo/internal/device"
)

// deviceView is the wire form of a device for the pairing UI.
type deviceView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func viewOf(d *device.Device) deviceView {
	look := d.Look()
	return deviceView{
		ID:    d.ID,
		Name:  d.Name(),
		Kind:  string(d.Kind),
		Color: look.Color,
		Icon:  look.Icon,
	}
}

// ListDevices handles GET /api/lists.
func (h *Handlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices := h.registry.Devices()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, viewOf(d))
	}
	respondJSON(w, views)
}

// CreateDevice handles POST /api/lists.
func (h *Handlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Kind  string `json:"kind"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	kind := device.Kind(req.Kind)
	if !kind.Valid() {
		respondError(w, http.StatusBadRequest, "unknown list kind")
		return
	}
	d, err := h.registry.Create(r.Context(), req.Name, kind, device.Look{Color: req.Color, Icon: req.Icon})
	if err != nil {
		respondServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	respondJSON(w, viewOf(d))
}

// GetLook handles GET /api/lists/{deviceId}.
func (h *Handlers) GetLook(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	respondJSON(w, viewOf(d))
}

// UpdateLook handles PUT /api/lists/{deviceId}/look.
func (h *Handlers) UpdateLook(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	var req struct {
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := d.SetLook(r.Context(), device.Look{Color: req.Color, Icon: req.Icon}); err != nil {
		respondServerError(w, err)
		return
	}
	respondJSON(w, viewOf(d))
}

// RenameDevice handles PUT /api/lists/{deviceId}/name.
func (h *Handlers) RenameDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.registry.Rename(r.Context(), d.ID, req.Name); err != nil {
		respondServerError(w, err)
		return
	}
	respondJSON(w, viewOf(d))
}

// DeleteDevice handles DELETE /api/lists/{deviceId}.
func (h *Handlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deviceParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	if err := h.registry.Delete(r.Context(), d.ID); err != nil {
		respondServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetColors handles GET /api/catalog/colors.
func (h *Handlers) GetColors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, device.Colors())
}

// GetIcons handles GET /api/catalog/icons.
func (h *Handlers) GetIcons(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, device.Icons())
}
