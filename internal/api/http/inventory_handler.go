package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/service"
)

type InventoryHandler struct {
	inventorySvc service.InventoryService
}

func NewInventoryHandler(inventorySvc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventorySvc: inventorySvc}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventorySvc.Query(r.Context(), nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	bt := domain.BloodType(mux.Vars(r)["bloodType"])
	items, err := h.inventorySvc.Query(r.Context(), &bt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items[0])
}

func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventorySvc.Search(r.Context(), domain.BloodType(r.URL.Query().Get("bloodType")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// LowStock reports alerts at or below ?threshold, or the configured default.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.inventorySvc.LowStock(r.Context(), queryInt32(r, "threshold", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(alerts))
}

// Set overwrites the unit count. POST takes the blood type from the body,
// PUT from the path.
func (h *InventoryHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if bt, ok := mux.Vars(r)["bloodType"]; ok {
		req.BloodType = domain.BloodType(bt)
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if bt, ok := mux.Vars(r)["bloodType"]; ok {
		req.BloodType = domain.BloodType(bt)
	}
	item, err := h.inventorySvc.SetAbsolute(r.Context(), req.BloodType, *req.Units)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.inventorySvc.Add(r.Context(), req.BloodType, *req.Units)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.inventorySvc.Remove(r.Context(), req.BloodType, *req.Units)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
