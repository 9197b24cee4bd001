package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/breakeven-engine/expenses"
)

// =============================================================================
// FIXED COST HANDLERS
// =============================================================================

// ListFixedCosts returns the owner's fixed costs in display order, with totals.
func (h *Handler) ListFixedCosts(w http.ResponseWriter, r *http.Request) {
	costs, err := h.Store.ListFixedCosts(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	items := make([]FixedCostDTO, len(costs))
	for i, c := range costs {
		items[i] = toFixedCostDTO(c)
	}
	totals := expenses.ComputeTotals(costs, nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"items":         items,
		"monthly_total": totals.FixedMonthly.Round(2),
		"by_category":   totals.ByCategory,
	})
}

// GetFixedCost returns a single fixed cost.
func (h *Handler) GetFixedCost(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetFixedCost(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFixedCostDTO(c))
}

// CreateFixedCost appends a fixed cost to the end of the list.
func (h *Handler) CreateFixedCost(w http.ResponseWriter, r *http.Request) {
	var req FixedCostRequest
	if !h.decode(w, r, &req) {
		return
	}

	owner := ownerFrom(r.Context())
	record := req.toDomain(owner, expenses.NewID())
	if err := record.Validate(); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	c, err := h.Store.CreateFixedCost(r.Context(), record)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(r.Context(), owner)
	writeJSON(w, http.StatusCreated, toFixedCostDTO(c))
}

// UpdateFixedCost replaces a fixed cost. Its position is kept.
func (h *Handler) UpdateFixedCost(w http.ResponseWriter, r *http.Request) {
	var req FixedCostRequest
	if !h.decode(w, r, &req) {
		return
	}

	owner := ownerFrom(r.Context())
	record := req.toDomain(owner, chi.URLParam(r, "id"))
	if err := record.Validate(); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	c, err := h.Store.UpdateFixedCost(r.Context(), record)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(r.Context(), owner)
	writeJSON(w, http.StatusOK, toFixedCostDTO(c))
}

// DeleteFixedCost removes a fixed cost.
func (h *Handler) DeleteFixedCost(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	if err := h.Store.DeleteFixedCost(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}

// ReorderFixedCosts applies a drag-and-drop ordering.
func (h *Handler) ReorderFixedCosts(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	owner := ownerFrom(r.Context())
	if err := h.Store.ReorderFixedCosts(r.Context(), owner, req.IDs); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.ListFixedCosts(w, r)
}

// =============================================================================
// EQUIPMENT HANDLERS
// =============================================================================

// ListEquipment returns the owner's equipment in display order, with totals.
func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListEquipment(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	now := time.Now()
	dtos := make([]EquipmentDTO, len(items))
	for i, e := range items {
		dtos[i] = toEquipmentDTO(e, now)
	}
	totals := expenses.ComputeTotals(nil, items)
	writeJSON(w, http.StatusOK, map[string]any{
		"items":         dtos,
		"monthly_total": totals.EquipmentMonthly.Round(2),
		"by_category":   totals.ByCategory,
	})
}

// GetEquipment returns a single equipment record.
func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEquipment(r.Context(), ownerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEquipmentDTO(e, time.Now()))
}

// CreateEquipment appends equipment to the end of the list.
func (h *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req EquipmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	owner := ownerFrom(r.Context())
	record := req.toDomain(owner, expenses.NewID())
	if err := record.Validate(); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	e, err := h.Store.CreateEquipment(r.Context(), record)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(r.Context(), owner)
	writeJSON(w, http.StatusCreated, toEquipmentDTO(e, time.Now()))
}

// UpdateEquipment replaces equipment. Its position is kept.
func (h *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	var req EquipmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	owner := ownerFrom(r.Context())
	record := req.toDomain(owner, chi.URLParam(r, "id"))
	if err := record.Validate(); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	e, err := h.Store.UpdateEquipment(r.Context(), record)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(r.Context(), owner)
	writeJSON(w, http.StatusOK, toEquipmentDTO(e, time.Now()))
}

// DeleteEquipment removes equipment.
func (h *Handler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	if err := h.Store.DeleteEquipment(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}

// ReorderEquipment applies a drag-and-drop ordering.
func (h *Handler) ReorderEquipment(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	owner := ownerFrom(r.Context())
	if err := h.Store.ReorderEquipment(r.Context(), owner, req.IDs); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.ListEquipment(w, r)
}

// Totals returns fixed, equipment and combined monthly totals.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	snap, err := expenses.LoadSnapshot(r.Context(), h.Store, ownerFrom(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fixed_monthly":     snap.Totals.FixedMonthly.Round(2),
		"equipment_monthly": snap.Totals.EquipmentMonthly.Round(2),
		"other_monthly":     snap.Totals.OtherMonthly().Round(2),
		"by_category":       snap.Totals.ByCategory,
	})
}
