package api

import (
	"net/http"
	"strings"

	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/logging"
)

// GetPreferences returns the owner's display state, defaults if never saved.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Store.GetPreferences(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesDTO(prefs))
}

// UpdatePreferences merges the request into the stored display state.
// Locale and currency are mirrored into cookies so the next requests pick
// them up without a query parameter.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	owner := ownerFrom(ctx)
	prefs, err := h.Store.GetPreferences(ctx, owner)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	prefs = prefs.Clone()
	for panel, visible := range req.Panels {
		prefs.Panels[panel] = visible
	}
	if req.View != "" {
		prefs.View = expenses.View(req.View)
	}
	currencyChanged := false
	if req.Currency != "" {
		c := strings.ToUpper(req.Currency)
		currencyChanged = c != prefs.Currency
		prefs.Currency = c
	}
	if req.Locale != "" {
		prefs.Locale = req.Locale
	}

	if err := h.Store.SavePreferences(ctx, prefs); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if currencyChanged {
		h.republish(ctx, owner)
	}

	if req.Locale != "" {
		http.SetCookie(w, &http.Cookie{Name: LocaleCookie, Value: prefs.Locale, Path: "/", SameSite: http.SameSiteLaxMode})
	}
	if req.Currency != "" {
		http.SetCookie(w, &http.Cookie{Name: CurrencyCookie, Value: prefs.Currency, Path: "/", SameSite: http.SameSiteLaxMode})
	}

	saved, err := h.Store.GetPreferences(ctx, owner)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesDTO(saved))
}

// ResetPreferences restores the default display state.
func (h *Handler) ResetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(ctx)

	prefs := expenses.DefaultPreferences(owner)
	if err := h.Store.SavePreferences(ctx, prefs); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.log.InfoContext(ctx, "preferences reset", logging.FieldOwner, string(owner))
	h.republish(ctx, owner)

	saved, err := h.Store.GetPreferences(ctx, owner)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesDTO(saved))
}
