package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/breakeven-engine/i18n"
)

// ListLocales returns the supported locales and currencies.
func (h *Handler) ListLocales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":    h.Catalog.Default(),
		"current":    localeFrom(r.Context()),
		"locales":    h.Catalog.Locales(),
		"currencies": i18n.Currencies(),
	})
}

// GetMessages returns the whole message tree of a locale.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, ok := h.Catalog.Messages(chi.URLParam(r, "locale"))
	if !ok {
		h.writeCodedError(w, r, http.StatusNotFound, CodeNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// LookupMessage resolves one dotted key in the request locale. A miss never
// fails: the fallback, or the key itself, is returned.
func (h *Handler) LookupMessage(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		h.writeCodedError(w, r, http.StatusBadRequest, CodeInvalidInput, map[string]string{"key": "required"})
		return
	}
	locale := localeFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"locale": locale,
		"key":    key,
		"value":  h.Catalog.Lookup(locale, key, r.URL.Query().Get("fallback")),
	})
}
