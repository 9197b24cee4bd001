package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/i18n"
)

const (
	// OwnerHeader selects the workspace a request operates on.
	OwnerHeader = "X-Owner-ID"

	LocaleCookie   = "locale"
	CurrencyCookie = "currency"
)

type ctxKey int

const (
	ownerKey ctxKey = iota
	localeKey
	currencyKey
)

// requestContext resolves owner, locale and currency once per request.
//
// Locale: ?lang= query, then the locale cookie, then Accept-Language.
// Currency: ?currency= query, then the currency cookie. When neither is set
// the owner's preference applies (see displayCurrency).
func (h *Handler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := expenses.Owner(strings.TrimSpace(r.Header.Get(OwnerHeader)))
		if owner == "" {
			owner = expenses.DefaultOwner
		}

		locale := h.Catalog.Match(
			r.URL.Query().Get("lang"),
			cookieValue(r, LocaleCookie),
			r.Header.Get("Accept-Language"),
		)

		currency := ""
		for _, c := range []string{r.URL.Query().Get("currency"), cookieValue(r, CurrencyCookie)} {
			if c != "" && i18n.SupportsCurrency(c) {
				currency = strings.ToUpper(c)
				break
			}
		}

		ctx := context.WithValue(r.Context(), ownerKey, owner)
		ctx = context.WithValue(ctx, localeKey, locale)
		ctx = context.WithValue(ctx, currencyKey, currency)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func ownerFrom(ctx context.Context) expenses.Owner {
	if o, ok := ctx.Value(ownerKey).(expenses.Owner); ok {
		return o
	}
	return expenses.DefaultOwner
}

func localeFrom(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey).(string); ok {
		return l
	}
	return ""
}

func currencyFrom(ctx context.Context) string {
	if c, ok := ctx.Value(currencyKey).(string); ok {
		return c
	}
	return ""
}

// displayCurrency is the currency amounts are formatted in for this request.
func (h *Handler) displayCurrency(ctx context.Context) string {
	if c := currencyFrom(ctx); c != "" {
		return c
	}
	prefs, err := h.Store.GetPreferences(ctx, ownerFrom(ctx))
	if err == nil && i18n.SupportsCurrency(prefs.Currency) {
		return strings.ToUpper(prefs.Currency)
	}
	return h.defaultCurrency
}
