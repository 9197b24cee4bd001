package i18n

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/currency"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
)

var currencies = map[string]currency.Type{
	"USD": currency.USD,
	"EUR": currency.EUR,
	"GBP": currency.GBP,
	"CAD": currency.CAD,
}

var formatters = map[string]locales.Translator{
	"en": en.New(),
	"fr": fr.New(),
}

// Currencies returns the supported ISO 4217 codes.
func Currencies() []string {
	return []string{"USD", "EUR", "GBP", "CAD"}
}

// SupportsCurrency reports whether code can be formatted.
func SupportsCurrency(code string) bool {
	_, ok := currencies[strings.ToUpper(code)]
	return ok
}

// FormatCurrency renders amount with two decimals in the conventions of
// locale. Unknown locales format as English.
func FormatCurrency(locale, code string, amount float64) (string, error) {
	cur, ok := currencies[strings.ToUpper(code)]
	if !ok {
		return "", fmt.Errorf("unsupported currency %q", code)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("cannot format %v", amount)
	}
	t, ok := formatters[locale]
	if !ok {
		t = formatters["en"]
	}
	return t.FmtCurrency(amount, 2, cur), nil
}
