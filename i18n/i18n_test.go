package i18n

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load("en")
	require.NoError(t, err)
	return c
}

func TestLoad_UnknownDefault(t *testing.T) {
	_, err := Load("de")
	assert.Error(t, err)
}

func TestCatalog_Locales(t *testing.T) {
	c := loadCatalog(t)
	assert.Equal(t, []string{"en", "fr"}, c.Locales())
	assert.True(t, c.Supports("fr"))
	assert.False(t, c.Supports("de"))
}

func TestCatalog_Lookup(t *testing.T) {
	c := loadCatalog(t)

	cases := []struct {
		name     string
		locale   string
		key      string
		fallback []string
		want     string
	}{
		{"requested locale", "fr", "panels.summary", nil, "Résumé"},
		{"english", "en", "panels.summary", nil, "Summary"},
		{"missing in fr uses default", "fr", "errors.invalid_order", nil, "The new order must list every item exactly once."},
		{"unknown locale uses default", "de", "rates.hourly", nil, "Hourly rate"},
		{"missing everywhere uses fallback", "fr", "nope.nothing", []string{"Fallback"}, "Fallback"},
		{"no fallback returns key", "fr", "nope.nothing", nil, "nope.nothing"},
		{"branch is not a string", "en", "errors", nil, "errors"},
		{"too deep", "en", "panels.summary.extra", nil, "panels.summary.extra"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Lookup(tc.locale, tc.key, tc.fallback...))
		})
	}
}

func TestCatalog_Match(t *testing.T) {
	c := loadCatalog(t)

	assert.Equal(t, "fr", c.Match("fr"))
	assert.Equal(t, "fr", c.Match("fr-CA"))
	assert.Equal(t, "fr", c.Match("", "fr-FR,fr;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", c.Match("de-DE"), "unsupported falls back to default")
	assert.Equal(t, "en", c.Match())
	assert.Equal(t, "fr", c.Match("fr", "en"), "first candidate wins")
}

func TestFormatCurrency(t *testing.T) {
	got, err := FormatCurrency("en", "USD", 1234.5)
	require.NoError(t, err)
	assert.Equal(t, "$1,234.50", got)

	got, err = FormatCurrency("fr", "EUR", 1234.5)
	require.NoError(t, err)
	assert.Contains(t, got, "234,50")
	assert.Contains(t, got, "€")

	_, err = FormatCurrency("en", "XYZ", 1)
	assert.Error(t, err)

	assert.True(t, SupportsCurrency("gbp"))
	assert.False(t, SupportsCurrency("JPY"))
}

type sample struct {
	Name  string  `json:"name" validate:"required"`
	Hours float64 `json:"hours" validate:"gte=0,lte=24"`
}

func TestValidator_Struct(t *testing.T) {
	v, err := NewValidator("en")
	require.NoError(t, err)

	assert.NoError(t, v.Struct("en", sample{Name: "ok", Hours: 8}))

	err = v.Struct("en", sample{Hours: 30})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "hours")
	assert.Contains(t, verr.Fields["name"], "required")

	err = v.Struct("fr", sample{})
	require.True(t, errors.As(err, &verr))
	assert.NotContains(t, verr.Fields["name"], "required", "french message")

	err = v.Struct("de", sample{})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["name"], "required", "unknown locale uses fallback")
}
