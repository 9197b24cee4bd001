/*
scenarios_test.go - Tests for demo scenarios, preferences and translations

PURPOSE:
	Tests that each scenario sets up the expected state and that the
	display-state and translation endpoints behave:
	- Costs are created in order
	- Billable settings are saved
	- The hourly cost is published (or marked unavailable)
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/breakeven-engine/expenses"
)

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_List(t *testing.T) {
	s := newTestServer(t)

	list := decodeBody[[]ScenarioDTO](t, s.do(http.MethodGet, "/api/scenarios", nil))
	require.Len(t, list, len(scenarios))
	ids := make([]string, len(list))
	for i, sc := range list {
		ids[i] = sc.ID
	}
	assert.Equal(t, []string{"freelance-designer", "small-studio", "overbooked"}, ids)
}

func TestScenario_SmallStudio(t *testing.T) {
	// GIVEN: An owner with an unrelated cost
	s := newTestServer(t)
	s.createFixedCost("Leftover", "1", "monthly")

	// WHEN: Loading the small studio scenario
	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "small-studio"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The previous data is replaced
	fixedList := decodeBody[fixedCostList](t, s.do(http.MethodGet, "/api/fixed-costs", nil))
	require.Len(t, fixedList.Items, 4)
	assert.Equal(t, "Studio rent", fixedList.Items[0].Name)
	assert.Equal(t, "Bookkeeping", fixedList.Items[3].Name)

	equipment := decodeBody[equipmentList](t, s.do(http.MethodGet, "/api/equipment", nil))
	require.Len(t, equipment.Items, 3)
	assert.True(t, equipment.Items[2].FullyDepreciated, "old printer")

	billable := decodeBody[BillableDTO](t, s.do(http.MethodGet, "/api/billable", nil))
	assert.True(t, billable.Saved)
	assert.Equal(t, 7.0, billable.Schedule.HoursPerDay)
	assert.Equal(t, 9000.0, billable.Compensation.MonthlySalary)
	require.NotNil(t, billable.BreakEven)

	// AND: It is the current scenario
	current := decodeBody[ScenarioDTO](t, s.do(http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "small-studio", current.ID)

	hc, err := s.latest.Get(context.Background(), "default")
	require.NoError(t, err)
	assert.True(t, hc.Available)
	assert.Equal(t, billable.BreakEven.HourlyRate, hc.HourlyRate)
}

func TestScenario_FreelanceDesigner(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "freelance-designer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 60 + 250 + 480/12 + 300/3 = 450 fixed; 2400/36 + 600/48 = 79.1666.. equipment
	totals := decodeBody[map[string]any](t, s.do(http.MethodGet, "/api/totals", nil))
	assert.Equal(t, "450", totals["fixed_monthly"])
	assert.Equal(t, "79.17", totals["equipment_monthly"])
}

func TestScenario_Overbooked(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "overbooked"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/breakeven", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	hc, err := s.latest.Get(context.Background(), "default")
	require.NoError(t, err)
	assert.False(t, hc.Available)
}

func TestScenario_Unknown(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null", trimNewline(rec.Body.String()))
}

func TestScenario_ResetIsPerOwner(t *testing.T) {
	s := newTestServer(t)
	acme := header{OwnerHeader, "acme"}

	for _, h := range [][]header{nil, {acme}} {
		rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "small-studio"}, h...)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(http.MethodPost, "/api/scenarios/reset", nil, acme)
	require.Equal(t, http.StatusOK, rec.Code)

	acmeCosts := decodeBody[fixedCostList](t, s.do(http.MethodGet, "/api/fixed-costs", nil, acme))
	assert.Empty(t, acmeCosts.Items)
	rec = s.do(http.MethodGet, "/api/scenarios/current", nil, acme)
	assert.Equal(t, "null", trimNewline(rec.Body.String()))

	defaultCosts := decodeBody[fixedCostList](t, s.do(http.MethodGet, "/api/fixed-costs", nil))
	assert.Len(t, defaultCosts.Items, 4)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// =============================================================================
// PREFERENCES
// =============================================================================

func TestPreferences_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	// GIVEN: Defaults for a new owner
	prefs := decodeBody[PreferencesDTO](t, s.do(http.MethodGet, "/api/preferences", nil))
	assert.Equal(t, "table", prefs.View)
	assert.Equal(t, "USD", prefs.Currency)
	assert.True(t, prefs.Panels[expenses.PanelSummary])

	// WHEN: Hiding a panel and switching view, currency and locale
	rec := s.do(http.MethodPut, "/api/preferences", map[string]any{
		"panels":   map[string]bool{expenses.PanelSummary: false},
		"view":     "cards",
		"currency": "EUR",
		"locale":   "fr",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	prefs = decodeBody[PreferencesDTO](t, rec)

	// THEN: Changes are merged with the other panels untouched
	assert.Equal(t, "cards", prefs.View)
	assert.Equal(t, "EUR", prefs.Currency)
	assert.Equal(t, "fr", prefs.Locale)
	assert.False(t, prefs.Panels[expenses.PanelSummary])
	assert.True(t, prefs.Panels[expenses.PanelEquipment])

	// AND: Cookies mirror the locale and currency
	cookies := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	assert.Equal(t, "fr", cookies[LocaleCookie])
	assert.Equal(t, "EUR", cookies[CurrencyCookie])

	// AND: Amounts are formatted in the preferred currency
	rec = s.do(http.MethodPut, "/api/billable", map[string]any{
		"compensation": map[string]any{"monthly_salary": 5000},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	billable := decodeBody[BillableDTO](t, rec)
	require.NotNil(t, billable.Formatted)
	assert.Equal(t, "EUR", billable.Formatted.Currency)

	// WHEN: Resetting
	rec = s.do(http.MethodPost, "/api/preferences/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prefs = decodeBody[PreferencesDTO](t, rec)
	assert.Equal(t, "table", prefs.View)
	assert.True(t, prefs.Panels[expenses.PanelSummary])
}

func TestPreferences_InvalidView(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPut, "/api/preferences", map[string]any{"view": "grid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrencyQueryOverridesPreference(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPut, "/api/billable", map[string]any{
		"compensation": map[string]any{"monthly_salary": 5000},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	billable := decodeBody[BillableDTO](t, s.do(http.MethodGet, "/api/billable?currency=gbp", nil))
	require.NotNil(t, billable.Formatted)
	assert.Equal(t, "GBP", billable.Formatted.Currency)
	assert.Equal(t, "£46.51", billable.Formatted.HourlyRate)
}

// =============================================================================
// I18N
// =============================================================================

func TestI18n_Messages(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/i18n/fr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decodeBody[map[string]any](t, rec)
	panels, ok := messages["panels"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Résumé", panels["summary"])

	rec = s.do(http.MethodGet, "/api/i18n/de", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	index := decodeBody[map[string]any](t, s.do(http.MethodGet, "/api/i18n", nil))
	assert.Equal(t, "en", index["default"])
}

func TestI18n_Lookup(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		path string
		want string
	}{
		{"french", "/api/i18n/lookup?key=panels.summary&lang=fr", "Résumé"},
		{"missing in french", "/api/i18n/lookup?key=errors.internal&lang=fr", "Something went wrong. Please try again."},
		{"fallback", "/api/i18n/lookup?key=nope.none&fallback=Hello", "Hello"},
		{"key itself", "/api/i18n/lookup?key=nope.none", "nope.none"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, tc.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, decodeBody[map[string]string](t, rec)["value"])
		})
	}

	rec := s.do(http.MethodGet, "/api/i18n/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
