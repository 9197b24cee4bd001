/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:

	Provides pre-built datasets that populate an owner's workspace with
	realistic costs and billable settings. Each dataset shows a different
	shape of the break-even calculation.

AVAILABLE SCENARIOS:

	freelance-designer: Solo freelancer, a few subscriptions and a laptop
	small-studio:       Two-person studio with rent and heavier equipment
	overbooked:         More time off than work days (no billable hours)

HOW SCENARIOS WORK:
 1. Reset the owner's data (other owners are untouched)
 2. Create fixed costs in display order
 3. Create equipment in display order
 4. Save billable settings
 5. Publish the resulting hourly cost

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-studio"}

ADDING NEW SCENARIOS:
 1. Add a scenario to the 'scenarios' slice with its data
 2. Nothing else: LoadScenario looks it up by ID

NOTE:

	Loading a scenario replaces the owner's data. Only use in
	development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - expenses/store.go: Reset
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/logging"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	fixed        []expenses.FixedCost
	equipment    []expenses.Equipment
	schedule     billing.WorkSchedule
	compensation billing.CompensationInput
}

func fixed(name, category, amount string, f expenses.Frequency) expenses.FixedCost {
	return expenses.FixedCost{Name: name, Category: category, Amount: decimal.RequireFromString(amount), Frequency: f}
}

func gear(name, category, cost string, months int, purchased string) expenses.Equipment {
	e := expenses.Equipment{Name: name, Category: category, Cost: decimal.RequireFromString(cost), LifespanMonths: months}
	if purchased != "" {
		e.PurchaseDate, _ = time.Parse(time.DateOnly, purchased)
	}
	return e
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "freelance-designer",
			Name:        "Freelance Designer",
			Description: "Solo freelancer with software subscriptions and a laptop",
			Category:    "solo",
		},
		fixed: []expenses.FixedCost{
			fixed("Design suite", "software", "60", expenses.FrequencyMonthly),
			fixed("Coworking desk", "office", "250", expenses.FrequencyMonthly),
			fixed("Professional insurance", "insurance", "480", expenses.FrequencyYearly),
			fixed("Accountant", "services", "300", expenses.FrequencyQuarterly),
		},
		equipment: []expenses.Equipment{
			gear("Laptop", "hardware", "2400", 36, "2025-01-15"),
			gear("Monitor", "hardware", "600", 48, "2024-06-01"),
		},
		schedule: billing.DefaultWorkSchedule(),
		compensation: billing.CompensationInput{
			MonthlySalary:     5000,
			TaxRatePercent:    25,
			MarginRatePercent: 15,
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "small-studio",
			Name:        "Small Studio",
			Description: "Two-person studio paying rent, with heavier equipment",
			Category:    "team",
		},
		fixed: []expenses.FixedCost{
			fixed("Studio rent", "office", "1800", expenses.FrequencyMonthly),
			fixed("Internet", "office", "80", expenses.FrequencyMonthly),
			fixed("Software licenses", "software", "1200", expenses.FrequencyYearly),
			fixed("Bookkeeping", "services", "450", expenses.FrequencyQuarterly),
		},
		equipment: []expenses.Equipment{
			gear("Workstations", "hardware", "6000", 48, "2024-09-01"),
			gear("Camera kit", "hardware", "3600", 60, "2023-03-10"),
			gear("Old printer", "hardware", "300", 12, "2020-01-01"),
		},
		schedule: billing.WorkSchedule{
			WorkDaysPerWeek:      5,
			HoursPerDay:          7,
			HolidayDaysPerYear:   11,
			VacationDaysPerYear:  25,
			SickLeaveDaysPerYear: 5,
		},
		compensation: billing.CompensationInput{
			MonthlySalary:     9000,
			TaxRatePercent:    30,
			FeeRatePercent:    3,
			MarginRatePercent: 20,
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "overbooked",
			Name:        "Overbooked Calendar",
			Description: "Time off exceeds work days, so no hourly rate can be computed",
			Category:    "edge-case",
		},
		fixed: []expenses.FixedCost{
			fixed("Phone plan", "office", "40", expenses.FrequencyMonthly),
		},
		schedule: billing.WorkSchedule{
			WorkDaysPerWeek:      5,
			HoursPerDay:          6,
			HolidayDaysPerYear:   200,
			VacationDaysPerYear:  200,
			SickLeaveDaysPerYear: 100,
		},
		compensation: billing.CompensationInput{MonthlySalary: 3000},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		list[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCurrentScenario returns the scenario loaded for the owner, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	id := h.currentScenario[ownerFrom(r.Context())]
	h.mu.Unlock()

	if id == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if s, ok := findScenario(id); ok {
		writeJSON(w, http.StatusOK, s.ScenarioDTO)
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: id, Name: id, Description: "Currently loaded scenario"})
}

// LoadScenario replaces the owner's data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		h.writeCodedError(w, r, http.StatusBadRequest, CodeInvalidInput, map[string]string{"scenario_id": req.ScenarioID})
		return
	}

	ctx := r.Context()
	owner := ownerFrom(ctx)
	if err := h.loadScenario(ctx, owner, s); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.log.InfoContext(ctx, "scenario loaded",
		logging.FieldOwner, string(owner),
		"scenario", s.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetData removes all of the owner's data.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(ctx)

	h.writer.Cancel(owner)
	if err := h.Store.Reset(ctx, owner); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset data", err)
		return
	}
	h.setCurrentScenario(owner, "")
	h.republish(ctx, owner)

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, owner expenses.Owner, s scenario) error {
	h.writer.Cancel(owner)
	if err := h.Store.Reset(ctx, owner); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.setCurrentScenario(owner, "")

	for _, c := range s.fixed {
		c.ID = expenses.NewID()
		c.Owner = owner
		if _, err := h.Store.CreateFixedCost(ctx, c); err != nil {
			return fmt.Errorf("create fixed cost %q: %w", c.Name, err)
		}
	}
	for _, e := range s.equipment {
		e.ID = expenses.NewID()
		e.Owner = owner
		if _, err := h.Store.CreateEquipment(ctx, e); err != nil {
			return fmt.Errorf("create equipment %q: %w", e.Name, err)
		}
	}
	settings := expenses.BillableSettings{
		Owner:        owner,
		Schedule:     s.schedule,
		Compensation: s.compensation,
	}
	if err := h.Store.SaveBillableSettings(ctx, settings); err != nil {
		return fmt.Errorf("save billable settings: %w", err)
	}

	h.setCurrentScenario(owner, s.ID)
	h.republish(ctx, owner)
	return nil
}

func (h *Handler) setCurrentScenario(owner expenses.Owner, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id == "" {
		delete(h.currentScenario, owner)
		return
	}
	h.currentScenario[owner] = id
}
