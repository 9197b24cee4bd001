package api

import (
	"errors"
	"net/http"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/broadcast"
	"github.com/warp/breakeven-engine/debounce"
	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/i18n"
	"github.com/warp/breakeven-engine/logging"
)

// =============================================================================
// BILLABLE SETTINGS
// =============================================================================

// GetBillable returns the stored settings with their metrics and break-even.
// Zero billable hours or an overflowing rate is not an error here: metrics
// are still shown and the break-even is replaced by a warning.
func (h *Handler) GetBillable(w http.ResponseWriter, r *http.Request) {
	snap, q, err := h.loadQuote(r.Context(), ownerFrom(r.Context()))
	if _, ok := calculationCode(err); err != nil && !ok {
		h.writeStoreError(w, r, err)
		return
	}

	dto := h.billableDTO(r, q, err)
	dto.Saved = !snap.Settings.UpdatedAt.IsZero()
	dto.UpdatedAt = formatTime(snap.Settings.UpdatedAt)
	writeJSON(w, http.StatusOK, dto)
}

// PutBillable persists settings immediately. A pending preview for the same
// owner is discarded so it cannot overwrite this write later.
func (h *Handler) PutBillable(w http.ResponseWriter, r *http.Request) {
	var req BillableRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	owner := ownerFrom(ctx)
	settings := req.toDomain(owner)

	h.writer.Cancel(owner)
	if err := h.Store.SaveBillableSettings(ctx, settings); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.republish(ctx, owner)

	snap, err := expenses.LoadSnapshot(ctx, h.Store, owner)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	q, qerr := h.quoteFor(snap)
	dto := h.billableDTO(r, q, qerr)
	dto.Saved = true
	dto.UpdatedAt = formatTime(snap.Settings.UpdatedAt)
	writeJSON(w, http.StatusOK, dto)
}

// PreviewBillable recomputes from the submitted settings right away and
// schedules them to be persisted once the owner stops editing.
func (h *Handler) PreviewBillable(w http.ResponseWriter, r *http.Request) {
	var req BillableRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	owner := ownerFrom(ctx)
	settings := req.toDomain(owner)

	snap, err := expenses.LoadSnapshot(ctx, h.Store, owner)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	snap.Settings = settings
	q, qerr := h.quoteFor(snap)

	if err := h.writer.Schedule(owner, settings); err != nil {
		if errors.Is(err, debounce.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "Server is shutting down", err)
			return
		}
		h.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, h.billableDTO(r, q, qerr))
}

// billableDTO renders a quote in the request's locale and currency.
func (h *Handler) billableDTO(r *http.Request, q billing.Quote, qerr error) BillableDTO {
	dto := BillableDTO{
		Schedule:             q.Schedule,
		Compensation:         q.Compensation,
		OtherMonthlyExpenses: billing.RoundCents(q.OtherMonthlyExpenses),
		Metrics:              q.Metrics,
		BreakEven:            q.BreakEven,
	}
	if code, ok := calculationCode(qerr); ok {
		dto.Warning = &ErrorResponse{
			Error: h.Catalog.Lookup(localeFrom(r.Context()), "errors."+code, qerr.Error()),
			Code:  code,
		}
	}
	if q.BreakEven != nil {
		dto.Formatted = h.formatRates(r, *q.BreakEven)
	}
	return dto
}

func (h *Handler) formatRates(r *http.Request, be billing.BreakEvenResult) *FormattedRatesDTO {
	locale := localeFrom(r.Context())
	currency := h.displayCurrency(r.Context())

	format := func(v float64) string {
		s, err := i18n.FormatCurrency(locale, currency, v)
		if err != nil {
			h.log.Debug("format currency failed", logging.FieldError, err)
			return ""
		}
		return s
	}
	return &FormattedRatesDTO{
		Currency:            currency,
		BreakEvenYearlyCost: format(be.BreakEvenYearlyCost),
		HourlyRate:          format(be.HourlyRate),
		DayRate:             format(be.DayRate),
		WeekRate:            format(be.WeekRate),
		MonthlyRate:         format(be.MonthlyRate),
	}
}

// =============================================================================
// BREAK-EVEN
// =============================================================================

// GetBreakEven prices the owner's stored settings and costs.
func (h *Handler) GetBreakEven(w http.ResponseWriter, r *http.Request) {
	_, q, err := h.loadQuote(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		if code, ok := calculationCode(err); ok {
			h.writeCalculationError(w, r, code, q.Metrics)
			return
		}
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// GetHourlyCost returns the last published hourly cost of the owner.
func (h *Handler) GetHourlyCost(w http.ResponseWriter, r *http.Request) {
	if h.hourlyCosts == nil {
		h.writeCodedError(w, r, http.StatusNotFound, CodeNotFound, nil)
		return
	}
	hc, err := h.hourlyCosts.Get(r.Context(), string(ownerFrom(r.Context())))
	if err != nil {
		if errors.Is(err, broadcast.ErrNotPublished) {
			h.writeCodedError(w, r, http.StatusNotFound, CodeNotFound, nil)
			return
		}
		h.log.ErrorContext(r.Context(), "read hourly cost", logging.FieldError, err)
		h.writeCodedError(w, r, http.StatusBadGateway, CodeInternal, nil)
		return
	}
	writeJSON(w, http.StatusOK, hc)
}

// calculationCode maps a break-even domain error to its response code.
func calculationCode(err error) (string, bool) {
	switch {
	case billing.IsZeroBillableHours(err):
		return CodeZeroBillableHours, true
	case billing.IsNonFiniteResult(err):
		return CodeResultOutOfRange, true
	}
	return "", false
}

func (h *Handler) writeCalculationError(w http.ResponseWriter, r *http.Request, code string, m billing.BillableMetricsResult) {
	h.writeCodedError(w, r, http.StatusUnprocessableEntity, code, map[string]any{
		"metrics": m,
	})
}

// =============================================================================
// STATELESS CALCULATORS
// =============================================================================

// CalculateMetrics derives billable metrics from a schedule.
func (h *Handler) CalculateMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if !h.decode(w, r, &req) {
		return
	}
	in := req.toInput()
	writeJSON(w, http.StatusOK, map[string]any{
		"schedule": in.Resolve(),
		"metrics":  h.Calc.Metrics(in),
	})
}

// CalculateBreakEven prices a schedule and compensation without touching
// stored data. An explicit billable_hours_per_year overrides the one derived
// from the schedule.
func (h *Handler) CalculateBreakEven(w http.ResponseWriter, r *http.Request) {
	var req BreakEvenRequest
	if !h.decode(w, r, &req) {
		return
	}

	schedule := req.Schedule.toInput()
	metrics := h.Calc.Metrics(schedule)
	if req.BillableHoursPerYear != nil {
		metrics.BillableHoursPerYear = *req.BillableHoursPerYear
	}
	in := billing.NewBreakEvenInput(schedule.Resolve(), metrics, req.Compensation.toDomain(), req.TotalOtherMonthlyExpenses)

	res, err := h.Calc.BreakEven(in)
	if err != nil {
		if code, ok := calculationCode(err); ok {
			h.writeCalculationError(w, r, code, metrics)
			return
		}
		writeError(w, http.StatusInternalServerError, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"input":  in,
		"result": res,
	})
}
