/*
handlers.go - HTTP API handlers for the break-even engine

PURPOSE:
  Exposes the expense records and the billing calculators via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  store and calculators.

ENDPOINTS:
  Fixed costs / equipment:
    GET    /api/fixed-costs             List in display order
    POST   /api/fixed-costs             Create
    GET    /api/fixed-costs/{id}        Get
    PUT    /api/fixed-costs/{id}        Update
    DELETE /api/fixed-costs/{id}        Delete
    POST   /api/fixed-costs/reorder     Drag-and-drop ordering
    (same routes under /api/equipment)

  Billable time:
    GET    /api/billable                Settings + metrics + break-even
    PUT    /api/billable                Persist now
    POST   /api/billable/preview        Recompute now, persist after a quiet period
    GET    /api/breakeven               Break-even from stored data
    GET    /api/hourly-cost             Last published hourly cost

  Stateless calculators:
    POST   /api/calculate/metrics
    POST   /api/calculate/breakeven

  Preferences / i18n / scenarios: see preferences.go, i18n.go, scenarios.go

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Persistence (SQLite or memory)
  - Calc: Memoizing calculator
  - Catalog/Validator: Translations
  - Sink: Hourly cost broadcast
  - writer: Debounced billable-settings persistence

REQUEST CONTEXT:
  Every request carries an owner (X-Owner-ID header, "default" if absent),
  a locale and a currency. See middleware.go.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 422: No billable hours (break-even undefined)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/broadcast"
	"github.com/warp/breakeven-engine/debounce"
	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/i18n"
	"github.com/warp/breakeven-engine/logging"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options configures a Handler. Store, Calc, Catalog and Validator are
// required; the rest have usable zero values.
type Options struct {
	Store     expenses.Store
	Calc      *billing.Calculator
	Catalog   *i18n.Catalog
	Validator *i18n.Validator

	// Sink receives the hourly cost after every persisted change.
	Sink broadcast.Sink
	// HourlyCosts serves GET /api/hourly-cost.
	HourlyCosts broadcast.Reader

	Logger          *logging.Logger
	PersistDelay    time.Duration
	DefaultCurrency string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     expenses.Store
	Calc      *billing.Calculator
	Catalog   *i18n.Catalog
	Validator *i18n.Validator

	sink            broadcast.Sink
	hourlyCosts     broadcast.Reader
	log             *logging.Logger
	defaultCurrency string

	writer *debounce.Debouncer[expenses.Owner, expenses.BillableSettings]
	flight singleflight.Group

	// Track currently loaded scenario per owner
	mu              sync.Mutex
	currentScenario map[expenses.Owner]string
}

// NewHandler creates a new handler.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		Store:           opts.Store,
		Calc:            opts.Calc,
		Catalog:         opts.Catalog,
		Validator:       opts.Validator,
		sink:            opts.Sink,
		hourlyCosts:     opts.HourlyCosts,
		log:             opts.Logger,
		defaultCurrency: opts.DefaultCurrency,
		currentScenario: make(map[expenses.Owner]string),
	}
	if h.sink == nil {
		h.sink = broadcast.Nop{}
	}
	if h.log == nil {
		h.log = logging.Discard()
	}
	h.log = h.log.WithComponent(logging.ComponentHTTP)
	if h.defaultCurrency == "" {
		h.defaultCurrency = "USD"
	}

	h.writer = debounce.New(opts.PersistDelay, h.persistSettings, func(owner expenses.Owner, err error) {
		h.log.Error("debounced save failed",
			logging.FieldOwner, string(owner),
			logging.FieldError, err)
	})
	return h
}

// FlushPending writes every debounced settings snapshot now.
func (h *Handler) FlushPending(ctx context.Context) error {
	return h.writer.Flush(ctx)
}

// PendingWrites reports how many owners have unsaved settings.
func (h *Handler) PendingWrites() int {
	return h.writer.Pending()
}

// Close flushes pending writes and stops accepting previews.
func (h *Handler) Close(ctx context.Context) error {
	return h.writer.Close(ctx)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"pending_writes": h.PendingWrites(),
	})
}

// =============================================================================
// RECOMPUTATION
// =============================================================================

// persistSettings is the debounced writer's flush function.
func (h *Handler) persistSettings(ctx context.Context, owner expenses.Owner, settings expenses.BillableSettings) error {
	if err := h.Store.SaveBillableSettings(ctx, settings); err != nil {
		return err
	}
	h.log.Debug("billable settings saved", logging.FieldOwner, string(owner))
	h.republish(ctx, owner)
	return nil
}

// quoteFor prices a snapshot.
func (h *Handler) quoteFor(snap expenses.Snapshot) (billing.Quote, error) {
	return h.Calc.Quote(snap.Settings.Schedule.Input(), snap.Settings.Compensation, snap.OtherMonthly())
}

// loadQuote reads the owner's stored data and prices it. Concurrent reads
// for the same owner share one computation, so it must not be used right
// after a write: a read already in flight would hand back pre-write data.
func (h *Handler) loadQuote(ctx context.Context, owner expenses.Owner) (expenses.Snapshot, billing.Quote, error) {
	type result struct {
		snap  expenses.Snapshot
		quote billing.Quote
		err   error
	}
	// the shared read outlives the request that started it
	shared := context.WithoutCancel(ctx)
	v, err, _ := h.flight.Do(string(owner), func() (any, error) {
		snap, err := expenses.LoadSnapshot(shared, h.Store, owner)
		if err != nil {
			return nil, err
		}
		q, qerr := h.quoteFor(snap)
		return result{snap: snap, quote: q, err: qerr}, nil
	})
	if err != nil {
		return expenses.Snapshot{}, billing.Quote{}, err
	}
	res := v.(result)
	return res.snap, res.quote, res.err
}

// republish recomputes the owner's hourly cost from stored data and sends
// it to the sink. Failures are logged, never returned.
//
// It runs after every write, so it reads the store itself instead of joining
// a shared read that may have started before the write. Later reads are
// detached from any such flight too.
func (h *Handler) republish(ctx context.Context, owner expenses.Owner) {
	h.flight.Forget(string(owner))

	var q billing.Quote
	snap, err := expenses.LoadSnapshot(ctx, h.Store, owner)
	if err == nil {
		q, err = h.quoteFor(snap)
	}
	if _, ok := calculationCode(err); err != nil && !ok {
		h.log.Warn("recompute for broadcast failed",
			logging.FieldOwner, string(owner),
			logging.FieldError, err)
		return
	}

	currency := h.defaultCurrency
	if prefs, err := h.Store.GetPreferences(ctx, owner); err == nil && prefs.Currency != "" {
		currency = prefs.Currency
	}

	if err := h.sink.PublishHourlyCost(ctx, hourlyCostFrom(owner, q, currency)); err != nil {
		h.log.Warn("publish hourly cost failed",
			logging.FieldOwner, string(owner),
			logging.FieldError, err)
	}
}

func hourlyCostFrom(owner expenses.Owner, q billing.Quote, currency string) broadcast.HourlyCost {
	hc := broadcast.HourlyCost{
		Owner:                string(owner),
		BillableHoursPerYear: q.Metrics.BillableHoursPerYear,
		Currency:             currency,
		UpdatedAt:            time.Now().UTC(),
	}
	if q.BreakEven != nil {
		hc.Available = true
		hc.HourlyRate = q.BreakEven.HourlyRate
		hc.BreakEvenYearlyCost = q.BreakEven.BreakEvenYearlyCost
	}
	return hc
}

// =============================================================================
// HELPERS
// =============================================================================

// writeJSON encodes before writing the status so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "Failed to encode response", Code: CodeInternal, Details: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeCodedError writes a translated error with a machine-readable code.
func (h *Handler) writeCodedError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	writeJSON(w, status, ErrorResponse{
		Error:   h.Catalog.Lookup(localeFrom(r.Context()), "errors."+code, code),
		Code:    code,
		Details: details,
	})
}

// decode reads and validates a JSON body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.Validator.Struct(localeFrom(r.Context()), dst); err != nil {
		var verr *i18n.ValidationError
		if errors.As(err, &verr) {
			h.writeCodedError(w, r, http.StatusBadRequest, CodeInvalidInput, verr.Fields)
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// writeStoreError maps store errors to HTTP statuses.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, expenses.ErrNotFound):
		h.writeCodedError(w, r, http.StatusNotFound, CodeNotFound, nil)
	case errors.Is(err, expenses.ErrInvalidOrder):
		h.writeCodedError(w, r, http.StatusBadRequest, CodeInvalidOrder, nil)
	case errors.Is(err, expenses.ErrInvalid):
		h.writeCodedError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "store failure", logging.FieldError, err)
		h.writeCodedError(w, r, http.StatusInternalServerError, CodeInternal, nil)
	}
}
