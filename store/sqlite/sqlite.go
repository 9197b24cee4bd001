/*
Package sqlite provides a SQLite-backed implementation of expenses.Store.

PURPOSE:
  Persists fixed costs, equipment, billable settings and preferences so a
  workspace survives restarts. The debounced billable-settings writer and
  every CRUD handler end up here.

KEY TABLES:
  fixed_costs:       Recurring costs, ordered per owner by position
  equipment:         Amortized assets, ordered per owner by position
  billable_settings: One row per owner (work schedule + compensation)
  preferences:       One row per owner (panels as JSON, view, currency, locale)

MONEY:
  Amounts are stored as decimal TEXT so no precision is lost between the
  API and the database. Billable settings are plain REAL because the
  billing engine works in float64.

SCHEMA:
  Managed by golang-migrate from the embedded migrations/ directory.
  Migrations run on New().

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The pool is limited to one
  connection so ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/breakeven.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - expenses/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/breakeven-engine/expenses"
)

// Store implements expenses.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ expenses.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// FIXED COSTS
// =============================================================================

const fixedCostColumns = "id, owner, name, category, amount, frequency, position, created_at, updated_at"

// ListFixedCosts returns the owner's fixed costs in display order.
func (s *Store) ListFixedCosts(ctx context.Context, owner expenses.Owner) ([]expenses.FixedCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fixedCostColumns+" FROM fixed_costs WHERE owner = ? ORDER BY position, name",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed costs: %w", err)
	}
	defer rows.Close()

	costs := []expenses.FixedCost{}
	for rows.Next() {
		c, err := scanFixedCost(rows)
		if err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// GetFixedCost retrieves a fixed cost by ID.
func (s *Store) GetFixedCost(ctx context.Context, owner expenses.Owner, id string) (expenses.FixedCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+fixedCostColumns+" FROM fixed_costs WHERE owner = ? AND id = ?",
		owner, id,
	)
	c, err := scanFixedCost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return expenses.FixedCost{}, expenses.ErrNotFound
	}
	return c, err
}

// CreateFixedCost inserts a fixed cost at the end of the owner's list.
func (s *Store) CreateFixedCost(ctx context.Context, c expenses.FixedCost) (expenses.FixedCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = expenses.NewID()
	}
	rank, err := s.nextPosition(ctx, "fixed_costs", c.Owner)
	if err != nil {
		return expenses.FixedCost{}, err
	}
	c.Rank = rank
	c.CreatedAt = s.now().Truncate(time.Second)
	c.UpdatedAt = c.CreatedAt

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fixed_costs (`+fixedCostColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Owner, c.Name, c.Category, c.Amount.String(), c.Frequency, c.Rank,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return expenses.FixedCost{}, fmt.Errorf("failed to insert fixed cost: %w", err)
	}
	return c, nil
}

// UpdateFixedCost overwrites the editable fields of an existing fixed cost.
func (s *Store) UpdateFixedCost(ctx context.Context, c expenses.FixedCost) (expenses.FixedCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = s.now().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		UPDATE fixed_costs
		SET name = ?, category = ?, amount = ?, frequency = ?, updated_at = ?
		WHERE owner = ? AND id = ?`,
		c.Name, c.Category, c.Amount.String(), c.Frequency, formatTime(c.UpdatedAt),
		c.Owner, c.ID,
	)
	if err := affectedOne(res, err); err != nil {
		return expenses.FixedCost{}, err
	}

	var createdAt string
	err = s.db.QueryRowContext(ctx,
		"SELECT position, created_at FROM fixed_costs WHERE id = ?", c.ID,
	).Scan(&c.Rank, &createdAt)
	if err != nil {
		return expenses.FixedCost{}, err
	}
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

// DeleteFixedCost removes a fixed cost.
func (s *Store) DeleteFixedCost(ctx context.Context, owner expenses.Owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM fixed_costs WHERE owner = ? AND id = ?", owner, id)
	return affectedOne(res, err)
}

// ReorderFixedCosts rewrites the positions of every fixed cost of the owner.
func (s *Store) ReorderFixedCosts(ctx context.Context, owner expenses.Owner, ids []string) error {
	return s.reorder(ctx, "fixed_costs", owner, ids)
}

func scanFixedCost(row interface{ Scan(...any) error }) (expenses.FixedCost, error) {
	var c expenses.FixedCost
	var amount, frequency, createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.Owner, &c.Name, &c.Category, &amount, &frequency, &c.Rank, &createdAt, &updatedAt); err != nil {
		return c, err
	}
	c.Amount = parseDecimal(amount)
	c.Frequency = expenses.Frequency(frequency)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// =============================================================================
// EQUIPMENT
// =============================================================================

const equipmentColumns = "id, owner, name, category, cost, purchase_date, lifespan_months, position, created_at, updated_at"

// ListEquipment returns the owner's equipment in display order.
func (s *Store) ListEquipment(ctx context.Context, owner expenses.Owner) ([]expenses.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipment WHERE owner = ? ORDER BY position, name",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	items := []expenses.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// GetEquipment retrieves a piece of equipment by ID.
func (s *Store) GetEquipment(ctx context.Context, owner expenses.Owner, id string) (expenses.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+equipmentColumns+" FROM equipment WHERE owner = ? AND id = ?",
		owner, id,
	)
	e, err := scanEquipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return expenses.Equipment{}, expenses.ErrNotFound
	}
	return e, err
}

// CreateEquipment inserts equipment at the end of the owner's list.
func (s *Store) CreateEquipment(ctx context.Context, e expenses.Equipment) (expenses.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = expenses.NewID()
	}
	rank, err := s.nextPosition(ctx, "equipment", e.Owner)
	if err != nil {
		return expenses.Equipment{}, err
	}
	e.Rank = rank
	e.CreatedAt = s.now().Truncate(time.Second)
	e.UpdatedAt = e.CreatedAt

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO equipment (`+equipmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Owner, e.Name, e.Category, e.Cost.String(), nullDate(e.PurchaseDate),
		e.LifespanMonths, e.Rank, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return expenses.Equipment{}, fmt.Errorf("failed to insert equipment: %w", err)
	}
	return e, nil
}

// UpdateEquipment overwrites the editable fields of existing equipment.
func (s *Store) UpdateEquipment(ctx context.Context, e expenses.Equipment) (expenses.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.UpdatedAt = s.now().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		UPDATE equipment
		SET name = ?, category = ?, cost = ?, purchase_date = ?, lifespan_months = ?, updated_at = ?
		WHERE owner = ? AND id = ?`,
		e.Name, e.Category, e.Cost.String(), nullDate(e.PurchaseDate), e.LifespanMonths,
		formatTime(e.UpdatedAt), e.Owner, e.ID,
	)
	if err := affectedOne(res, err); err != nil {
		return expenses.Equipment{}, err
	}

	var createdAt string
	err = s.db.QueryRowContext(ctx,
		"SELECT position, created_at FROM equipment WHERE id = ?", e.ID,
	).Scan(&e.Rank, &createdAt)
	if err != nil {
		return expenses.Equipment{}, err
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// DeleteEquipment removes a piece of equipment.
func (s *Store) DeleteEquipment(ctx context.Context, owner expenses.Owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM equipment WHERE owner = ? AND id = ?", owner, id)
	return affectedOne(res, err)
}

// ReorderEquipment rewrites the positions of every piece of equipment.
func (s *Store) ReorderEquipment(ctx context.Context, owner expenses.Owner, ids []string) error {
	return s.reorder(ctx, "equipment", owner, ids)
}

func scanEquipment(row interface{ Scan(...any) error }) (expenses.Equipment, error) {
	var e expenses.Equipment
	var cost, createdAt, updatedAt string
	var purchase sql.NullString
	if err := row.Scan(&e.ID, &e.Owner, &e.Name, &e.Category, &cost, &purchase,
		&e.LifespanMonths, &e.Rank, &createdAt, &updatedAt); err != nil {
		return e, err
	}
	e.Cost = parseDecimal(cost)
	if purchase.Valid {
		e.PurchaseDate, _ = time.Parse(time.DateOnly, purchase.String)
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

// =============================================================================
// ORDERING
// =============================================================================

// nextPosition returns the position after the owner's last row. Callers hold
// the write lock.
func (s *Store) nextPosition(ctx context.Context, table string, owner expenses.Owner) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM "+table+" WHERE owner = ?", owner,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to read position: %w", err)
	}
	return next, nil
}

func (s *Store) reorder(ctx context.Context, table string, owner expenses.Owner, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM "+table+" WHERE owner = ?", owner)
	if err != nil {
		return err
	}
	var existing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	ranks, err := expenses.CheckOrder(existing, ids)
	if err != nil {
		return err
	}
	for id, rank := range ranks {
		if err := setPosition(ctx, tx, table, id, rank); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func setPosition(ctx context.Context, db execer, table, id string, position int) error {
	_, err := db.ExecContext(ctx, "UPDATE "+table+" SET position = ? WHERE id = ?", position, id)
	return err
}

// =============================================================================
// BILLABLE SETTINGS
// =============================================================================

// GetBillableSettings returns the saved settings, or the defaults.
func (s *Store) GetBillableSettings(ctx context.Context, owner expenses.Owner) (expenses.BillableSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := expenses.BillableSettings{Owner: owner}
	sch := &settings.Schedule
	comp := &settings.Compensation
	var updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT work_days_per_week, hours_per_day, holiday_days_per_year,
		       vacation_days_per_year, sick_leave_days_per_year,
		       monthly_salary, tax_rate_percent, fee_rate_percent, margin_rate_percent,
		       updated_at
		FROM billable_settings WHERE owner = ?`, owner,
	).Scan(&sch.WorkDaysPerWeek, &sch.HoursPerDay, &sch.HolidayDaysPerYear,
		&sch.VacationDaysPerYear, &sch.SickLeaveDaysPerYear,
		&comp.MonthlySalary, &comp.TaxRatePercent, &comp.FeeRatePercent, &comp.MarginRatePercent,
		&updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return expenses.DefaultBillableSettings(owner), nil
	}
	if err != nil {
		return expenses.BillableSettings{}, fmt.Errorf("failed to read billable settings: %w", err)
	}
	settings.UpdatedAt = parseTime(updatedAt)
	return settings, nil
}

// SaveBillableSettings upserts the owner's settings.
func (s *Store) SaveBillableSettings(ctx context.Context, settings expenses.BillableSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch := settings.Schedule
	comp := settings.Compensation
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO billable_settings (
			owner, work_days_per_week, hours_per_day, holiday_days_per_year,
			vacation_days_per_year, sick_leave_days_per_year,
			monthly_salary, tax_rate_percent, fee_rate_percent, margin_rate_percent, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			work_days_per_week = excluded.work_days_per_week,
			hours_per_day = excluded.hours_per_day,
			holiday_days_per_year = excluded.holiday_days_per_year,
			vacation_days_per_year = excluded.vacation_days_per_year,
			sick_leave_days_per_year = excluded.sick_leave_days_per_year,
			monthly_salary = excluded.monthly_salary,
			tax_rate_percent = excluded.tax_rate_percent,
			fee_rate_percent = excluded.fee_rate_percent,
			margin_rate_percent = excluded.margin_rate_percent,
			updated_at = excluded.updated_at`,
		settings.Owner, sch.WorkDaysPerWeek, sch.HoursPerDay, sch.HolidayDaysPerYear,
		sch.VacationDaysPerYear, sch.SickLeaveDaysPerYear,
		comp.MonthlySalary, comp.TaxRatePercent, comp.FeeRatePercent, comp.MarginRatePercent,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save billable settings: %w", err)
	}
	return nil
}

// =============================================================================
// PREFERENCES
// =============================================================================

// GetPreferences returns the saved preferences, or the defaults.
func (s *Store) GetPreferences(ctx context.Context, owner expenses.Owner) (expenses.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := expenses.Preferences{Owner: owner}
	var panelsJSON, view, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT panels_json, view, currency, locale, updated_at FROM preferences WHERE owner = ?",
		owner,
	).Scan(&panelsJSON, &view, &p.Currency, &p.Locale, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return expenses.DefaultPreferences(owner), nil
	}
	if err != nil {
		return expenses.Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(panelsJSON), &p.Panels); err != nil {
		return expenses.Preferences{}, fmt.Errorf("failed to decode panels: %w", err)
	}
	p.View = expenses.View(view)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// SavePreferences upserts the owner's preferences.
func (s *Store) SavePreferences(ctx context.Context, p expenses.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	panelsJSON, err := json.Marshal(p.Panels)
	if err != nil {
		return fmt.Errorf("failed to encode panels: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (owner, panels_json, view, currency, locale, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			panels_json = excluded.panels_json,
			view = excluded.view,
			currency = excluded.currency,
			locale = excluded.locale,
			updated_at = excluded.updated_at`,
		p.Owner, string(panelsJSON), p.View, p.Currency, p.Locale, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data of one owner (for demo scenarios).
func (s *Store) Reset(ctx context.Context, owner expenses.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []string{"fixed_costs", "equipment", "billable_settings", "preferences"}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE owner = ?", owner); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return expenses.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.DateOnly), Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
