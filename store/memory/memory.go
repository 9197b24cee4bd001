// Package memory provides an in-memory expenses.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/warp/breakeven-engine/expenses"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	fixed       map[expenses.Owner]map[string]expenses.FixedCost
	equipment   map[expenses.Owner]map[string]expenses.Equipment
	settings    map[expenses.Owner]expenses.BillableSettings
	preferences map[expenses.Owner]expenses.Preferences
	now         func() time.Time
}

var _ expenses.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		fixed:       make(map[expenses.Owner]map[string]expenses.FixedCost),
		equipment:   make(map[expenses.Owner]map[string]expenses.Equipment),
		settings:    make(map[expenses.Owner]expenses.BillableSettings),
		preferences: make(map[expenses.Owner]expenses.Preferences),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error { return nil }

// =============================================================================
// FIXED COSTS
// =============================================================================

func (s *Store) ListFixedCosts(_ context.Context, owner expenses.Owner) ([]expenses.FixedCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]expenses.FixedCost, 0, len(s.fixed[owner]))
	for _, c := range s.fixed[owner] {
		result = append(result, c)
	}
	expenses.SortFixedCosts(result)
	return result, nil
}

func (s *Store) GetFixedCost(_ context.Context, owner expenses.Owner, id string) (expenses.FixedCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.fixed[owner][id]
	if !ok {
		return expenses.FixedCost{}, expenses.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateFixedCost(_ context.Context, c expenses.FixedCost) (expenses.FixedCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = expenses.NewID()
	}
	byID := s.fixed[c.Owner]
	if byID == nil {
		byID = make(map[string]expenses.FixedCost)
		s.fixed[c.Owner] = byID
	}
	c.Rank = nextRank(byID, func(c expenses.FixedCost) int { return c.Rank })
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	byID[c.ID] = c
	return c, nil
}

func (s *Store) UpdateFixedCost(_ context.Context, c expenses.FixedCost) (expenses.FixedCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.fixed[c.Owner][c.ID]
	if !ok {
		return expenses.FixedCost{}, expenses.ErrNotFound
	}
	c.Rank = existing.Rank
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	s.fixed[c.Owner][c.ID] = c
	return c, nil
}

func (s *Store) DeleteFixedCost(_ context.Context, owner expenses.Owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fixed[owner][id]; !ok {
		return expenses.ErrNotFound
	}
	delete(s.fixed[owner], id)
	return nil
}

func (s *Store) ReorderFixedCosts(_ context.Context, owner expenses.Owner, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.fixed[owner]
	ranks, err := expenses.CheckOrder(keys(byID), ids)
	if err != nil {
		return err
	}
	for id, rank := range ranks {
		c := byID[id]
		c.Rank = rank
		byID[id] = c
	}
	return nil
}

// =============================================================================
// EQUIPMENT
// =============================================================================

func (s *Store) ListEquipment(_ context.Context, owner expenses.Owner) ([]expenses.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]expenses.Equipment, 0, len(s.equipment[owner]))
	for _, e := range s.equipment[owner] {
		result = append(result, e)
	}
	expenses.SortEquipment(result)
	return result, nil
}

func (s *Store) GetEquipment(_ context.Context, owner expenses.Owner, id string) (expenses.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.equipment[owner][id]
	if !ok {
		return expenses.Equipment{}, expenses.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEquipment(_ context.Context, e expenses.Equipment) (expenses.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = expenses.NewID()
	}
	byID := s.equipment[e.Owner]
	if byID == nil {
		byID = make(map[string]expenses.Equipment)
		s.equipment[e.Owner] = byID
	}
	e.Rank = nextRank(byID, func(e expenses.Equipment) int { return e.Rank })
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	byID[e.ID] = e
	return e, nil
}

func (s *Store) UpdateEquipment(_ context.Context, e expenses.Equipment) (expenses.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.equipment[e.Owner][e.ID]
	if !ok {
		return expenses.Equipment{}, expenses.ErrNotFound
	}
	e.Rank = existing.Rank
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now()
	s.equipment[e.Owner][e.ID] = e
	return e, nil
}

func (s *Store) DeleteEquipment(_ context.Context, owner expenses.Owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.equipment[owner][id]; !ok {
		return expenses.ErrNotFound
	}
	delete(s.equipment[owner], id)
	return nil
}

func (s *Store) ReorderEquipment(_ context.Context, owner expenses.Owner, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.equipment[owner]
	ranks, err := expenses.CheckOrder(keys(byID), ids)
	if err != nil {
		return err
	}
	for id, rank := range ranks {
		e := byID[id]
		e.Rank = rank
		byID[id] = e
	}
	return nil
}

// =============================================================================
// SETTINGS & PREFERENCES
// =============================================================================

func (s *Store) GetBillableSettings(_ context.Context, owner expenses.Owner) (expenses.BillableSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if settings, ok := s.settings[owner]; ok {
		return settings, nil
	}
	return expenses.DefaultBillableSettings(owner), nil
}

func (s *Store) SaveBillableSettings(_ context.Context, settings expenses.BillableSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = s.now()
	s.settings[settings.Owner] = settings
	return nil
}

func (s *Store) GetPreferences(_ context.Context, owner expenses.Owner) (expenses.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.preferences[owner]; ok {
		return p.Clone(), nil
	}
	return expenses.DefaultPreferences(owner), nil
}

func (s *Store) SavePreferences(_ context.Context, p expenses.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = p.Clone()
	p.UpdatedAt = s.now()
	s.preferences[p.Owner] = p
	return nil
}

func (s *Store) Reset(_ context.Context, owner expenses.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fixed, owner)
	delete(s.equipment, owner)
	delete(s.settings, owner)
	delete(s.preferences, owner)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func nextRank[V any](m map[string]V, rank func(V) int) int {
	next := 0
	for _, v := range m {
		if r := rank(v); r >= next {
			next = r + 1
		}
	}
	return next
}
