package entitlement

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store and UsageCounter.
// It backs tests and single-process deployments without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	emails  map[string]uuid.UUID
	units   map[unitKey][]time.Time
}

type unitKey struct {
	userID uuid.UUID
	unit   UnitType
}

var (
	_ Store        = (*MemoryStore)(nil)
	_ UsageCounter        = (*MemoryStore)(nil)
	_ LimitedUsageCounter = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]Record),
		emails:  make(map[string]uuid.UUID),
		units:   make(map[unitKey][]time.Time),
	}
}

func (m *MemoryStore) GetSubscription(ctx context.Context, userID uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	rec = copyRecord(rec)
	return &rec, nil
}

func (m *MemoryStore) UpdateSubscription(ctx context.Context, userID uuid.UUID, patch Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec, ok := m.records[userID]
	if !ok {
		rec = Record{
			UserID:    userID,
			PlanType:  TierFree.String(),
			Status:    string(StatusActive),
			CreatedAt: now,
		}
	}

	if patch.Tier != nil {
		rec.PlanType = patch.Tier.String()
	}
	if patch.Status != nil {
		rec.Status = string(*patch.Status)
	}
	if patch.IsAdmin != nil {
		rec.IsAdmin = *patch.IsAdmin
	}
	if patch.TrialEndsAt != nil {
		rec.TrialEndsAt = timePtr(*patch.TrialEndsAt)
	}
	switch {
	case patch.ExpiresAt != nil:
		rec.ExpiresAt = timePtr(*patch.ExpiresAt)
	case patch.ClearExpiresAt:
		rec.ExpiresAt = nil
	}
	rec.UpdatedAt = now

	m.records[userID] = rec
	return nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[normalizeEmail(email)]
	if !ok {
		return uuid.Nil, ErrRecordNotFound
	}
	return id, nil
}

func (m *MemoryStore) CreateSubscription(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(rec.Email)
	if email != "" {
		if owner, taken := m.emails[email]; taken && owner != rec.UserID {
			return &StoreError{Code: "duplicate_email", Message: "email already registered", Err: ErrEmailTaken}
		}
	}

	// An existing row keeps its plan. Only a missing email and admin flag are filled in.
	if existing, ok := m.records[rec.UserID]; ok {
		if existing.Email == "" && email != "" {
			existing.Email = email
			m.emails[email] = rec.UserID
		}
		existing.IsAdmin = existing.IsAdmin || rec.IsAdmin
		m.records[rec.UserID] = existing
		return nil
	}

	if email != "" {
		m.emails[email] = rec.UserID
	}
	rec.Email = email
	m.records[rec.UserID] = copyRecord(rec)
	return nil
}

// ListSubscriptions returns records ordered by creation time.
func (m *MemoryStore) ListSubscriptions(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, copyRecord(rec))
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID.String(), b.UserID.String())
	})
	return out, nil
}

func (m *MemoryStore) CountUnitsForDay(ctx context.Context, userID uuid.UUID, unit UnitType, start, end time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, at := range m.units[unitKey{userID, unit}] {
		if !at.Before(start) && at.Before(end) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) RecordUnit(ctx context.Context, userID uuid.UUID, unit UnitType, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := unitKey{userID, unit}
	m.units[key] = append(m.units[key], at)
	return nil
}

func (m *MemoryStore) RecordUnitWithin(ctx context.Context, userID uuid.UUID, unit UnitType, at, start, end time.Time, limit int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := unitKey{userID, unit}
	var n int64
	for _, t := range m.units[key] {
		if !t.Before(start) && t.Before(end) {
			n++
		}
	}
	if n >= limit {
		return n, false, nil
	}
	m.units[key] = append(m.units[key], at)
	return n + 1, true, nil
}

func copyRecord(rec Record) Record {
	if rec.TrialEndsAt != nil {
		rec.TrialEndsAt = timePtr(*rec.TrialEndsAt)
	}
	if rec.ExpiresAt != nil {
		rec.ExpiresAt = timePtr(*rec.ExpiresAt)
	}
	return rec
}

func timePtr(t time.Time) *time.Time {
	return &t
}
