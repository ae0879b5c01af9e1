// Package memory implements repository.Store in process. It backs the
// service tests and the "memory" data backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/models"
	"github.com/diego28e/backend-wealth-builder/internal/repository"
)

type accrualKey struct {
	accountID uuid.UUID
	day       time.Time
}

type data struct {
	users        map[uuid.UUID]models.User
	currencies   map[string]models.Currency
	groups       map[uuid.UUID]models.CategoryGroup
	categories   map[uuid.UUID]models.Category
	accounts     map[uuid.UUID]models.Account
	configs      map[uuid.UUID]models.AccountConfiguration
	transactions map[uuid.UUID]models.Transaction
	items        map[uuid.UUID]models.TransactionItem
	goals        map[uuid.UUID]models.FinancialGoal
	accruals     map[accrualKey]models.YieldAccrual
	last         time.Time
}

func newData() *data {
	return &data{
		users:        map[uuid.UUID]models.User{},
		currencies:   map[string]models.Currency{},
		groups:       map[uuid.UUID]models.CategoryGroup{},
		categories:   map[uuid.UUID]models.Category{},
		accounts:     map[uuid.UUID]models.Account{},
		configs:      map[uuid.UUID]models.AccountConfiguration{},
		transactions: map[uuid.UUID]models.Transaction{},
		items:        map[uuid.UUID]models.TransactionItem{},
		goals:        map[uuid.UUID]models.FinancialGoal{},
		accruals:     map[accrualKey]models.YieldAccrual{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	return &data{
		users:        cloneMap(d.users),
		currencies:   cloneMap(d.currencies),
		groups:       cloneMap(d.groups),
		categories:   cloneMap(d.categories),
		accounts:     cloneMap(d.accounts),
		configs:      cloneMap(d.configs),
		transactions: cloneMap(d.transactions),
		items:        cloneMap(d.items),
		goals:        cloneMap(d.goals),
		accruals:     cloneMap(d.accruals),
		last:         d.last,
	}
}

// stamp returns a strictly increasing timestamp so that creation order is
// preserved even when the clock does not advance between writes.
func (d *data) stamp(now time.Time) time.Time {
	if !now.After(d.last) {
		now = d.last.Add(time.Microsecond)
	}
	d.last = now
	return now
}

// Store keeps rows by value. Callers always receive copies.
type Store struct {
	// writeMu serializes writers so a committing transaction never
	// overwrites a concurrent direct write.
	writeMu sync.Mutex
	mu      sync.RWMutex
	data    *data
	now     func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: newData(), now: time.Now}
}

// SetClock replaces the time source used for created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) read(fn func(d *data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// WithTx runs fn against a private copy of the data and publishes the copy
// only when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	tx := &Store{data: s.data.clone(), now: s.now}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}
