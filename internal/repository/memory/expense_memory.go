// Package memory is an in-process repository.ExpenseRepository used for dry runs and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"despesas/internal/model"
	"despesas/internal/repository"
)

// ErrDuplicateInBatch mirrors the Postgres refusal to touch one row twice in a statement.
var ErrDuplicateInBatch = errors.New("document number repeated in batch")

// ExpenseMemory keeps expenses keyed by document number.
type ExpenseMemory struct {
	mu    sync.RWMutex
	byDoc map[string]model.Expense
}

// NewExpenseMemory creates an empty store.
func NewExpenseMemory() *ExpenseMemory {
	return &ExpenseMemory{byDoc: make(map[string]model.Expense)}
}

var _ repository.ExpenseRepository = (*ExpenseMemory)(nil)

func (r *ExpenseMemory) UpsertBatch(_ context.Context, batch []model.Expense) error {
	if len(batch) == 0 {
		return repository.ErrEmptyBatch
	}
	seen := make(map[string]struct{}, len(batch))
	for _, e := range batch {
		if _, dup := seen[e.DocumentNumber]; dup {
			return ErrDuplicateInBatch
		}
		seen[e.DocumentNumber] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range batch {
		if prev, ok := r.byDoc[e.DocumentNumber]; ok {
			e.ID = prev.ID
		} else {
			e.ID = uuid.NewString()
		}
		r.byDoc[e.DocumentNumber] = e
	}
	return nil
}

func (r *ExpenseMemory) CountByPeriod(_ context.Context, year, month int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.byDoc {
		if e.Year == year && e.Month == month {
			n++
		}
	}
	return n, nil
}

func (r *ExpenseMemory) CountByCategory(_ context.Context, category string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.byDoc {
		if e.Category == category {
			n++
		}
	}
	return n, nil
}

func (r *ExpenseMemory) ListByCategory(_ context.Context, category string) ([]model.CategoryCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]model.CategoryCandidate, 0)
	for _, e := range r.byDoc {
		if e.Category == category {
			items = append(items, model.CategoryCandidate{ID: e.ID, SupplierName: e.SupplierName, Description: e.Description})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *ExpenseMemory) UpdateCategories(_ context.Context, updates []model.CategoryUpdate) error {
	if len(updates) == 0 {
		return repository.ErrEmptyBatch
	}
	byID := make(map[string]string, len(updates))
	for _, u := range updates {
		byID[u.ID] = u.Category
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for doc, e := range r.byDoc {
		if c, ok := byID[e.ID]; ok {
			e.Category = c
			r.byDoc[doc] = e
		}
	}
	return nil
}

func (r *ExpenseMemory) Ping(context.Context) error { return nil }

// Get returns the stored expense for a document number.
func (r *ExpenseMemory) Get(documentNumber string) (model.Expense, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byDoc[documentNumber]
	return e, ok
}

// All returns every stored expense ordered by document number.
func (r *ExpenseMemory) All() []model.Expense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Expense, 0, len(r.byDoc))
	for _, e := range r.byDoc {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentNumber < out[j].DocumentNumber })
	return out
}
