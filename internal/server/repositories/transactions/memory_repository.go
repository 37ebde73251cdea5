package transactions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Transaction
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Transaction)}
}

func (r *MemoryRepository) Create(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[t.ID]; ok {
		return nil, common.ErrConflict
	}
	stored := *t
	stored.Date = period.Day(stored.Date)
	r.byID[t.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) Get(_ context.Context, ownerID, id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) List(_ context.Context, ownerID string, f ListFilter) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Transaction, 0)
	for _, t := range r.byID {
		if t.OwnerID != ownerID {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if f.Range != nil && !f.Range.Contains(t.Date) {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	if n := f.limit(); len(result) > n {
		result = result[:n]
	}
	return result, nil
}

func (r *MemoryRepository) update(ownerID, id string, fn func(*models.Transaction)) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	fn(&t)
	r.byID[id] = t
	return &t, nil
}

func (r *MemoryRepository) Patch(_ context.Context, ownerID, id string, p models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error) {
	return r.update(ownerID, id, func(t *models.Transaction) {
		*t = p.Apply(*t)
		t.Date = period.Day(t.Date)
		t.UpdatedAt = updatedAt
	})
}

func (r *MemoryRepository) IncrementAmount(_ context.Context, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*models.Transaction, error) {
	return r.update(ownerID, id, func(t *models.Transaction) {
		t.Amount = t.Amount.Add(delta)
		t.UpdatedAt = updatedAt
	})
}

func (r *MemoryRepository) SumByCategory(_ context.Context, ownerID string, kind models.Kind, rng period.Range) ([]models.CategoryTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := make(map[string]int)
	result := make([]models.CategoryTotal, 0)
	for _, t := range r.byID {
		if t.OwnerID != ownerID || !rng.Contains(t.Date) {
			continue
		}
		if kind != "" && t.Kind != kind {
			continue
		}
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(result)
			index[t.CategoryID] = i
			result = append(result, models.CategoryTotal{CategoryID: t.CategoryID})
		}
		result[i].Total = result[i].Total.Add(t.Amount)
		result[i].Count++
	}
	return result, nil
}

func (r *MemoryRepository) DeleteOlderThan(_ context.Context, ownerID string, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.byID {
		if t.OwnerID == ownerID && t.Date.Before(cutoff) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
