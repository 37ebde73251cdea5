package budgets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type budgetKey struct {
	ownerID string
	month   string
}

// MemoryRepository keeps budgets in process memory. The mutex makes each
// operation atomic with respect to the others.
type MemoryRepository struct {
	mu      sync.RWMutex
	budgets map[budgetKey]*models.Budget
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		budgets: make(map[budgetKey]*models.Budget),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func snapshot(b *models.Budget) *models.Budget {
	c := *b
	c.Limits = b.Limits.Clone()
	return &c
}

func (r *MemoryRepository) FindByOwnerMonth(_ context.Context, ownerID, month string) (*models.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.budgets[budgetKey{ownerID, month}]
	if !ok {
		return nil, common.ErrNotFound
	}
	return snapshot(b), nil
}

// getOrCreate must be called with the write lock held.
func (r *MemoryRepository) getOrCreate(ownerID, month string) *models.Budget {
	k := budgetKey{ownerID, month}
	if b, ok := r.budgets[k]; ok {
		return b
	}
	now := r.now()
	b := &models.Budget{ID: uuid.NewString(), OwnerID: ownerID, Month: month, CreatedAt: now, UpdatedAt: now}
	r.budgets[k] = b
	return b
}

func (r *MemoryRepository) GetOrCreate(_ context.Context, ownerID, month string) (*models.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return snapshot(r.getOrCreate(ownerID, month)), nil
}

func (r *MemoryRepository) AddLimit(_ context.Context, ownerID, month string, l models.Limit) (*models.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.getOrCreate(ownerID, month)
	if !b.Limits.Add(l.CategoryID, l.Cap) {
		return nil, fmt.Errorf("%w: budget %s already has a limit for category %s", common.ErrConflict, month, l.CategoryID)
	}
	b.UpdatedAt = r.now()
	return snapshot(b), nil
}

func (r *MemoryRepository) SetLimitCap(_ context.Context, ownerID, month string, l models.Limit) (*models.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.budgets[budgetKey{ownerID, month}]
	if !ok || !b.Limits.Set(l.CategoryID, l.Cap) {
		return nil, common.ErrNotFound
	}
	b.UpdatedAt = r.now()
	return snapshot(b), nil
}

func (r *MemoryRepository) RemoveLimit(_ context.Context, ownerID, month, categoryID string) (*models.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.budgets[budgetKey{ownerID, month}]
	if !ok {
		return nil, common.ErrNotFound
	}
	if b.Limits.Remove(categoryID) {
		b.UpdatedAt = r.now()
	}
	return snapshot(b), nil
}
