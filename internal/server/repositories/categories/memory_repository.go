package categories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// MemoryRepository keeps categories in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Category
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Category)}
}

func (r *MemoryRepository) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrConflict, c.Name)
		}
	}
	if _, ok := r.byID[c.ID]; ok {
		return nil, fmt.Errorf("%w: category id %q already exists", common.ErrConflict, c.ID)
	}
	r.byID[c.ID] = *c
	return c, nil
}

func (r *MemoryRepository) FindByOwner(_ context.Context, ownerID string) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Category, 0)
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, ownerID, id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok || c.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) Rename(_ context.Context, ownerID, id, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok || c.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	for _, existing := range r.byID {
		if existing.ID != id && existing.OwnerID == ownerID && existing.Name == name {
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrConflict, name)
		}
	}
	c.Name = name
	r.byID[id] = c
	return &c, nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok || c.OwnerID != ownerID {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
