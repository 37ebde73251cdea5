// Package categories stores owner-scoped transaction categories.
package categories

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// Repository persists categories. Names are unique per owner: Create
// returns common.ErrConflict for a duplicate (owner, name).
type Repository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	// FindByOwner returns every category of the owner ordered by name.
	FindByOwner(ctx context.Context, ownerID string) ([]models.Category, error)
	// FindByID returns common.ErrNotFound when the category does not exist
	// or belongs to another owner.
	FindByID(ctx context.Context, ownerID, id string) (*models.Category, error)
	// Rename sets a new name. It returns common.ErrNotFound for a missing
	// category and common.ErrConflict when the owner already uses name.
	Rename(ctx context.Context, ownerID, id, name string) (*models.Category, error)
	// Delete removes the category only. Transactions and budget limits
	// that reference it are left alone.
	Delete(ctx context.Context, ownerID, id string) error
}
