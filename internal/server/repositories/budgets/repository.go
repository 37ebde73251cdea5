// Package budgets stores monthly budgets and their per-category limits.
// Every mutation is a single atomic store operation keyed by
// (owner, month).
package budgets

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	// FindByOwnerMonth returns common.ErrNotFound when no budget exists. It
	// never creates one.
	FindByOwnerMonth(ctx context.Context, ownerID, month string) (*models.Budget, error)
	// GetOrCreate returns the budget, inserting an empty one if absent.
	GetOrCreate(ctx context.Context, ownerID, month string) (*models.Budget, error)
	// AddLimit creates the budget if needed and inserts the limit unless the
	// category already has one, in which case it returns common.ErrConflict
	// and leaves the stored cap untouched.
	AddLimit(ctx context.Context, ownerID, month string, l models.Limit) (*models.Budget, error)
	// SetLimitCap replaces an existing cap. common.ErrNotFound when the
	// budget or the limit is missing.
	SetLimitCap(ctx context.Context, ownerID, month string, l models.Limit) (*models.Budget, error)
	// RemoveLimit deletes the category's limit if present. common.ErrNotFound
	// when the budget is missing; removing an absent limit is a no-op.
	RemoveLimit(ctx context.Context, ownerID, month, categoryID string) (*models.Budget, error)
}
