// Package transactions is the ledger store: dated income and expense
// records and the per-category aggregation reports are built from.
package transactions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// DefaultListLimit caps List when the filter does not ask for fewer rows.
const DefaultListLimit = 200

// ListFilter narrows List. Zero fields match everything; a nil Range
// leaves the dates unbounded.
type ListFilter struct {
	Kind       models.Kind
	CategoryID string
	Range      *period.Range
	Limit      int
}

// limit clamps f.Limit to (0, DefaultListLimit].
func (f ListFilter) limit() int {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		return DefaultListLimit
	}
	return f.Limit
}

// Repository persists transactions. All lookups are scoped to an owner;
// a record of another owner behaves as absent (common.ErrNotFound).
type Repository interface {
	Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	Get(ctx context.Context, ownerID, id string) (*models.Transaction, error)
	// List returns the owner's transactions matching f, newest date first
	// with ties broken by id.
	List(ctx context.Context, ownerID string, f ListFilter) ([]models.Transaction, error)
	// Patch overwrites the present fields of p and returns the stored record.
	Patch(ctx context.Context, ownerID, id string, p models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error)
	// IncrementAmount adds delta to the stored amount in one atomic update.
	IncrementAmount(ctx context.Context, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*models.Transaction, error)
	// SumByCategory groups the owner's transactions dated inside r by
	// category. An empty kind matches both kinds. Row order is unspecified.
	SumByCategory(ctx context.Context, ownerID string, kind models.Kind, r period.Range) ([]models.CategoryTotal, error)
	// DeleteOlderThan removes transactions dated strictly before cutoff and
	// returns how many were deleted.
	DeleteOlderThan(ctx context.Context, ownerID string, cutoff time.Time) (int64, error)
	// Delete removes one transaction or returns common.ErrNotFound.
	Delete(ctx context.Context, ownerID, id string) error
}
