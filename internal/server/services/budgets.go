package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// BudgetService reads budgets and mutates their limits. Each mutation maps
// to exactly one atomic Budget store call.
type BudgetService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewBudgetService(m repomanager.RepositoryManager, log logging.Logger) *BudgetService {
	return &BudgetService{repomanager: m, log: log.With("module", "budgets")}
}

// Get returns the owner's budget for month, creating an empty one on first
// read.
func (s *BudgetService) Get(ctx context.Context, ownerID, month string) (*models.Budget, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	m, err := period.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Budgets().GetOrCreate(ctx, ownerID, m.Token)
}

// AddLimit adds a cap for one of the owner's categories. A second limit for
// the same category fails with common.ErrConflict.
func (s *BudgetService) AddLimit(ctx context.Context, ownerID, month, categoryID, limit string) (*models.Budget, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	m, err := period.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	c, err := parseCap(limit)
	if err != nil {
		return nil, err
	}
	if err := checkCategory(ctx, s.repomanager.Categories(), ownerID, categoryID); err != nil {
		return nil, err
	}

	b, err := s.repomanager.Budgets().AddLimit(ctx, ownerID, m.Token, models.Limit{CategoryID: categoryID, Cap: c})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "limit added", "owner", ownerID, "month", m.Token, "category", categoryID, "cap", c.String())
	return b, nil
}

// SetLimitCap replaces the cap of an existing limit. A missing budget or
// limit is common.ErrNotFound.
func (s *BudgetService) SetLimitCap(ctx context.Context, ownerID, month, categoryID, limit string) (*models.Budget, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	m, err := period.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	c, err := parseCap(limit)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(categoryID) == "" {
		return nil, common.Invalid("category_id", "category is required")
	}

	b, err := s.repomanager.Budgets().SetLimitCap(ctx, ownerID, m.Token, models.Limit{CategoryID: categoryID, Cap: c})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "limit cap updated", "owner", ownerID, "month", m.Token, "category", categoryID, "cap", c.String())
	return b, nil
}

// RemoveLimit drops the category's limit. The budget must exist; removing
// an absent limit returns the unchanged budget.
func (s *BudgetService) RemoveLimit(ctx context.Context, ownerID, month, categoryID string) (*models.Budget, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	m, err := period.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(categoryID) == "" {
		return nil, common.Invalid("category_id", "category is required")
	}
	return s.repomanager.Budgets().RemoveLimit(ctx, ownerID, m.Token, categoryID)
}
