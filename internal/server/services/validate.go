// Package services holds the business logic of the server: the category
// aggregation and budget reconciliation reports, budget limit mutations,
// the ledger and category operations and report export.
//
// Every operation takes the owner explicitly and passes it to each store
// call; nothing reads ownership from ambient state.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/categories"
)

func utcNow() time.Time { return time.Now().UTC() }

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: missing owner", common.ErrUnauthorized)
	}
	return nil
}

// parseKind maps a kind filter to models.Kind. Empty means expense.
func parseKind(s string) (models.Kind, error) {
	if s == "" {
		return models.KindExpense, nil
	}
	k := models.Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", common.Invalid("kind", "must be income or expense, got %q", s)
	}
	return k, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, common.Invalid(field, "not a number: %q", s)
	}
	return d, nil
}

func parseCap(s string) (decimal.Decimal, error) {
	c, err := parseDecimal("cap", s)
	if err != nil {
		return c, err
	}
	if c.IsNegative() {
		return decimal.Decimal{}, common.Invalid("cap", "must not be negative, got %s", c)
	}
	return c, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	a, err := parseDecimal("amount", s)
	if err != nil {
		return a, err
	}
	if !a.IsPositive() {
		return decimal.Decimal{}, common.Invalid("amount", "must be greater than zero, got %s", a)
	}
	return a, nil
}

// checkCategory verifies that categoryID names a category of the owner.
func checkCategory(ctx context.Context, repo categories.Repository, ownerID, categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return common.Invalid("category_id", "category is required")
	}
	_, err := repo.FindByID(ctx, ownerID, categoryID)
	if errors.Is(err, common.ErrNotFound) {
		return common.Invalid("category_id", "unrecognized category reference %q", categoryID)
	}
	return err
}

// categoryNames maps category IDs of the owner to display names.
func categoryNames(ctx context.Context, repo categories.Repository, ownerID string) (map[string]string, error) {
	list, err := repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
	}
	return names, nil
}

func nameOf(names map[string]string, categoryID string) string {
	if n, ok := names[categoryID]; ok {
		return n
	}
	return common.UnknownCategoryName
}
