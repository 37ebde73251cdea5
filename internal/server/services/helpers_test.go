package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

const owner = "owner-1"

var fixedNow = time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	m            *repomanager.MemoryRepositoryManager
	reports      *ReportService
	budgets      *BudgetService
	categories   *CategoryService
	transactions *TransactionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := repomanager.NewMemoryRepositoryManager()
	f := &fixture{
		m:            m,
		reports:      NewReportService(m, logging.Nop{}),
		budgets:      NewBudgetService(m, logging.Nop{}),
		categories:   NewCategoryService(m, logging.Nop{}),
		transactions: NewTransactionService(m, logging.Nop{}),
	}
	f.categories.now = func() time.Time { return fixedNow }
	f.transactions.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) category(t *testing.T, ownerID, id, name string) {
	t.Helper()
	_, err := f.m.Categories().Create(context.Background(), &models.Category{
		ID: id, OwnerID: ownerID, Name: name, CreatedAt: fixedNow,
	})
	require.NoError(t, err)
}

// tx stores a transaction directly, bypassing category checks.
func (f *fixture) tx(t *testing.T, ownerID, categoryID string, kind models.Kind, amount, date string) {
	t.Helper()
	d, err := period.ParseDate("date", date)
	require.NoError(t, err)
	_, err = f.m.Transactions().Create(context.Background(), &models.Transaction{
		ID:         categoryID + "/" + amount + "/" + date + "/" + string(kind),
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Kind:       kind,
		Amount:     decimal.RequireFromString(amount),
		Date:       d,
		CreatedAt:  fixedNow,
		UpdatedAt:  fixedNow,
	})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
