package repomanager

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/budgets"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/transactions"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost
// on Close.
type MemoryRepositoryManager struct {
	transactions *transactions.MemoryRepository
	categories   *categories.MemoryRepository
	budgets      *budgets.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		transactions: transactions.NewMemoryRepository(),
		categories:   categories.NewMemoryRepository(),
		budgets:      budgets.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error    { return nil }
func (m *MemoryRepositoryManager) Transactions() transactions.Repository { return m.transactions }
func (m *MemoryRepositoryManager) Categories() categories.Repository     { return m.categories }
func (m *MemoryRepositoryManager) Budgets() budgets.Repository           { return m.budgets }
func (m *MemoryRepositoryManager) Close(context.Context) error           { return nil }
