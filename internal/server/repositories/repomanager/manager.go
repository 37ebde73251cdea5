// Package repomanager selects a storage backend and vends the repositories
// built on it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/budgets"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/transactions"
)

// Storage backends accepted by New.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

type RepositoryManager interface {
	// RunMigrations prepares the schema (tables or indexes) of the backend.
	RunMigrations(ctx context.Context) error
	Transactions() transactions.Repository
	Categories() categories.Repository
	Budgets() budgets.Repository
	Close(ctx context.Context) error
}

// Options carries the connection settings of every backend; only those of
// the selected Backend are used.
type Options struct {
	Backend       string
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string
}

// New opens the configured backend.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DatabaseDSN)
	case BackendMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
