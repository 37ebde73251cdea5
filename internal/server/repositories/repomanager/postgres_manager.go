package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/budgets"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/transactions"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories sharing one
// connection pool.
type PostgresRepositoryManager struct {
	db           *sql.DB
	transactions *transactions.PostgresRepository
	categories   *categories.PostgresRepository
	budgets      *budgets.PostgresRepository
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:           db,
		transactions: transactions.NewPostgresRepository(db),
		categories:   categories.NewPostgresRepository(db),
		budgets:      budgets.NewPostgresRepository(db),
	}
}

// sqlOpen and pingDB are seams for tests.
var (
	sqlOpen = sql.Open
	pingDB  = func(ctx context.Context, db *sql.DB) error { return db.PingContext(ctx) }
)

// OpenPostgres connects through the pgx database/sql driver and checks the
// connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pingDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}

func (m *PostgresRepositoryManager) Transactions() transactions.Repository { return m.transactions }
func (m *PostgresRepositoryManager) Categories() categories.Repository     { return m.categories }
func (m *PostgresRepositoryManager) Budgets() budgets.Repository           { return m.budgets }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

func (m *PostgresRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
