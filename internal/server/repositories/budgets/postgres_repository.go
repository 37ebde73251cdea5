package budgets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// PostgresRepository keeps budgets in the budgets table and their limits in
// budget_limits, whose (budget_id, category_id) primary key makes a
// category unique within a budget.
type PostgresRepository struct {
	db dbx.DB
}

func NewPostgresRepository(db dbx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, common.ErrNotFound):
		return common.ErrNotFound
	case errors.Is(err, common.ErrConflict):
		return err
	default:
		return common.StoreFailure(op, err)
	}
}

func load(ctx context.Context, db dbx.DBTX, ownerID, month string) (*models.Budget, error) {
	b := &models.Budget{}
	err := db.QueryRowContext(ctx,
		`SELECT id, owner_id, month, created_at, updated_at FROM budgets
		WHERE owner_id = $1 AND month = $2`, ownerID, month).
		Scan(&b.ID, &b.OwnerID, &b.Month, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT category_id, cap FROM budget_limits
		WHERE budget_id = $1
		ORDER BY seq`, b.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Limit
		if err := rows.Scan(&l.CategoryID, &l.Cap); err != nil {
			return nil, err
		}
		if !b.Limits.Add(l.CategoryID, l.Cap) {
			return nil, fmt.Errorf("budget %s: duplicate limit %s", b.ID, l.CategoryID)
		}
	}
	return b, rows.Err()
}

// ensure returns the budget id, inserting the budget when absent.
func ensure(ctx context.Context, db dbx.DBTX, ownerID, month string) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`INSERT INTO budgets (id, owner_id, month)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, month) DO UPDATE SET owner_id = EXCLUDED.owner_id
		RETURNING id`, uuid.NewString(), ownerID, month).Scan(&id)
	return id, err
}

func budgetID(ctx context.Context, db dbx.DBTX, ownerID, month string) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE owner_id = $1 AND month = $2`, ownerID, month).Scan(&id)
	return id, err
}

func touch(ctx context.Context, db dbx.DBTX, id string) error {
	_, err := db.ExecContext(ctx, `UPDATE budgets SET updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) FindByOwnerMonth(ctx context.Context, ownerID, month string) (*models.Budget, error) {
	b, err := load(ctx, r.db, ownerID, month)
	if err != nil {
		return nil, storeErr("find budget", err)
	}
	return b, nil
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, ownerID, month string) (*models.Budget, error) {
	var b *models.Budget
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := ensure(ctx, tx, ownerID, month); err != nil {
			return err
		}
		var err error
		b, err = load(ctx, tx, ownerID, month)
		return err
	})
	if err != nil {
		return nil, storeErr("get or create budget", err)
	}
	return b, nil
}

func (r *PostgresRepository) AddLimit(ctx context.Context, ownerID, month string, l models.Limit) (*models.Budget, error) {
	var b *models.Budget
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := ensure(ctx, tx, ownerID, month)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO budget_limits (budget_id, category_id, cap)
			VALUES ($1, $2, $3)
			ON CONFLICT (budget_id, category_id) DO NOTHING`, id, l.CategoryID, l.Cap)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: budget %s already has a limit for category %s", common.ErrConflict, month, l.CategoryID)
		}

		if err := touch(ctx, tx, id); err != nil {
			return err
		}
		b, err = load(ctx, tx, ownerID, month)
		return err
	})
	if err != nil {
		return nil, storeErr("add limit", err)
	}
	return b, nil
}

func (r *PostgresRepository) SetLimitCap(ctx context.Context, ownerID, month string, l models.Limit) (*models.Budget, error) {
	var b *models.Budget
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := budgetID(ctx, tx, ownerID, month)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE budget_limits SET cap = $1 WHERE budget_id = $2 AND category_id = $3`, l.Cap, id, l.CategoryID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrNotFound
		}

		if err := touch(ctx, tx, id); err != nil {
			return err
		}
		b, err = load(ctx, tx, ownerID, month)
		return err
	})
	if err != nil {
		return nil, storeErr("set limit cap", err)
	}
	return b, nil
}

func (r *PostgresRepository) RemoveLimit(ctx context.Context, ownerID, month, categoryID string) (*models.Budget, error) {
	var b *models.Budget
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := budgetID(ctx, tx, ownerID, month)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM budget_limits WHERE budget_id = $1 AND category_id = $2`, id, categoryID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			if err := touch(ctx, tx, id); err != nil {
				return err
			}
		}

		b, err = load(ctx, tx, ownerID, month)
		return err
	})
	if err != nil {
		return nil, storeErr("remove limit", err)
	}
	return b, nil
}
