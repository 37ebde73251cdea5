package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

const returningColumns = `id, owner_id, category_id, kind, amount, occurred_on, note, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var (
		t    models.Transaction
		kind string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.CategoryID, &kind, &t.Amount, &t.Date, &t.Note, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Kind = models.Kind(kind)
	t.Date = period.Day(t.Date)
	return &t, nil
}

func rowError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return common.StoreFailure(op, err)
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query := `INSERT INTO transactions (id, owner_id, category_id, kind, amount, occurred_on, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + returningColumns

	row := r.db.QueryRowContext(ctx, query,
		t.ID, t.OwnerID, t.CategoryID, string(t.Kind), t.Amount, t.Date, t.Note, t.CreatedAt, t.UpdatedAt)
	created, err := scanTransaction(row)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, common.StoreFailure("create transaction", err)
	}
	return created, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	query := `SELECT ` + returningColumns + ` FROM transactions
		WHERE owner_id = $1 AND id = $2`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		return nil, rowError("get transaction", err)
	}
	return t, nil
}

// listQuery builds the List statement. Only the conditions the filter sets
// are emitted so the planner can use transactions_owner_category_date_idx.
func listQuery(ownerID string, f ListFilter) (string, []any) {
	conds := []string{"owner_id = $1"}
	args := []any{ownerID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.Range != nil {
		add("occurred_on >= $%d", f.Range.Start)
		add("occurred_on < $%d", f.Range.End)
	}
	args = append(args, f.limit())

	query := `SELECT ` + returningColumns + ` FROM transactions
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY occurred_on DESC, id
		LIMIT $` + fmt.Sprint(len(args))
	return query, args
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, f ListFilter) ([]models.Transaction, error) {
	query, args := listQuery(ownerID, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StoreFailure("list transactions", err)
	}
	defer rows.Close()

	result := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, common.StoreFailure("scan transaction", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreFailure("list transactions", err)
	}
	return result, nil
}

// nullable turns an absent patch field into SQL NULL so COALESCE keeps the
// stored value.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *PostgresRepository) Patch(ctx context.Context, ownerID, id string, p models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error) {
	query := `UPDATE transactions SET
			category_id = COALESCE($3, category_id),
			kind = COALESCE($4, kind),
			amount = COALESCE($5, amount),
			occurred_on = COALESCE($6, occurred_on),
			note = COALESCE($7, note),
			updated_at = $8
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + returningColumns

	var kind any
	if p.Kind != nil {
		kind = string(*p.Kind)
	}

	row := r.db.QueryRowContext(ctx, query, ownerID, id,
		nullable(p.CategoryID), kind, nullable(p.Amount), nullable(p.Date), nullable(p.Note), updatedAt)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, rowError("patch transaction", err)
	}
	return t, nil
}

func (r *PostgresRepository) IncrementAmount(ctx context.Context, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*models.Transaction, error) {
	query := `UPDATE transactions SET amount = amount + $3, updated_at = $4
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + returningColumns

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, ownerID, id, delta, updatedAt))
	if err != nil {
		return nil, rowError("increment transaction", err)
	}
	return t, nil
}

func (r *PostgresRepository) SumByCategory(ctx context.Context, ownerID string, kind models.Kind, rng period.Range) ([]models.CategoryTotal, error) {
	query := `SELECT category_id, SUM(amount), COUNT(*) FROM transactions
		WHERE owner_id = $1
			AND ($2 = '' OR kind = $2)
			AND occurred_on >= $3 AND occurred_on < $4
		GROUP BY category_id`

	rows, err := r.db.QueryContext(ctx, query, ownerID, string(kind), rng.Start, rng.End)
	if err != nil {
		return nil, common.StoreFailure("sum by category", err)
	}
	defer rows.Close()

	result := make([]models.CategoryTotal, 0)
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Total, &ct.Count); err != nil {
			return nil, common.StoreFailure("scan category total", err)
		}
		result = append(result, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreFailure("sum by category", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, ownerID string, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner_id = $1 AND occurred_on < $2`, ownerID, cutoff)
	if err != nil {
		return 0, common.StoreFailure("delete transactions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.StoreFailure("rows affected", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return common.StoreFailure("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.StoreFailure("rows affected", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
