package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `INSERT INTO categories (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.OwnerID, c.Name, c.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrConflict, c.Name)
		}
		return nil, common.StoreFailure("create category", err)
	}
	return c, nil
}

func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Category, error) {
	query := `SELECT id, owner_id, name, created_at FROM categories
		WHERE owner_id = $1
		ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, common.StoreFailure("find categories", err)
	}
	defer rows.Close()

	result := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt); err != nil {
			return nil, common.StoreFailure("scan category", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StoreFailure("find categories", err)
	}
	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Category, error) {
	query := `SELECT id, owner_id, name, created_at FROM categories
		WHERE owner_id = $1 AND id = $2`

	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, ownerID, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.StoreFailure("find category", err)
	}
	return c, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, ownerID, id, name string) (*models.Category, error) {
	query := `UPDATE categories SET name = $3
		WHERE owner_id = $1 AND id = $2
		RETURNING id, owner_id, name, created_at`

	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, ownerID, id, name).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrNotFound
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrConflict, name)
		}
		return nil, common.StoreFailure("rename category", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return common.StoreFailure("delete category", err)
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
