package budgets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var stamp = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

const (
	ensureSQL  = `INSERT INTO budgets \(id, owner_id, month\)\s+VALUES \(\$1, \$2, \$3\)\s+ON CONFLICT \(owner_id, month\)`
	budgetSQL  = `SELECT id, owner_id, month, created_at, updated_at FROM budgets`
	limitsSQL  = `SELECT category_id, cap FROM budget_limits\s+WHERE budget_id = \$1\s+ORDER BY seq`
	budgetIDQL = `SELECT id FROM budgets WHERE owner_id = \$1 AND month = \$2`
	touchSQL   = `UPDATE budgets SET updated_at = now\(\) WHERE id = \$1`
)

func expectLoad(mock sqlmock.Sqlmock, limits ...models.Limit) {
	mock.ExpectQuery(budgetSQL).
		WithArgs("u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "month", "created_at", "updated_at"}).
			AddRow("b1", "u1", "2024-01", stamp, stamp))

	rows := sqlmock.NewRows([]string{"category_id", "cap"})
	for _, l := range limits {
		rows.AddRow(l.CategoryID, l.Cap.String())
	}
	mock.ExpectQuery(limitsSQL).WithArgs("b1").WillReturnRows(rows)
}

func lim(cat, c string) models.Limit {
	return models.Limit{CategoryID: cat, Cap: decimal.RequireFromString(c)}
}

func TestPostgresFindByOwnerMonth(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	expectLoad(mock, lim("rent", "900"), lim("food", "120.50"))

	b, err := repo.FindByOwnerMonth(context.Background(), "u1", "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	require.Equal(t, 2, b.Limits.Len())
	assert.Equal(t, "rent", b.Limits.List()[0].CategoryID)
	assert.Equal(t, "120.5", b.Limits.List()[1].Cap.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByOwnerMonth_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(budgetSQL).WithArgs("u1", "2024-01").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByOwnerMonth(context.Background(), "u1", "2024-01")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresGetOrCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(ensureSQL).
		WithArgs(sqlmock.AnyArg(), "u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b1"))
	expectLoad(mock)
	mock.ExpectCommit()

	b, err := repo.GetOrCreate(context.Background(), "u1", "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Limits.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddLimit_Inserted(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	l := lim("food", "100")

	mock.ExpectBegin()
	mock.ExpectQuery(ensureSQL).
		WithArgs(sqlmock.AnyArg(), "u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b1"))
	mock.ExpectExec(`INSERT INTO budget_limits \(budget_id, category_id, cap\)\s+VALUES \(\$1, \$2, \$3\)\s+ON CONFLICT \(budget_id, category_id\) DO NOTHING`).
		WithArgs("b1", "food", l.Cap).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(touchSQL).WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	expectLoad(mock, l)
	mock.ExpectCommit()

	b, err := repo.AddLimit(context.Background(), "u1", "2024-01", l)
	require.NoError(t, err)
	got, ok := b.Limits.Get("food")
	require.True(t, ok)
	assert.True(t, got.Equal(l.Cap))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddLimit_DuplicateRollsBack(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	l := lim("food", "5")

	mock.ExpectBegin()
	mock.ExpectQuery(ensureSQL).
		WithArgs(sqlmock.AnyArg(), "u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b1"))
	mock.ExpectExec(`INSERT INTO budget_limits`).
		WithArgs("b1", "food", l.Cap).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.AddLimit(context.Background(), "u1", "2024-01", l)
	require.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddLimit_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(ensureSQL).WillReturnError(errors.New("db is down"))
	mock.ExpectRollback()

	_, err := repo.AddLimit(context.Background(), "u1", "2024-01", lim("food", "1"))
	require.ErrorIs(t, err, common.ErrStore)
	assert.NotErrorIs(t, err, common.ErrConflict)
}

func TestPostgresSetLimitCap(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	l := lim("food", "80")

	mock.ExpectBegin()
	mock.ExpectQuery(budgetIDQL).WithArgs("u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b1"))
	mock.ExpectExec(`UPDATE budget_limits SET cap = \$1 WHERE budget_id = \$2 AND category_id = \$3`).
		WithArgs(l.Cap, "b1", "food").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(touchSQL).WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	expectLoad(mock, l)
	mock.ExpectCommit()

	b, err := repo.SetLimitCap(context.Background(), "u1", "2024-01", l)
	require.NoError(t, err)
	got, _ := b.Limits.Get("food")
	assert.Equal(t, "80", got.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetLimitCap_NoBudget(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(budgetIDQL).WithArgs("u1", "2024-01").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.SetLimitCap(context.Background(), "u1", "2024-01", lim("food", "1"))
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetLimitCap_NoLimit(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(budgetIDQL).WithArgs("u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b1"))
	mock.ExpectExec(`UPDATE budget_limits SET cap`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.SetLimitCap(context.Background(), "u1", "2024-01", lim("food", "1"))
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRemoveLimit_Absent(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(budgetIDQL).WithArgs("u1", "2024-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b1"))
	mock.ExpectExec(`DELETE FROM budget_limits WHERE budget_id = \$1 AND category_id = \$2`).
		WithArgs("b1", "food").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectLoad(mock, lim("rent", "900"))
	mock.ExpectCommit()

	b, err := repo.RemoveLimit(context.Background(), "u1", "2024-01", "food")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Limits.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRemoveLimit_NoBudget(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(budgetIDQL).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.RemoveLimit(context.Background(), "u1", "2024-01", "food")
	require.ErrorIs(t, err, common.ErrNotFound)
}
