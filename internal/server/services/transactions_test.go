package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

func strp(s string) *string { return &s }

func TestTransactionService_Create(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	tx, err := f.transactions.Create(context.Background(), owner, TransactionInput{
		CategoryID: "A",
		Kind:       "Expense",
		Amount:     "12.34",
		Date:       "2024-06-03T18:30:00+02:00",
		Note:       "market",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, owner, tx.OwnerID)
	assert.Equal(t, models.KindExpense, tx.Kind)
	assert.True(t, dec("12.34").Equal(tx.Amount))
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "market", tx.Note)
	assert.Equal(t, fixedNow, tx.CreatedAt)

	got, err := f.m.Transactions().Get(context.Background(), owner, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}

func TestTransactionService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	valid := TransactionInput{CategoryID: "A", Kind: "expense", Amount: "1", Date: "2024-06-03"}
	tests := []struct {
		name string
		mod  func(*TransactionInput)
	}{
		{"missing kind", func(in *TransactionInput) { in.Kind = "" }},
		{"bad kind", func(in *TransactionInput) { in.Kind = "refund" }},
		{"zero amount", func(in *TransactionInput) { in.Amount = "0" }},
		{"negative amount", func(in *TransactionInput) { in.Amount = "-3" }},
		{"bad date", func(in *TransactionInput) { in.Date = "03/06/2024" }},
		{"unknown category", func(in *TransactionInput) { in.CategoryID = "Z" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mod(&in)
			_, err := f.transactions.Create(context.Background(), owner, in)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestTransactionService_Patch(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")
	f.category(t, owner, "B", "Transport")

	tx, err := f.transactions.Create(context.Background(), owner, TransactionInput{
		CategoryID: "A", Kind: "expense", Amount: "10", Date: "2024-06-03", Note: "n",
	})
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	f.transactions.now = func() time.Time { return later }

	got, err := f.transactions.Patch(context.Background(), owner, tx.ID, TransactionPatchInput{
		CategoryID: strp("B"),
		Amount:     strp("11.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "B", got.CategoryID)
	assert.True(t, dec("11.5").Equal(got.Amount))
	assert.Equal(t, "n", got.Note, "absent fields are unchanged")
	assert.Equal(t, models.KindExpense, got.Kind)
	assert.Equal(t, later, got.UpdatedAt)

	same, err := f.transactions.Patch(context.Background(), owner, tx.ID, TransactionPatchInput{})
	require.NoError(t, err)
	assert.Equal(t, got, same)

	_, err = f.transactions.Patch(context.Background(), owner, tx.ID, TransactionPatchInput{Amount: strp("0")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.transactions.Patch(context.Background(), owner, tx.ID, TransactionPatchInput{CategoryID: strp("Z")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.transactions.Patch(context.Background(), "owner-2", tx.ID, TransactionPatchInput{Note: strp("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionService_Increment(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	tx, err := f.transactions.Create(context.Background(), owner, TransactionInput{
		CategoryID: "A", Kind: "expense", Amount: "10", Date: "2024-06-03",
	})
	require.NoError(t, err)

	got, err := f.transactions.Increment(context.Background(), owner, tx.ID, "2.5")
	require.NoError(t, err)
	assert.True(t, dec("12.5").Equal(got.Amount))

	got, err = f.transactions.Increment(context.Background(), owner, tx.ID, "-0.5")
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(got.Amount))

	_, err = f.transactions.Increment(context.Background(), owner, tx.ID, "abc")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.transactions.Increment(context.Background(), owner, "missing", "1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionService_PurgeOlderThan(t *testing.T) {
	f := newFixture(t)
	f.tx(t, owner, "A", models.KindExpense, "1", "2024-05-31")
	f.tx(t, owner, "A", models.KindExpense, "2", "2024-06-01")
	f.tx(t, "owner-2", "A", models.KindExpense, "3", "2024-01-01")

	n, err := f.transactions.PurgeOlderThan(context.Background(), owner, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	r, err := f.reports.CategoryReport(context.Background(), owner, "", "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, r.Rows, 1)
	assert.Equal(t, int64(1), r.Rows[0].Count)

	_, err = f.transactions.PurgeOlderThan(context.Background(), owner, "yesterday")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestTransactionService_Get(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")
	tx, err := f.transactions.Create(context.Background(), owner, TransactionInput{CategoryID: "A", Kind: "expense", Amount: "5", Date: "2024-06-01"})
	require.NoError(t, err)

	got, err := f.transactions.Get(context.Background(), owner, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	_, err = f.transactions.Get(context.Background(), "owner-2", tx.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.transactions.Get(context.Background(), "", tx.ID)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTransactionService_List(t *testing.T) {
	f := newFixture(t)
	seedJune(t, f)
	f.category(t, owner, "C", "Salary")
	f.tx(t, owner, "C", models.KindIncome, "1000", "2024-06-01")
	f.tx(t, owner, "A", models.KindExpense, "7", "2024-05-31")
	f.tx(t, "owner-2", "A", models.KindExpense, "500", "2024-06-05")

	amounts := func(ts []models.Transaction) []string {
		out := make([]string, 0, len(ts))
		for _, tx := range ts {
			out = append(out, tx.Amount.String())
		}
		return out
	}

	all, err := f.transactions.List(context.Background(), owner, TransactionListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"20", "30", "50", "1000", "7"}, amounts(all))

	got, err := f.transactions.List(context.Background(), owner, TransactionListInput{CategoryID: "A", Start: "2024-06-01", End: "2024-06-30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"30", "50"}, amounts(got))

	got, err = f.transactions.List(context.Background(), owner, TransactionListInput{Kind: "Income"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1000"}, amounts(got))

	got, err = f.transactions.List(context.Background(), owner, TransactionListInput{Kind: "expense", Start: "2024-06-10", End: "2024-06-10", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"30"}, amounts(got))

	got, err = f.transactions.List(context.Background(), owner, TransactionListInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTransactionService_ListErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		in      TransactionListInput
		wantErr error
	}{
		{"bad kind", TransactionListInput{Kind: "transfer"}, common.ErrValidation},
		{"start without end", TransactionListInput{Start: "2024-06-01"}, common.ErrValidation},
		{"end without start", TransactionListInput{End: "2024-06-01"}, common.ErrValidation},
		{"inverted range", TransactionListInput{Start: "2024-06-02", End: "2024-06-01"}, common.ErrValidation},
		{"bad date", TransactionListInput{Start: "June", End: "2024-06-01"}, common.ErrValidation},
		{"negative limit", TransactionListInput{Limit: -1}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.transactions.List(context.Background(), owner, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.transactions.List(context.Background(), "", TransactionListInput{})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTransactionService_Delete(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")
	tx, err := f.transactions.Create(context.Background(), owner, TransactionInput{CategoryID: "A", Kind: "expense", Amount: "5", Date: "2024-06-01"})
	require.NoError(t, err)

	require.ErrorIs(t, f.transactions.Delete(context.Background(), "owner-2", tx.ID), common.ErrNotFound)
	require.NoError(t, f.transactions.Delete(context.Background(), owner, tx.ID))
	require.ErrorIs(t, f.transactions.Delete(context.Background(), owner, tx.ID), common.ErrNotFound)

	_, err = f.m.Transactions().Get(context.Background(), owner, tx.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
