package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

func TestBudgetService_GetCreatesEmptyBudget(t *testing.T) {
	f := newFixture(t)

	b, err := f.budgets.Get(context.Background(), owner, "2024-06")
	require.NoError(t, err)
	assert.Equal(t, owner, b.OwnerID)
	assert.Equal(t, "2024-06", b.Month)
	assert.Equal(t, 0, b.Limits.Len())

	again, err := f.budgets.Get(context.Background(), owner, "2024-06")
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)
}

func TestBudgetService_AddDuplicateLimitKeepsCap(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	_, err := f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "60")
	require.NoError(t, err)

	b, err := f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "999")
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Nil(t, b)

	b, err = f.budgets.Get(context.Background(), owner, "2024-06")
	require.NoError(t, err)
	c, ok := b.Limits.Get("A")
	require.True(t, ok)
	assert.True(t, dec("60").Equal(c))
	assert.Equal(t, 1, b.Limits.Len())
}

func TestBudgetService_ConcurrentDuplicateAdds(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, confl int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "10")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, common.ErrConflict):
				confl++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, confl)
}

func TestBudgetService_AddLimitValidation(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")
	f.category(t, "owner-2", "X", "Theirs")

	tests := []struct {
		name            string
		month, cat, cap string
		want            error
	}{
		{"bad month", "2024-13", "A", "10", common.ErrValidation},
		{"negative cap", "2024-06", "A", "-1", common.ErrValidation},
		{"not a number", "2024-06", "A", "ten", common.ErrValidation},
		{"missing category", "2024-06", "", "10", common.ErrValidation},
		{"unknown category", "2024-06", "nope", "10", common.ErrValidation},
		{"foreign category", "2024-06", "X", "10", common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.budgets.AddLimit(context.Background(), owner, tt.month, tt.cat, tt.cap)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	b, err := f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "0")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Limits.Len())
}

func TestBudgetService_SetLimitCap(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	_, err := f.budgets.SetLimitCap(context.Background(), owner, "2024-06", "A", "5")
	assert.ErrorIs(t, err, common.ErrNotFound, "no budget yet")

	_, err = f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "60")
	require.NoError(t, err)

	b, err := f.budgets.SetLimitCap(context.Background(), owner, "2024-06", "A", "75.5")
	require.NoError(t, err)
	c, _ := b.Limits.Get("A")
	assert.True(t, dec("75.5").Equal(c))

	_, err = f.budgets.SetLimitCap(context.Background(), owner, "2024-06", "B", "1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.budgets.SetLimitCap(context.Background(), owner, "2024-06", "", "1")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestBudgetService_RemoveLimit(t *testing.T) {
	f := newFixture(t)
	f.category(t, owner, "A", "Groceries")

	_, err := f.budgets.RemoveLimit(context.Background(), owner, "2024-06", "A")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "60")
	require.NoError(t, err)

	b, err := f.budgets.RemoveLimit(context.Background(), owner, "2024-06", "A")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Limits.Len())

	b, err = f.budgets.RemoveLimit(context.Background(), owner, "2024-06", "A")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Limits.Len())

	_, err = f.budgets.AddLimit(context.Background(), owner, "2024-06", "A", "1")
	assert.NoError(t, err, "a removed limit can be added again")
}

func TestBudgetService_RequiresOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.budgets.Get(context.Background(), "", "2024-06")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = f.budgets.AddLimit(context.Background(), " ", "2024-06", "A", "1")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
