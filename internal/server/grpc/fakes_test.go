package grpc

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
)

type fakeReports struct {
	report *models.CategoryReport
	rec    *models.Reconciliation
	err    error

	gotOwner, gotKind, gotStart, gotEnd, gotMonth string
}

func (f *fakeReports) CategoryReport(_ context.Context, ownerID, kind, start, end string) (*models.CategoryReport, error) {
	f.gotOwner, f.gotKind, f.gotStart, f.gotEnd = ownerID, kind, start, end
	return f.report, f.err
}

func (f *fakeReports) BudgetReconciliation(_ context.Context, ownerID, month string) (*models.Reconciliation, error) {
	f.gotOwner, f.gotMonth = ownerID, month
	return f.rec, f.err
}

type fakeBudgets struct {
	budget *models.Budget
	err    error
	calls  []string
}

func (f *fakeBudgets) Get(_ context.Context, ownerID, month string) (*models.Budget, error) {
	f.calls = append(f.calls, "get:"+ownerID+":"+month)
	return f.budget, f.err
}

func (f *fakeBudgets) AddLimit(_ context.Context, ownerID, month, categoryID, limit string) (*models.Budget, error) {
	f.calls = append(f.calls, "add:"+ownerID+":"+month+":"+categoryID+":"+limit)
	return f.budget, f.err
}

func (f *fakeBudgets) SetLimitCap(_ context.Context, ownerID, month, categoryID, limit string) (*models.Budget, error) {
	f.calls = append(f.calls, "set:"+ownerID+":"+month+":"+categoryID+":"+limit)
	return f.budget, f.err
}

func (f *fakeBudgets) RemoveLimit(_ context.Context, ownerID, month, categoryID string) (*models.Budget, error) {
	f.calls = append(f.calls, "remove:"+ownerID+":"+month+":"+categoryID)
	return f.budget, f.err
}

type fakeCategories struct {
	created *models.Category
	list    []models.Category
	err     error
	gotID   string
	gotName string
}

func (f *fakeCategories) Create(_ context.Context, ownerID, name string) (*models.Category, error) {
	f.gotName = name
	return f.created, f.err
}

func (f *fakeCategories) List(_ context.Context, ownerID string) ([]models.Category, error) {
	return f.list, f.err
}

func (f *fakeCategories) Rename(_ context.Context, ownerID, id, name string) (*models.Category, error) {
	f.gotID, f.gotName = id, name
	return f.created, f.err
}

func (f *fakeCategories) Delete(_ context.Context, ownerID, id string) error {
	f.gotID = id
	return f.err
}

type fakeTransactions struct {
	tx       *models.Transaction
	list     []models.Transaction
	deleted  int64
	err      error
	gotIn    services.TransactionInput
	gotList  services.TransactionListInput
	gotPatch services.TransactionPatchInput
	gotID    string
	gotDelta string
	gotCut   string
}

func (f *fakeTransactions) Create(_ context.Context, ownerID string, in services.TransactionInput) (*models.Transaction, error) {
	f.gotIn = in
	return f.tx, f.err
}

func (f *fakeTransactions) Get(_ context.Context, ownerID, id string) (*models.Transaction, error) {
	f.gotID = id
	return f.tx, f.err
}

func (f *fakeTransactions) List(_ context.Context, ownerID string, in services.TransactionListInput) ([]models.Transaction, error) {
	f.gotList = in
	return f.list, f.err
}

func (f *fakeTransactions) Delete(_ context.Context, ownerID, id string) error {
	f.gotID = id
	return f.err
}

func (f *fakeTransactions) Patch(_ context.Context, ownerID, id string, in services.TransactionPatchInput) (*models.Transaction, error) {
	f.gotID, f.gotPatch = id, in
	return f.tx, f.err
}

func (f *fakeTransactions) Increment(_ context.Context, ownerID, id, delta string) (*models.Transaction, error) {
	f.gotID, f.gotDelta = id, delta
	return f.tx, f.err
}

func (f *fakeTransactions) PurgeOlderThan(_ context.Context, ownerID, before string) (int64, error) {
	f.gotCut = before
	return f.deleted, f.err
}

type fakeExport struct {
	key, url string
	err      error
}

func (f *fakeExport) ExportCategoryReport(context.Context, string, string, string, string) (string, string, error) {
	return f.key, f.url, f.err
}
