package services

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// ReportService builds the read-only reports: spend per category over a
// date range and a month's budget reconciliation. Neither call writes to
// any store.
type ReportService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewReportService(m repomanager.RepositoryManager, log logging.Logger) *ReportService {
	return &ReportService{repomanager: m, log: log.With("module", "reports")}
}

// CategoryReport totals the owner's transactions of kind (default expense)
// dated within [start, end] inclusive, one row per category, ordered by
// total descending and then by category ID.
func (s *ReportService) CategoryReport(ctx context.Context, ownerID, kind, start, end string) (*models.CategoryReport, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	rng, err := period.ParseRange(start, end)
	if err != nil {
		return nil, err
	}

	var (
		totals []models.CategoryTotal
		names  map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.repomanager.Transactions().SumByCategory(gctx, ownerID, k, rng)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = categoryNames(gctx, s.repomanager.Categories(), ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.ReportRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, models.ReportRow{
			CategoryID:   t.CategoryID,
			CategoryName: nameOf(names, t.CategoryID),
			Total:        t.Total,
			Count:        t.Count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Total.Cmp(rows[j].Total); c != 0 {
			return c > 0
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})

	s.log.Debug(ctx, "category report built", "owner", ownerID, "kind", k, "rows", len(rows))

	return &models.CategoryReport{
		OwnerID: ownerID,
		Kind:    k,
		Start:   rng.Start,
		End:     rng.End.AddDate(0, 0, -1),
		Rows:    rows,
	}, nil
}

// BudgetReconciliation joins the month's limits with the month's expense
// totals. Every limit yields one row, and so does every spending category
// without a limit (limit 0). Rows are ordered by spent descending and then
// by category ID. A month without a budget reconciles against no limits;
// the budget is not created.
func (s *ReportService) BudgetReconciliation(ctx context.Context, ownerID, month string) (*models.Reconciliation, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	m, err := period.ParseMonth(month)
	if err != nil {
		return nil, err
	}

	var (
		limits []models.Limit
		totals []models.CategoryTotal
		names  map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.repomanager.Budgets().FindByOwnerMonth(gctx, ownerID, m.Token)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		limits = b.Limits.List()
		return nil
	})
	g.Go(func() error {
		var err error
		totals, err = s.repomanager.Transactions().SumByCategory(gctx, ownerID, models.KindExpense, m.Range)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = categoryNames(gctx, s.repomanager.Categories(), ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := reconcile(limits, totals)
	for i := range rows {
		rows[i].CategoryName = nameOf(names, rows[i].CategoryID)
	}

	s.log.Debug(ctx, "budget reconciled", "owner", ownerID, "month", m.Token, "rows", len(rows))

	return &models.Reconciliation{
		OwnerID: ownerID,
		Month:   m.Token,
		Start:   m.Start,
		End:     m.End,
		Rows:    rows,
	}, nil
}

// reconcile is a full outer join of limits and totals on category ID.
func reconcile(limits []models.Limit, totals []models.CategoryTotal) []models.ReconciledRow {
	rows := make([]models.ReconciledRow, 0, len(limits)+len(totals))
	index := make(map[string]int, len(limits)+len(totals))

	for _, l := range limits {
		index[l.CategoryID] = len(rows)
		rows = append(rows, models.ReconciledRow{CategoryID: l.CategoryID, Limit: l.Cap})
	}
	for _, t := range totals {
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(rows)
			index[t.CategoryID] = i
			rows = append(rows, models.ReconciledRow{CategoryID: t.CategoryID})
		}
		rows[i].Spent = rows[i].Spent.Add(t.Total)
	}
	for i := range rows {
		rows[i].Remaining = rows[i].Limit.Sub(rows[i].Spent)
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Spent.Cmp(rows[j].Spent); c != 0 {
			return c > 0
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})
	return rows
}
