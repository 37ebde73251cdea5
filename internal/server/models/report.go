package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is a raw per-category aggregate produced by a ledger store.
type CategoryTotal struct {
	CategoryID string
	Total      decimal.Decimal
	Count      int64
}

type ReportRow struct {
	CategoryID   string
	CategoryName string
	Total        decimal.Decimal
	Count        int64
}

// CategoryReport lists totals per category over [Start, End] inclusive.
type CategoryReport struct {
	OwnerID string
	Kind    Kind
	Start   time.Time
	End     time.Time
	Rows    []ReportRow
}

type ReconciledRow struct {
	CategoryID   string
	CategoryName string
	Limit        decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
}

// Reconciliation compares a month's budget limits with actual expenses.
type Reconciliation struct {
	OwnerID string
	Month   string
	Start   time.Time
	End     time.Time
	Rows    []ReconciledRow
}
