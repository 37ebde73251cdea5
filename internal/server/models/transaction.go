// Package models defines the finance entities shared by stores and services.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells whether a transaction adds to or takes from the owner's money.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single dated ledger record. Amount is always positive;
// the sign is implied by Kind. Date has day precision (midnight UTC).
type Transaction struct {
	ID         string
	OwnerID    string
	CategoryID string
	Kind       Kind
	Amount     decimal.Decimal
	Date       time.Time
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TransactionPatch carries the fields to overwrite. Nil fields keep the
// stored value.
type TransactionPatch struct {
	CategoryID *string
	Kind       *Kind
	Amount     *decimal.Decimal
	Date       *time.Time
	Note       *string
}

func (p TransactionPatch) Empty() bool {
	return p.CategoryID == nil && p.Kind == nil && p.Amount == nil && p.Date == nil && p.Note == nil
}

// Apply returns t with the present patch fields written over it.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	return t
}
