package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/transactions"
)

// TransactionInput is an unvalidated new transaction as received from a
// client.
type TransactionInput struct {
	CategoryID string
	Kind       string
	Amount     string
	Date       string
	Note       string
}

// TransactionPatchInput is an unvalidated partial update. Nil fields are
// left unchanged.
type TransactionPatchInput struct {
	CategoryID *string
	Kind       *string
	Amount     *string
	Date       *string
	Note       *string
}

// TransactionListInput is an unvalidated List filter. Start and End are
// inclusive dates and must be given together.
type TransactionListInput struct {
	Kind       string
	CategoryID string
	Start      string
	End        string
	Limit      int
}

type TransactionService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewTransactionService(m repomanager.RepositoryManager, log logging.Logger) *TransactionService {
	return &TransactionService{repomanager: m, log: log.With("module", "transactions"), now: utcNow}
}

func parseTxKind(s string) (models.Kind, error) {
	k := models.Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", common.Invalid("kind", "must be income or expense, got %q", s)
	}
	return k, nil
}

// Create validates and stores a transaction. The category must be one of
// the owner's categories.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in TransactionInput) (*models.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	kind, err := parseTxKind(in.Kind)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	date, err := period.ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	if err := checkCategory(ctx, s.repomanager.Categories(), ownerID, in.CategoryID); err != nil {
		return nil, err
	}

	now := s.now()
	return s.repomanager.Transactions().Create(ctx, &models.Transaction{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		CategoryID: in.CategoryID,
		Kind:       kind,
		Amount:     amount,
		Date:       date,
		Note:       in.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// Get returns one of the owner's transactions.
func (s *TransactionService) Get(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.Transactions().Get(ctx, ownerID, id)
}

// List returns the owner's transactions matching in, newest first. At most
// transactions.DefaultListLimit rows come back.
func (s *TransactionService) List(ctx context.Context, ownerID string, in TransactionListInput) ([]models.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	var f transactions.ListFilter
	if in.Kind != "" {
		k, err := parseTxKind(in.Kind)
		if err != nil {
			return nil, err
		}
		f.Kind = k
	}
	f.CategoryID = strings.TrimSpace(in.CategoryID)

	switch {
	case in.Start != "" && in.End != "":
		rng, err := period.ParseRange(in.Start, in.End)
		if err != nil {
			return nil, err
		}
		f.Range = &rng
	case in.Start != "" || in.End != "":
		return nil, common.Invalid("start", "start and end must be given together")
	}

	if in.Limit < 0 {
		return nil, common.Invalid("limit", "must not be negative, got %d", in.Limit)
	}
	f.Limit = in.Limit

	return s.repomanager.Transactions().List(ctx, ownerID, f)
}

// Patch overwrites the present fields of a transaction. Last write wins.
func (s *TransactionService) Patch(ctx context.Context, ownerID, id string, in TransactionPatchInput) (*models.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	var p models.TransactionPatch
	if in.Kind != nil {
		k, err := parseTxKind(*in.Kind)
		if err != nil {
			return nil, err
		}
		p.Kind = &k
	}
	if in.Amount != nil {
		a, err := parseAmount(*in.Amount)
		if err != nil {
			return nil, err
		}
		p.Amount = &a
	}
	if in.Date != nil {
		d, err := period.ParseDate("date", *in.Date)
		if err != nil {
			return nil, err
		}
		p.Date = &d
	}
	if in.CategoryID != nil {
		if err := checkCategory(ctx, s.repomanager.Categories(), ownerID, *in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = in.CategoryID
	}
	p.Note = in.Note

	if p.Empty() {
		return s.repomanager.Transactions().Get(ctx, ownerID, id)
	}
	return s.repomanager.Transactions().Patch(ctx, ownerID, id, p, s.now())
}

// Increment adds delta to the stored amount atomically.
func (s *TransactionService) Increment(ctx context.Context, ownerID, id, delta string) (*models.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	d, err := parseDecimal("delta", delta)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Transactions().IncrementAmount(ctx, ownerID, id, d, s.now())
}

// PurgeOlderThan deletes the owner's transactions dated before the given
// date and returns how many went away.
func (s *TransactionService) PurgeOlderThan(ctx context.Context, ownerID, before string) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	cutoff, err := period.ParseDate("before", before)
	if err != nil {
		return 0, err
	}

	n, err := s.repomanager.Transactions().DeleteOlderThan(ctx, ownerID, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "transactions purged", "owner", ownerID, "before", cutoff.Format(period.DateLayout), "deleted", n)
	return n, nil
}

// Delete removes one transaction.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if err := s.repomanager.Transactions().Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.log.Info(ctx, "transaction deleted", "owner", ownerID, "id", id)
	return nil
}
