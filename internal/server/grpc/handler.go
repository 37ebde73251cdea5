package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
)

// toStatus maps service errors to gRPC status codes. Unclassified errors,
// store failures included, are logged and reported as Internal without
// detail.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	default:
		s.logger.Error(ctx, "request failed", "method", method, "error", err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

// call runs fn for the authenticated owner and encodes its result.
func (s *GRPCServer) call(ctx context.Context, method string, fn func(ownerID string) (map[string]any, error)) (*structpb.Struct, error) {
	ownerID, ok := ownerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing owner")
	}

	out, err := fn(ownerID)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}

	resp, err := structpb.NewStruct(out)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

// CategoryReport: {kind?, start, end} -> {kind, start, end, rows}.
func (s *GRPCServer) CategoryReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "CategoryReport", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "kind", "start", "end")
		if err != nil {
			return nil, err
		}
		r, err := s.services.Reports.CategoryReport(ctx, ownerID, f[0], f[1], f[2])
		if err != nil {
			return nil, err
		}
		return categoryReportMap(r), nil
	})
}

// BudgetReconciliation: {month} -> {month, start, end, rows}.
func (s *GRPCServer) BudgetReconciliation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "BudgetReconciliation", func(ownerID string) (map[string]any, error) {
		month, err := str(req, "month")
		if err != nil {
			return nil, err
		}
		r, err := s.services.Reports.BudgetReconciliation(ctx, ownerID, month)
		if err != nil {
			return nil, err
		}
		return reconciliationMap(r), nil
	})
}

func (s *GRPCServer) GetBudget(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "GetBudget", func(ownerID string) (map[string]any, error) {
		month, err := str(req, "month")
		if err != nil {
			return nil, err
		}
		b, err := s.services.Budgets.Get(ctx, ownerID, month)
		if err != nil {
			return nil, err
		}
		return budgetMap(b), nil
	})
}

// AddLimit: {month, category_id, cap} -> budget.
func (s *GRPCServer) AddLimit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "AddLimit", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "month", "category_id", "cap")
		if err != nil {
			return nil, err
		}
		b, err := s.services.Budgets.AddLimit(ctx, ownerID, f[0], f[1], f[2])
		if err != nil {
			return nil, err
		}
		return budgetMap(b), nil
	})
}

func (s *GRPCServer) SetLimitCap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "SetLimitCap", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "month", "category_id", "cap")
		if err != nil {
			return nil, err
		}
		b, err := s.services.Budgets.SetLimitCap(ctx, ownerID, f[0], f[1], f[2])
		if err != nil {
			return nil, err
		}
		return budgetMap(b), nil
	})
}

func (s *GRPCServer) RemoveLimit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "RemoveLimit", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "month", "category_id")
		if err != nil {
			return nil, err
		}
		b, err := s.services.Budgets.RemoveLimit(ctx, ownerID, f[0], f[1])
		if err != nil {
			return nil, err
		}
		return budgetMap(b), nil
	})
}

func (s *GRPCServer) CreateCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "CreateCategory", func(ownerID string) (map[string]any, error) {
		name, err := str(req, "name")
		if err != nil {
			return nil, err
		}
		c, err := s.services.Categories.Create(ctx, ownerID, name)
		if err != nil {
			return nil, err
		}
		return categoryMap(c), nil
	})
}

func (s *GRPCServer) ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "ListCategories", func(ownerID string) (map[string]any, error) {
		list, err := s.services.Categories.List(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(list))
		for i := range list {
			out = append(out, categoryMap(&list[i]))
		}
		return map[string]any{"categories": out}, nil
	})
}

// RenameCategory: {id, name} -> category.
func (s *GRPCServer) RenameCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "RenameCategory", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "id", "name")
		if err != nil {
			return nil, err
		}
		c, err := s.services.Categories.Rename(ctx, ownerID, f[0], f[1])
		if err != nil {
			return nil, err
		}
		return categoryMap(c), nil
	})
}

// DeleteCategory: {id} -> {ok}. Transactions of the category are kept.
func (s *GRPCServer) DeleteCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "DeleteCategory", func(ownerID string) (map[string]any, error) {
		id, err := str(req, "id")
		if err != nil {
			return nil, err
		}
		if err := s.services.Categories.Delete(ctx, ownerID, id); err != nil {
			return nil, err
		}
		return map[string]any{"ok": true}, nil
	})
}

// ListTransactions: {kind?, category_id?, start?, end?, limit?} ->
// {transactions}, newest first.
func (s *GRPCServer) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "ListTransactions", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "kind", "category_id", "start", "end")
		if err != nil {
			return nil, err
		}
		limit, err := intField(req, "limit")
		if err != nil {
			return nil, err
		}
		list, err := s.services.Transactions.List(ctx, ownerID, services.TransactionListInput{
			Kind:       f[0],
			CategoryID: f[1],
			Start:      f[2],
			End:        f[3],
			Limit:      limit,
		})
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(list))
		for i := range list {
			out = append(out, transactionMap(&list[i]))
		}
		return map[string]any{"transactions": out}, nil
	})
}

func (s *GRPCServer) GetTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "GetTransaction", func(ownerID string) (map[string]any, error) {
		id, err := str(req, "id")
		if err != nil {
			return nil, err
		}
		t, err := s.services.Transactions.Get(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		return transactionMap(t), nil
	})
}

// CreateTransaction: {category_id, kind, amount, date, note?} -> transaction.
func (s *GRPCServer) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "CreateTransaction", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "category_id", "kind", "amount", "date", "note")
		if err != nil {
			return nil, err
		}
		t, err := s.services.Transactions.Create(ctx, ownerID, services.TransactionInput{
			CategoryID: f[0],
			Kind:       f[1],
			Amount:     f[2],
			Date:       f[3],
			Note:       f[4],
		})
		if err != nil {
			return nil, err
		}
		return transactionMap(t), nil
	})
}

// PatchTransaction: {id, category_id?, kind?, amount?, date?, note?}. Absent
// fields are left unchanged; null fields are rejected.
func (s *GRPCServer) PatchTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "PatchTransaction", func(ownerID string) (map[string]any, error) {
		id, err := str(req, "id")
		if err != nil {
			return nil, err
		}

		var in services.TransactionPatchInput
		for name, dst := range map[string]**string{
			"category_id": &in.CategoryID,
			"kind":        &in.Kind,
			"amount":      &in.Amount,
			"date":        &in.Date,
			"note":        &in.Note,
		} {
			if *dst, err = optString(req, name); err != nil {
				return nil, err
			}
		}

		t, err := s.services.Transactions.Patch(ctx, ownerID, id, in)
		if err != nil {
			return nil, err
		}
		return transactionMap(t), nil
	})
}

func (s *GRPCServer) IncrementTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "IncrementTransaction", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "id", "delta")
		if err != nil {
			return nil, err
		}
		t, err := s.services.Transactions.Increment(ctx, ownerID, f[0], f[1])
		if err != nil {
			return nil, err
		}
		return transactionMap(t), nil
	})
}

// DeleteTransaction: {id} -> {ok}.
func (s *GRPCServer) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "DeleteTransaction", func(ownerID string) (map[string]any, error) {
		id, err := str(req, "id")
		if err != nil {
			return nil, err
		}
		if err := s.services.Transactions.Delete(ctx, ownerID, id); err != nil {
			return nil, err
		}
		return map[string]any{"ok": true}, nil
	})
}

// PurgeTransactions: {before} -> {deleted}.
func (s *GRPCServer) PurgeTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "PurgeTransactions", func(ownerID string) (map[string]any, error) {
		before, err := str(req, "before")
		if err != nil {
			return nil, err
		}
		n, err := s.services.Transactions.PurgeOlderThan(ctx, ownerID, before)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": n}, nil
	})
}

// ExportCategoryReport: {kind?, start, end} -> {key, url}.
func (s *GRPCServer) ExportCategoryReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, "ExportCategoryReport", func(ownerID string) (map[string]any, error) {
		f, err := fields(req, "kind", "start", "end")
		if err != nil {
			return nil, err
		}
		key, url, err := s.services.Export.ExportCategoryReport(ctx, ownerID, f[0], f[1], f[2])
		if err != nil {
			return nil, err
		}
		return map[string]any{"key": key, "url": url}, nil
	})
}
