package grpc

import (
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// optString reads an optional scalar field. Absent yields nil; an explicit
// null is a validation error. Numbers are accepted for amounts and caps but
// strings keep exact decimals.
func optString(in *structpb.Struct, field string) (*string, error) {
	v, ok := in.GetFields()[field]
	if !ok {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, common.Invalid(field, "must not be null")
	case *structpb.Value_StringValue:
		return &k.StringValue, nil
	case *structpb.Value_NumberValue:
		s := strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
		return &s, nil
	default:
		return nil, common.Invalid(field, "must be a string")
	}
}

// str reads a field that is treated as "" when absent.
func str(in *structpb.Struct, field string) (string, error) {
	p, err := optString(in, field)
	if err != nil || p == nil {
		return "", err
	}
	return *p, nil
}

// fields reads several str fields at once, stopping at the first error.
func fields(in *structpb.Struct, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		v, err := str(in, n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// intField reads an optional integer field; absent is 0.
func intField(in *structpb.Struct, field string) (int, error) {
	v, err := str(in, field)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, common.Invalid(field, "must be an integer, got %q", v)
	}
	return n, nil
}

func categoryReportMap(r *models.CategoryReport) map[string]any {
	rows := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, map[string]any{
			"category_id":   row.CategoryID,
			"category_name": row.CategoryName,
			"total":         row.Total.String(),
			"count":         row.Count,
		})
	}
	return map[string]any{
		"kind":  string(r.Kind),
		"start": r.Start.Format(period.DateLayout),
		"end":   r.End.Format(period.DateLayout),
		"rows":  rows,
	}
}

func reconciliationMap(r *models.Reconciliation) map[string]any {
	rows := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, map[string]any{
			"category_id":   row.CategoryID,
			"category_name": row.CategoryName,
			"limit":         row.Limit.String(),
			"spent":         row.Spent.String(),
			"remaining":     row.Remaining.String(),
		})
	}
	return map[string]any{
		"month": r.Month,
		"start": r.Start.Format(period.DateLayout),
		"end":   r.End.Format(period.DateLayout),
		"rows":  rows,
	}
}

func budgetMap(b *models.Budget) map[string]any {
	limits := make([]any, 0, b.Limits.Len())
	for _, l := range b.Limits.List() {
		limits = append(limits, map[string]any{
			"category_id": l.CategoryID,
			"cap":         l.Cap.String(),
		})
	}
	return map[string]any{
		"id":     b.ID,
		"month":  b.Month,
		"limits": limits,
	}
}

func categoryMap(c *models.Category) map[string]any {
	return map[string]any{
		"id":   c.ID,
		"name": c.Name,
	}
}

func transactionMap(t *models.Transaction) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"category_id": t.CategoryID,
		"kind":        string(t.Kind),
		"amount":      t.Amount.String(),
		"date":        t.Date.Format(period.DateLayout),
		"note":        t.Note,
	}
}
