// Package mongox contains helpers shared by the MongoDB repositories.
package mongox

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

// Decimal converts d to a BSON Decimal128. Values that do not fit the
// 34-digit Decimal128 precision are rejected rather than rounded.
func Decimal(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("decimal %s: %w", d.String(), err)
	}
	return v, nil
}

// FromDecimal converts a stored Decimal128 back to a decimal.Decimal.
func FromDecimal(v bson.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

// Err maps driver errors onto the common taxonomy: a missing document is
// ErrNotFound, a unique index violation is ErrConflict and everything else
// an opaque store failure for op.
func Err(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", common.ErrConflict, op)
	default:
		return common.StoreFailure(op, err)
	}
}
