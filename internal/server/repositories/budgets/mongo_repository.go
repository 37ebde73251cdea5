package budgets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/mongox"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

const Collection = "budgets"

type limitDoc struct {
	CategoryID string          `bson:"category_id"`
	Cap        bson.Decimal128 `bson:"cap"`
}

type budgetDoc struct {
	ID        string     `bson:"_id"`
	OwnerID   string     `bson:"owner_id"`
	Month     string     `bson:"month"`
	Limits    []limitDoc `bson:"limits"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func (d budgetDoc) model() (*models.Budget, error) {
	b := &models.Budget{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Month:     d.Month,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	for _, l := range d.Limits {
		c, err := mongox.FromDecimal(l.Cap)
		if err != nil {
			return nil, fmt.Errorf("budget %s cap for %s: %w", d.ID, l.CategoryID, err)
		}
		if !b.Limits.Add(l.CategoryID, c) {
			return nil, fmt.Errorf("budget %s: duplicate limit %s", d.ID, l.CategoryID)
		}
	}
	return b, nil
}

// Indexes makes (owner_id, month) the budget identity. AddLimit relies on
// it to turn a racing or duplicate upsert into a duplicate key error.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "month", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

type MongoRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(Collection), now: func() time.Time { return time.Now().UTC() }}
}

func identity(ownerID, month string) bson.M {
	return bson.M{"owner_id": ownerID, "month": month}
}

func (r *MongoRepository) decodeOne(res *mongo.SingleResult, op string) (*models.Budget, error) {
	var d budgetDoc
	if err := res.Decode(&d); err != nil {
		return nil, mongox.Err(op, err)
	}
	b, err := d.model()
	if err != nil {
		return nil, common.StoreFailure(op, err)
	}
	return b, nil
}

func (r *MongoRepository) FindByOwnerMonth(ctx context.Context, ownerID, month string) (*models.Budget, error) {
	return r.decodeOne(r.col.FindOne(ctx, identity(ownerID, month)), "find budget")
}

// insertDefaults are the fields a budget document gets when an upsert
// creates it.
func (r *MongoRepository) insertDefaults(now time.Time, withLimits bool) bson.M {
	m := bson.M{"_id": uuid.NewString(), "created_at": now}
	if withLimits {
		m["limits"] = bson.A{}
	}
	return m
}

func (r *MongoRepository) GetOrCreate(ctx context.Context, ownerID, month string) (*models.Budget, error) {
	now := r.now()
	onInsert := r.insertDefaults(now, true)
	onInsert["updated_at"] = now
	update := bson.M{"$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	b, err := r.decodeOne(r.col.FindOneAndUpdate(ctx, identity(ownerID, month), update, opts), "get or create budget")
	if errors.Is(err, common.ErrConflict) {
		// A concurrent upsert inserted the same budget first.
		return r.FindByOwnerMonth(ctx, ownerID, month)
	}
	return b, err
}

// AddLimit pushes l unless the budget already limits l.CategoryID. The
// filter excludes such a budget, so the upsert then tries to insert a second
// (owner_id, month) document and only the unique index from Indexes turns
// that into common.ErrConflict. Without the index a duplicate budget would
// be created instead; RunMigrations must have run against the database.
func (r *MongoRepository) AddLimit(ctx context.Context, ownerID, month string, l models.Limit) (*models.Budget, error) {
	c, err := mongox.Decimal(l.Cap)
	if err != nil {
		return nil, common.Invalid("cap", "%v", err)
	}

	now := r.now()
	filter := identity(ownerID, month)
	filter["limits.category_id"] = bson.M{"$ne": l.CategoryID}
	update := bson.M{
		"$push":        bson.M{"limits": limitDoc{CategoryID: l.CategoryID, Cap: c}},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": r.insertDefaults(now, false),
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	b, err := r.decodeOne(r.col.FindOneAndUpdate(ctx, filter, update, opts), "add limit")
	if errors.Is(err, common.ErrConflict) {
		return nil, fmt.Errorf("%w: budget %s already has a limit for category %s", common.ErrConflict, month, l.CategoryID)
	}
	return b, err
}

func (r *MongoRepository) SetLimitCap(ctx context.Context, ownerID, month string, l models.Limit) (*models.Budget, error) {
	c, err := mongox.Decimal(l.Cap)
	if err != nil {
		return nil, common.Invalid("cap", "%v", err)
	}

	filter := identity(ownerID, month)
	filter["limits.category_id"] = l.CategoryID
	update := bson.M{"$set": bson.M{"limits.$.cap": c, "updated_at": r.now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	return r.decodeOne(r.col.FindOneAndUpdate(ctx, filter, update, opts), "set limit cap")
}

func (r *MongoRepository) RemoveLimit(ctx context.Context, ownerID, month, categoryID string) (*models.Budget, error) {
	update := bson.M{
		"$pull": bson.M{"limits": bson.M{"category_id": categoryID}},
		"$set":  bson.M{"updated_at": r.now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	return r.decodeOne(r.col.FindOneAndUpdate(ctx, identity(ownerID, month), update, opts), "remove limit")
}
