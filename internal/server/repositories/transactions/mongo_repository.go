package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/mongox"
	"github.com/dmitrijs2005/budgetkeeper/internal/period"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

const Collection = "transactions"

type transactionDoc struct {
	ID         string          `bson:"_id"`
	OwnerID    string          `bson:"owner_id"`
	CategoryID string          `bson:"category_id"`
	Kind       string          `bson:"kind"`
	Amount     bson.Decimal128 `bson:"amount"`
	Date       time.Time       `bson:"date"`
	Note       string          `bson:"note"`
	CreatedAt  time.Time       `bson:"created_at"`
	UpdatedAt  time.Time       `bson:"updated_at"`
}

func toDoc(t *models.Transaction) (transactionDoc, error) {
	amount, err := mongox.Decimal(t.Amount)
	if err != nil {
		return transactionDoc{}, err
	}
	return transactionDoc{
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		CategoryID: t.CategoryID,
		Kind:       string(t.Kind),
		Amount:     amount,
		Date:       t.Date.UTC(),
		Note:       t.Note,
		CreatedAt:  t.CreatedAt.UTC(),
		UpdatedAt:  t.UpdatedAt.UTC(),
	}, nil
}

func (d transactionDoc) model() (*models.Transaction, error) {
	amount, err := mongox.FromDecimal(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s amount: %w", d.ID, err)
	}
	return &models.Transaction{
		ID:         d.ID,
		OwnerID:    d.OwnerID,
		CategoryID: d.CategoryID,
		Kind:       models.Kind(d.Kind),
		Amount:     amount,
		Date:       period.Day(d.Date),
		Note:       d.Note,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

// Indexes backs the owner/date range scans of the aggregation reports.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "category_id", Value: 1}, {Key: "date", Value: -1}}},
	}
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(Collection)}
}

func (r *MongoRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	doc, err := toDoc(t)
	if err != nil {
		return nil, common.Invalid("amount", "%v", err)
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, mongox.Err("create transaction", err)
	}
	return doc.model()
}

func (r *MongoRepository) Get(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	var doc transactionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&doc); err != nil {
		return nil, mongox.Err("get transaction", err)
	}
	return doc.model()
}

// listFilter is the List query document.
func listFilter(ownerID string, f ListFilter) bson.M {
	filter := bson.M{"owner_id": ownerID}
	if f.Kind != "" {
		filter["kind"] = string(f.Kind)
	}
	if f.CategoryID != "" {
		filter["category_id"] = f.CategoryID
	}
	if f.Range != nil {
		filter["date"] = bson.M{"$gte": f.Range.Start.UTC(), "$lt": f.Range.End.UTC()}
	}
	return filter
}

func (r *MongoRepository) List(ctx context.Context, ownerID string, f ListFilter) ([]models.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(f.limit()))

	cursor, err := r.col.Find(ctx, listFilter(ownerID, f), opts)
	if err != nil {
		return nil, mongox.Err("list transactions", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongox.Err("decode transactions", err)
	}

	result := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.model()
		if err != nil {
			return nil, common.StoreFailure("decode transaction", err)
		}
		result = append(result, *t)
	}
	return result, nil
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, op, ownerID, id string, update bson.M) (*models.Transaction, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc transactionDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner_id": ownerID}, update, opts).Decode(&doc)
	if err != nil {
		return nil, mongox.Err(op, err)
	}
	return doc.model()
}

func (r *MongoRepository) Patch(ctx context.Context, ownerID, id string, p models.TransactionPatch, updatedAt time.Time) (*models.Transaction, error) {
	set := bson.M{"updated_at": updatedAt.UTC()}
	if p.CategoryID != nil {
		set["category_id"] = *p.CategoryID
	}
	if p.Kind != nil {
		set["kind"] = string(*p.Kind)
	}
	if p.Amount != nil {
		amount, err := mongox.Decimal(*p.Amount)
		if err != nil {
			return nil, common.Invalid("amount", "%v", err)
		}
		set["amount"] = amount
	}
	if p.Date != nil {
		set["date"] = p.Date.UTC()
	}
	if p.Note != nil {
		set["note"] = *p.Note
	}

	return r.findOneAndUpdate(ctx, "patch transaction", ownerID, id, bson.M{"$set": set})
}

func (r *MongoRepository) IncrementAmount(ctx context.Context, ownerID, id string, delta decimal.Decimal, updatedAt time.Time) (*models.Transaction, error) {
	d, err := mongox.Decimal(delta)
	if err != nil {
		return nil, common.Invalid("delta", "%v", err)
	}
	update := bson.M{
		"$inc": bson.M{"amount": d},
		"$set": bson.M{"updated_at": updatedAt.UTC()},
	}
	return r.findOneAndUpdate(ctx, "increment transaction", ownerID, id, update)
}

// sumPipeline matches the owner's transactions inside rng (and of kind,
// when set) and groups them by category.
func sumPipeline(ownerID string, kind models.Kind, rng period.Range) bson.A {
	match := bson.M{
		"owner_id": ownerID,
		"date":     bson.M{"$gte": rng.Start, "$lt": rng.End},
	}
	if kind != "" {
		match["kind"] = string(kind)
	}
	return bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{
			"_id":   "$category_id",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}},
	}
}

func (r *MongoRepository) SumByCategory(ctx context.Context, ownerID string, kind models.Kind, rng period.Range) ([]models.CategoryTotal, error) {
	cursor, err := r.col.Aggregate(ctx, sumPipeline(ownerID, kind, rng))
	if err != nil {
		return nil, mongox.Err("sum by category", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		CategoryID string          `bson:"_id"`
		Total      bson.Decimal128 `bson:"total"`
		Count      int64           `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, mongox.Err("decode category totals", err)
	}

	result := make([]models.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		total, err := mongox.FromDecimal(row.Total)
		if err != nil {
			return nil, common.StoreFailure("decode category total", err)
		}
		result = append(result, models.CategoryTotal{CategoryID: row.CategoryID, Total: total, Count: row.Count})
	}
	return result, nil
}

func (r *MongoRepository) DeleteOlderThan(ctx context.Context, ownerID string, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"owner_id": ownerID, "date": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, mongox.Err("delete transactions", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return mongox.Err("delete transaction", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
