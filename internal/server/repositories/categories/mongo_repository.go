package categories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/mongox"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

const Collection = "categories"

type categoryDoc struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDoc(c *models.Category) categoryDoc {
	return categoryDoc{ID: c.ID, OwnerID: c.OwnerID, Name: c.Name, CreatedAt: c.CreatedAt.UTC()}
}

func (d categoryDoc) model() models.Category {
	return models.Category{ID: d.ID, OwnerID: d.OwnerID, Name: d.Name, CreatedAt: d.CreatedAt.UTC()}
}

// Indexes lists the indexes the collection needs.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(Collection)}
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if _, err := r.col.InsertOne(ctx, toDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrConflict, c.Name)
		}
		return nil, mongox.Err("create category", err)
	}
	return c, nil
}

func (r *MongoRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, mongox.Err("find categories", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongox.Err("decode categories", err)
	}

	result := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.model())
	}
	return result, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Category, error) {
	var d categoryDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&d)
	if err != nil {
		return nil, mongox.Err("find category", err)
	}
	c := d.model()
	return &c, nil
}

func (r *MongoRepository) Rename(ctx context.Context, ownerID, id, name string) (*models.Category, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d categoryDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{"name": name}},
		opts,
	).Decode(&d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: category %q already exists", common.ErrConflict, name)
		}
		return nil, mongox.Err("rename category", err)
	}
	c := d.model()
	return &c, nil
}

func (r *MongoRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return mongox.Err("delete category", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
