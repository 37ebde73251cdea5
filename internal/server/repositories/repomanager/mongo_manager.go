package repomanager

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/budgets"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/transactions"
)

// MongoRepositoryManager vends MongoDB-backed repositories over one client.
type MongoRepositoryManager struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions *transactions.MongoRepository
	categories   *categories.MongoRepository
	budgets      *budgets.MongoRepository
}

func NewMongoRepositoryManager(client *mongo.Client, database string) *MongoRepositoryManager {
	db := client.Database(database)
	return &MongoRepositoryManager{
		client:       client,
		db:           db,
		transactions: transactions.NewMongoRepository(db),
		categories:   categories.NewMongoRepository(db),
		budgets:      budgets.NewMongoRepository(db),
	}
}

// OpenMongo connects to uri and pings the primary.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoRepositoryManager(client, database), nil
}

func (m *MongoRepositoryManager) Transactions() transactions.Repository { return m.transactions }
func (m *MongoRepositoryManager) Categories() categories.Repository     { return m.categories }
func (m *MongoRepositoryManager) Budgets() budgets.Repository           { return m.budgets }

// collectionIndexes lists the indexes RunMigrations creates, per collection.
func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		transactions.Collection: transactions.Indexes(),
		categories.Collection:   categories.Indexes(),
		budgets.Collection:      budgets.Indexes(),
	}
}

// RunMigrations creates the indexes of every collection. Creating an
// existing index is a no-op on the server.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	for col, models := range collectionIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := m.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
