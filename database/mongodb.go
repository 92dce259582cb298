package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SusheelSathyaraj/TableMigrator/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// the part of *mongo.Collection used for inserts
type documentInserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoDBClient stores each table as a collection of the same name
type MongoDBClient struct {
	URI      string
	DBName   string
	Client   *mongo.Client
	Database *mongo.Database

	// collection lookup, replaced in tests
	collection func(name string) documentInserter
}

var _ Destination = (*MongoDBClient)(nil)

// creating a new MongoDbClient using manual parameters
func NewMongoDBClient(uri, dbname string) *MongoDBClient {
	return &MongoDBClient{
		URI:    uri,
		DBName: dbname,
	}
}

// creating a new MongoDBClient using config
func NewMongoDBClientFromConfig(cfg *config.Config) *MongoDBClient {
	return NewMongoDBClient(cfg.MongoDB.URI, cfg.MongoDatabase())
}

// connecting to mongoDB
func (m *MongoDBClient) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.URI)

	//setting timeout for connection
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	//checking connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.Client = client
	m.Database = client.Database(m.DBName)
	m.collection = func(name string) documentInserter {
		return m.Database.Collection(name)
	}
	return nil
}

// closing the mongodb connection
func (m *MongoDBClient) Close() error {
	if m.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return m.Client.Disconnect(ctx)
	}
	return nil
}

// InsertBatch inserts rows as documents in order. MongoDB keeps the documents
// written before the first failing one, so a failed batch may be partially stored.
func (m *MongoDBClient) InsertBatch(ctx context.Context, table string, rows []Row) error {
	if m.collection == nil {
		return fmt.Errorf("mongodb connection not established")
	}
	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, len(rows))
	for i, row := range rows {
		doc := make(bson.M, len(row))
		for k, v := range row {
			doc[k] = v
		}
		docs[i] = doc
	}

	if _, err := m.collection(table).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to insert %d documents into %s, %w", len(rows), table, err)
	}
	return nil
}
