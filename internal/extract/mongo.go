package extract

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Mongo is a Finder backed by a MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database string, log *zap.Logger) (*Mongo, error) {
	log.Info("connecting to MongoDB", zap.String("database", database))
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", database))
	return &Mongo{client: client, db: client.Database(database), log: log}, nil
}

// Database returns the database the Finder reads from.
func (m *Mongo) Database() *mongo.Database { return m.db }

func (m *Mongo) Find(ctx context.Context, q Query, out any) error {
	opts := options.Find()
	if len(q.Projection) > 0 {
		opts.SetProjection(projectionDoc(q.Projection))
	}
	cur, err := m.db.Collection(q.Collection).Find(ctx, filterDoc(q.Filter), opts)
	if err != nil {
		return fmt.Errorf("query %s failed: %w", q.Collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s failed: %w", q.Collection, err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
