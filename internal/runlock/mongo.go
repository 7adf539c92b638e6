package runlock

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"k8s.io/utils/clock"
)

// DefaultCollection holds one lease document per locked pipeline.
const DefaultCollection = "etl-locks"

type lease struct {
	Name       string    `bson:"_id"`
	Holder     string    `bson:"holder"`
	AcquiredAt time.Time `bson:"acquiredAt"`
	ExpiresAt  time.Time `bson:"expiresAt"`
}

// leaseCollection is the part of *mongo.Collection the lock uses.
type leaseCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Mongo is a Locker shared by every process using the same database. A
// lease that outlives ttl is treated as abandoned and may be taken over.
type Mongo struct {
	coll  leaseCollection
	ttl   time.Duration
	clock clock.Clock
}

func NewMongo(db *mongo.Database, collection string, ttl time.Duration, clk clock.Clock) *Mongo {
	if collection == "" {
		collection = DefaultCollection
	}
	return newMongo(db.Collection(collection), ttl, clk)
}

func newMongo(coll leaseCollection, ttl time.Duration, clk clock.Clock) *Mongo {
	return &Mongo{coll: coll, ttl: ttl, clock: clk}
}

func (m *Mongo) Acquire(ctx context.Context, name, holder string) error {
	now := m.clock.Now().UTC()
	l := lease{Name: name, Holder: holder, AcquiredAt: now, ExpiresAt: now.Add(m.ttl)}

	_, err := m.coll.InsertOne(ctx, l)
	if err == nil {
		return nil
	} else if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("acquire lock %s: %w", name, err)
	}

	// Take over an expired lease.
	res, err := m.coll.DeleteOne(ctx, bson.D{
		{Key: "_id", Value: name},
		{Key: "expiresAt", Value: bson.D{{Key: "$lt", Value: now}}},
	})
	if err != nil {
		return fmt.Errorf("expire lock %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return ErrLocked
	}
	if _, err := m.coll.InsertOne(ctx, l); mongo.IsDuplicateKeyError(err) {
		return ErrLocked
	} else if err != nil {
		return fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return nil
}

func (m *Mongo) Release(ctx context.Context, name, holder string) error {
	_, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: name}, {Key: "holder", Value: holder}})
	if err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}
