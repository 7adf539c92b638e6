package watermark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the run log collection.
const DefaultCollection = "migration-log"

// MongoStore keeps the run log in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{coll: db.Collection(collection)}
}

func (s *MongoStore) LastSuccessfulRun(ctx context.Context, description string) (time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "finish", Value: -1}})
	var last Run
	err := s.coll.FindOne(ctx, bson.D{
		{Key: "description", Value: description},
		{Key: "status", Value: StatusSuccessful},
	}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Epoch, nil
	} else if err != nil {
		return time.Time{}, fmt.Errorf("read last successful run: %w", err)
	}
	return last.Start, nil
}

func (s *MongoStore) RecordRunStart(ctx context.Context, run Run) error {
	if _, err := s.coll.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

func (s *MongoStore) RecordRunOutcome(ctx context.Context, run Run) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "description", Value: run.Description}, {Key: "start", Value: run.Start}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "finish", Value: run.Finish},
			{Key: "executionTime", Value: run.ExecutionTime},
			{Key: "status", Value: run.Status},
		}}},
	)
	if err != nil {
		return fmt.Errorf("record run outcome: %w", err)
	}
	return nil
}
