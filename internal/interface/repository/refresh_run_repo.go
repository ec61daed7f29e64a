package repository

import (
	"context"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultRecentRuns = 20

// MongoRefreshRunRepository implements the RefreshRunRepository interface
type MongoRefreshRunRepository struct {
	collection *mongo.Collection
}

// NewMongoRefreshRunRepository creates a new MongoDB refresh run repository
func NewMongoRefreshRunRepository(db *mongo.Database) repository.RefreshRunRepository {
	collection := db.Collection("refresh_runs")

	ctx := context.Background()

	runIDIndex := mongo.IndexModel{
		Keys:    bson.M{"runId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Compound index for the most recent runs of a region
	regionStartedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "region", Value: 1},
			{Key: "startedAt", Value: -1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		runIDIndex,
		regionStartedIndex,
	})

	return &MongoRefreshRunRepository{
		collection: collection,
	}
}

// Save upserts a refresh summary by run ID
func (r *MongoRefreshRunRepository) Save(ctx context.Context, summary *entity.RefreshSummary) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"runId": summary.RunID}, summary, opts)
	return err
}

// FindRecent returns the latest runs, newest first. An empty region matches all regions.
func (r *MongoRefreshRunRepository) FindRecent(ctx context.Context, region string, limit int) ([]*entity.RefreshSummary, error) {
	if limit <= 0 {
		limit = defaultRecentRuns
	}

	filter := bson.M{}
	if region != "" {
		filter["region"] = region
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []*entity.RefreshSummary
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}

	return runs, nil
}
