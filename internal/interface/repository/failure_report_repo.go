package repository

import (
	"context"
	"time"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoFailureReportRepository implements FailureReportRepository
type MongoFailureReportRepository struct {
	collection *mongo.Collection
}

// NewMongoFailureReportRepository creates a new failure report repository
func NewMongoFailureReportRepository(db *mongo.Database) repository.FailureReportRepository {
	collection := db.Collection("reconcile_failures")

	// Indexes for per-run review and per-flight history
	ctx := context.Background()
	runIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "runId", Value: 1},
			{Key: "occurredAt", Value: 1},
		},
	}
	flightIndex := mongo.IndexModel{
		Keys: bson.M{"flightId": 1},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{runIndex, flightIndex})

	return &MongoFailureReportRepository{
		collection: collection,
	}
}

// Save persists one failure entry
func (r *MongoFailureReportRepository) Save(ctx context.Context, entry *entity.FailureEntry) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}
