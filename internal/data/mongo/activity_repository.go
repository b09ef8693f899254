// Package mongo provides the MongoDB implementation of the activity-log
// repository. Activity entries are audit breadcrumbs, not financial facts,
// which is why they live outside the relational money store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/atlasbank-portal/internal/domain/activity"
)

const (
	// ActivityCollectionName is the name of the activity-log collection
	ActivityCollectionName = "activity_log"
)

// ActivityRepository implements the activity.Repository interface for MongoDB
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a new MongoDB activity-log repository
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) activity.Repository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new activity-log entry
func (r *ActivityRepository) Create(ctx context.Context, entry *activity.Entry) error {
	collection := r.db.Collection(ActivityCollectionName)

	if _, err := collection.InsertOne(ctx, entry); err != nil {
		r.logger.Error("Failed to create activity-log entry",
			"kind", entry.Kind,
			"operator_id", entry.OperatorID,
			"error", err)
		return fmt.Errorf("failed to create activity-log entry: %w", err)
	}

	return nil
}

// DeleteOlderThan purges entries created before the cutoff
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	collection := r.db.Collection(ActivityCollectionName)

	filter := bson.M{"created_at": bson.M{"$lt": cutoff}}
	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to purge activity-log entries", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to purge activity-log entries: %w", err)
	}

	return result.DeletedCount, nil
}
