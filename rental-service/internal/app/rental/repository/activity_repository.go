package repository

import (
	"context"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type activityRepository struct {
	activities *Collection[entity.Activity]
}

func NewActivityRepository(ctx context.Context, db *mongo.Database) (ActivityRepository, error) {
	activities := NewCollection[entity.Activity](db, "activities")

	err := activities.EnsureIndexes(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_idx"),
	})
	if err != nil {
		return nil, err
	}

	return &activityRepository{activities: activities}, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}

	id, err := r.activities.Insert(ctx, activity)
	if err != nil {
		return err
	}
	activity.ID = id
	return nil
}

// ListRecent возвращает последние limit записей, новые первыми
func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]entity.Activity, error) {
	return r.activities.FindMany(ctx, bson.M{}, FindOptions{
		Sort:  bson.D{{Key: "timestamp", Value: -1}},
		Limit: int64(limit),
	})
}
