package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/database"
)

type analyticsRepository struct {
	collection *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) interfaces.AnalyticsRepository {
	return &analyticsRepository{
		collection: db.Collection(database.CollectionAnalyticsEvents),
	}
}

func (r *analyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.Normalize()

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to store analytics event: %w", err)
	}

	return nil
}

func (r *analyticsRepository) CountByName(ctx context.Context, name string, from, to time.Time) (int64, error) {
	filter := bson.M{
		"name":       name,
		"created_at": bson.M{"$gte": from, "$lt": to},
	}

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count analytics events: %w", err)
	}
	return n, nil
}
