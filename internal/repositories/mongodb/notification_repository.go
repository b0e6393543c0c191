package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/database"
)

type notificationTokenRepository struct {
	collection *mongo.Collection
}

func NewNotificationTokenRepository(db *mongo.Database) interfaces.NotificationTokenRepository {
	return &notificationTokenRepository{
		collection: db.Collection(database.CollectionNotificationTokens),
	}
}

func (r *notificationTokenRepository) Upsert(ctx context.Context, token *models.NotificationToken) error {
	now := time.Now().UTC()
	token.Normalize()

	filter := bson.M{"user_id": token.UserID, "device_id": token.DeviceID}
	update := bson.M{
		"$set": bson.M{
			"token":      token.Token,
			"platform":   token.Platform,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save notification token: %w", err)
	}

	return nil
}

func (r *notificationTokenRepository) ListByUser(ctx context.Context, userID string) ([]*models.NotificationToken, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find notification tokens: %w", err)
	}

	return decodeAll[models.NotificationToken](ctx, cursor)
}

func (r *notificationTokenRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*models.NotificationToken, error) {
	if len(userIDs) == 0 {
		return []*models.NotificationToken{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find notification tokens: %w", err)
	}

	return decodeAll[models.NotificationToken](ctx, cursor)
}

func (r *notificationTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("failed to delete notification token: %w", err)
	}
	return nil
}
