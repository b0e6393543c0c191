package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/database"
)

type followRepository struct {
	collection *mongo.Collection
}

func NewFollowRepository(db *mongo.Database) interfaces.FollowRepository {
	return &followRepository{
		collection: db.Collection(database.CollectionFollowing),
	}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if follow.ID.IsZero() {
		follow.ID = primitive.NewObjectID()
	}
	follow.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("already following")
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}

	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	filter := bson.M{"follower_id": followerID, "following_id": followingID}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return n > 0, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID string) ([]string, error) {
	return r.listIDs(ctx, bson.M{"follower_id": followerID}, "following_id")
}

func (r *followRepository) ListFollowers(ctx context.Context, followingID string) ([]string, error) {
	return r.listIDs(ctx, bson.M{"following_id": followingID}, "follower_id")
}

func (r *followRepository) listIDs(ctx context.Context, filter bson.M, field string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{field: 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make([]string, 0)
	for cursor.Next(ctx) {
		var follow models.Follow
		if err := cursor.Decode(&follow); err != nil {
			return nil, fmt.Errorf("failed to decode follow: %w", err)
		}
		if field == "following_id" {
			ids = append(ids, follow.FollowingID)
		} else {
			ids = append(ids, follow.FollowerID)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return ids, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, followingID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"following_id": followingID})
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return n, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"follower_id": followerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return n, nil
}
