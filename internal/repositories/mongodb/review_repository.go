package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/database"
)

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection(database.CollectionReviews),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

func (r *reviewRepository) GetByUserAndHandicapper(ctx context.Context, userID, handicapperID string) (*models.Review, error) {
	filter := bson.M{
		"user_id":        userID,
		"handicapper_id": handicapperID,
	}
	return r.findOne(ctx, filter, userID+"/"+handicapperID)
}

func (r *reviewRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, filter).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("review", key)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	review.Normalize()
	return &review, nil
}

func (r *reviewRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	update := bson.M{
		"$set": bson.M{
			"rating":     rating,
			"comment":    comment,
			"updated_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review models.Review
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("review", id.Hex())
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	review.Normalize()
	return &review, nil
}

func (r *reviewRepository) ListByHandicapper(ctx context.Context, handicapperID string, limit int) ([]*models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"handicapper_id": handicapperID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews by handicapper: %w", err)
	}

	return decodeAll[models.Review](ctx, cursor)
}
