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

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection(database.CollectionTransactions),
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	tx.Normalize()

	if _, err := r.collection.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

func (r *transactionRepository) GetByProviderTransactionID(ctx context.Context, providerTxID string) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"transaction_id": providerTxID}, providerTxID)
}

func (r *transactionRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.collection.FindOne(ctx, filter).Decode(&tx); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("transaction", key)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	tx.Normalize()
	return &tx, nil
}

func (r *transactionRepository) HasCompletedPurchase(ctx context.Context, userID, handicapperID string) (bool, error) {
	return r.exists(ctx, bson.M{
		"user_id":        userID,
		"handicapper_id": handicapperID,
		"status":         models.TransactionStatusCompleted,
	})
}

func (r *transactionRepository) HasPurchasedPick(ctx context.Context, userID, pickID string) (bool, error) {
	return r.exists(ctx, bson.M{
		"user_id": userID,
		"pick_id": pickID,
		"status":  models.TransactionStatusCompleted,
	})
}

func (r *transactionRepository) ExistsForUser(ctx context.Context, userID, providerTxID string) (bool, error) {
	return r.exists(ctx, bson.M{
		"user_id":        userID,
		"transaction_id": providerTxID,
	})
}

func (r *transactionRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query transactions: %w", err)
	}
	return n > 0, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find user transactions: %w", err)
	}

	return decodeAll[models.Transaction](ctx, cursor)
}

func (r *transactionRepository) ListCompletedByHandicapper(ctx context.Context, handicapperID string) ([]*models.Transaction, error) {
	filter := bson.M{
		"handicapper_id": handicapperID,
		"status":         models.TransactionStatusCompleted,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find handicapper transactions: %w", err)
	}

	return decodeAll[models.Transaction](ctx, cursor)
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if res.MatchedCount == 0 {
		return notFound("transaction", id.Hex())
	}

	return nil
}

type subscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) interfaces.SubscriptionRepository {
	return &subscriptionRepository{
		collection: db.Collection(database.CollectionSubscriptions),
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	sub.Normalize()

	if _, err := r.collection.InsertOne(ctx, sub); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "end_date", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find user subscriptions: %w", err)
	}

	return decodeAll[models.Subscription](ctx, cursor)
}

func (r *subscriptionRepository) HasActive(ctx context.Context, userID, handicapperID string, now time.Time) (bool, error) {
	filter := bson.M{
		"user_id":        userID,
		"handicapper_id": handicapperID,
		"status":         models.SubscriptionStatusActive,
		"end_date":       bson.M{"$gt": now},
	}

	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	return n > 0, nil
}

func (r *subscriptionRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Subscription, error) {
	filter := bson.M{
		"status":   models.SubscriptionStatusActive,
		"end_date": bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring subscriptions: %w", err)
	}

	return decodeAll[models.Subscription](ctx, cursor)
}

func (r *subscriptionRepository) UpdateStatusByTransaction(ctx context.Context, transactionID primitive.ObjectID, status models.SubscriptionStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}

	if _, err := r.collection.UpdateMany(ctx, bson.M{"transaction_id": transactionID}, update); err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	return nil
}
