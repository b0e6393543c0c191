package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetByProviderTransactionID(ctx context.Context, providerTxID string) (*models.Transaction, error)

	// HasCompletedPurchase is an existence check over completed
	// transactions for the pair. Product type and amount are not considered.
	HasCompletedPurchase(ctx context.Context, userID, handicapperID string) (bool, error)
	HasPurchasedPick(ctx context.Context, userID, pickID string) (bool, error)
	ExistsForUser(ctx context.Context, userID, providerTxID string) (bool, error)

	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
	ListCompletedByHandicapper(ctx context.Context, handicapperID string) ([]*models.Transaction, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error)
	HasActive(ctx context.Context, userID, handicapperID string, now time.Time) (bool, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Subscription, error)
	UpdateStatusByTransaction(ctx context.Context, transactionID primitive.ObjectID, status models.SubscriptionStatus) error
}
