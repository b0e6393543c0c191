package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionStatus string
type ProductType string
type Platform string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusRefunded  TransactionStatus = "refunded"

	ProductTypeSubscription ProductType = "subscription"
	ProductTypePick         ProductType = "pick"
	ProductTypePremiumPack  ProductType = "premium_pack"

	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeSubscription, ProductTypePick, ProductTypePremiumPack:
		return true
	}
	return false
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

// Transaction records a purchase. PlatformFee is fixed at purchase time and
// is never recomputed afterwards.
type Transaction struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID                string             `json:"user_id" bson:"user_id"`
	HandicapperID         string             `json:"handicapper_id" bson:"handicapper_id"`
	PickID                string             `json:"pick_id,omitempty" bson:"pick_id,omitempty"`
	SubscriptionID        string             `json:"subscription_id,omitempty" bson:"subscription_id,omitempty"`
	Amount                float64            `json:"amount" bson:"amount"`
	PlatformFee           float64            `json:"platform_fee" bson:"platform_fee"`
	NetAmount             float64            `json:"net_amount" bson:"net_amount"`
	Currency              string             `json:"currency" bson:"currency"`
	Status                TransactionStatus  `json:"status" bson:"status"`
	ProductType           ProductType        `json:"product_type" bson:"product_type"`
	ProductID             string             `json:"product_id" bson:"product_id"`
	ProviderTransactionID string             `json:"transaction_id" bson:"transaction_id"`
	Receipt               string             `json:"-" bson:"receipt,omitempty"`
	Platform              Platform           `json:"platform" bson:"platform"`
	CreatedAt             time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" bson:"updated_at"`
}

func (t *Transaction) Normalize() {
	if t.Status == "" {
		t.Status = TransactionStatusPending
	}
	if t.Currency == "" {
		t.Currency = "usd"
	}
}

func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}
