package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	DefaultSubscriptionPeriod = 30 * 24 * time.Hour
)

type Subscription struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"`
	HandicapperID string             `json:"handicapper_id" bson:"handicapper_id"`
	ProductID     string             `json:"product_id" bson:"product_id"`
	TransactionID primitive.ObjectID `json:"transaction_id" bson:"transaction_id"`
	Status        SubscriptionStatus `json:"status" bson:"status"`
	StartDate     time.Time          `json:"start_date" bson:"start_date"`
	EndDate       time.Time          `json:"end_date" bson:"end_date"`
	AutoRenew     bool               `json:"auto_renew" bson:"auto_renew"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func (s *Subscription) Normalize() {
	if s.Status == "" {
		s.Status = SubscriptionStatusActive
	}
}

func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.EndDate)
}

// DaysRemaining rounds up, so a subscription ending in 1h has 1 day left.
func (s *Subscription) DaysRemaining(now time.Time) int {
	left := s.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}
