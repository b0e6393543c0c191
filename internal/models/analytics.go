package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventSignUp      = "sign_up"
	EventLogin       = "login"
	EventPostPick    = "post_pick"
	EventPurchase    = "purchase"
	EventLeaveReview = "leave_review"
	EventScreenView  = "screen_view"
	EventSearch      = "search"
	EventShare       = "share"
	EventFollow      = "follow"
	EventChat        = "chat"
)

type AnalyticsEvent struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Name      string                 `json:"name" bson:"name"`
	UserID    string                 `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Params    map[string]interface{} `json:"params" bson:"params"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}

func (e *AnalyticsEvent) Normalize() {
	if e.Params == nil {
		e.Params = map[string]interface{}{}
	}
}
