package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeNewPick              NotificationType = "new_pick"
	NotificationTypeSubscriptionRenewal  NotificationType = "subscription_renewal"
	NotificationTypeSubscriptionExpiring NotificationType = "subscription_expiring"
	NotificationTypeSale                 NotificationType = "sale"
	NotificationTypeChatMessage          NotificationType = "chat_message"
	NotificationTypeTest                 NotificationType = "test"
)

// NotificationToken is a device push token. One per (UserID, DeviceID).
type NotificationToken struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Token     string             `json:"token" bson:"token"`
	Platform  Platform           `json:"platform" bson:"platform"`
	DeviceID  string             `json:"device_id" bson:"device_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

func (t *NotificationToken) Normalize() {
	if t.Platform == "" {
		t.Platform = PlatformAndroid
	}
}

// NotificationMessage is the provider independent payload of a push.
type NotificationMessage struct {
	Type  NotificationType  `json:"type"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
