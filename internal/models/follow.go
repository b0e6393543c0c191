package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is a directed edge from a user to the handicapper they follow.
type Follow struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FollowerID  string             `json:"follower_id" bson:"follower_id"`
	FollowingID string             `json:"following_id" bson:"following_id"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
