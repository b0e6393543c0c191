package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating           = 1
	MaxRating           = 5
	MinReviewCommentLen = 10
	MaxReviewCommentLen = 500
)

// Review is one user's rating of one handicapper. There is at most one per
// (UserID, HandicapperID) pair; the store does not enforce it.
type Review struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"`
	HandicapperID string             `json:"handicapper_id" bson:"handicapper_id"`
	UserName      string             `json:"user_name" bson:"user_name"`
	UserAvatar    string             `json:"user_avatar,omitempty" bson:"user_avatar,omitempty"`
	Rating        int                `json:"rating" bson:"rating"`
	Comment       string             `json:"comment" bson:"comment"`
	PurchaseID    string             `json:"purchase_id,omitempty" bson:"purchase_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func (r *Review) Normalize() {
	if r.UserName == "" {
		r.UserName = "Anonymous"
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
}

// RatingDistribution counts reviews per star value.
type RatingDistribution struct {
	One   int `json:"1" bson:"1"`
	Two   int `json:"2" bson:"2"`
	Three int `json:"3" bson:"3"`
	Four  int `json:"4" bson:"4"`
	Five  int `json:"5" bson:"5"`
}

// Add counts one review with the given star value. Out of range values are
// ignored.
func (d *RatingDistribution) Add(stars int) {
	switch stars {
	case 1:
		d.One++
	case 2:
		d.Two++
	case 3:
		d.Three++
	case 4:
		d.Four++
	case 5:
		d.Five++
	}
}

func (d RatingDistribution) Count(stars int) int {
	switch stars {
	case 1:
		return d.One
	case 2:
		return d.Two
	case 3:
		return d.Three
	case 4:
		return d.Four
	case 5:
		return d.Five
	}
	return 0
}

func (d RatingDistribution) Total() int {
	return d.One + d.Two + d.Three + d.Four + d.Five
}

// ReviewStats is the denormalized summary written onto the handicapper.
type ReviewStats struct {
	AverageRating      float64            `json:"average_rating" bson:"average_rating"`
	TotalReviews       int                `json:"total_reviews" bson:"total_reviews"`
	RatingDistribution RatingDistribution `json:"rating_distribution" bson:"rating_distribution"`
}
