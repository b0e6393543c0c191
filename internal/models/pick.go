package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PickStatus string
type PickResult string
type InteractionType string

const (
	PickStatusPending PickStatus = "pending"
	PickStatusWon     PickStatus = "won"
	PickStatusLost    PickStatus = "lost"
	PickStatusPush    PickStatus = "push"
	PickStatusVoid    PickStatus = "void"

	PickResultWin  PickResult = "win"
	PickResultLoss PickResult = "loss"
	PickResultPush PickResult = "push"

	InteractionLike     InteractionType = "like"
	InteractionComment  InteractionType = "comment"
	InteractionShare    InteractionType = "share"
	InteractionPurchase InteractionType = "purchase"
)

func (s PickStatus) Valid() bool {
	switch s {
	case PickStatusPending, PickStatusWon, PickStatusLost, PickStatusPush, PickStatusVoid:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined from s.
func (s PickStatus) IsTerminal() bool {
	return s.Valid() && s != PickStatusPending
}

// Result maps a graded status to its result. Pending and void have none.
func (s PickStatus) Result() PickResult {
	switch s {
	case PickStatusWon:
		return PickResultWin
	case PickStatusLost:
		return PickResultLoss
	case PickStatusPush:
		return PickResultPush
	}
	return ""
}

// CanTransition reports whether from -> to is an edge of the pick state
// machine: pending -> {won, lost, push, void}.
func CanTransition(from, to PickStatus) bool {
	return from == PickStatusPending && to.IsTerminal()
}

type Pick struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HandicapperID string             `json:"handicapper_id" bson:"handicapper_id"`
	Content       string             `json:"content" bson:"content"`
	Game          string             `json:"game" bson:"game"`
	Selection     string             `json:"pick" bson:"pick"`
	Sport         string             `json:"sport" bson:"sport"`
	Odds          string             `json:"odds,omitempty" bson:"odds,omitempty"`
	Confidence    int                `json:"confidence" bson:"confidence"`
	IsPaid        bool               `json:"is_paid" bson:"is_paid"`
	IsFree        bool               `json:"is_free" bson:"is_free"`
	Price         float64            `json:"price" bson:"price"`
	Likes         int                `json:"likes" bson:"likes"`
	Comments      int                `json:"comments" bson:"comments"`
	Shares        int                `json:"shares" bson:"shares"`
	Status        PickStatus         `json:"status" bson:"status"`
	Result        PickResult         `json:"result,omitempty" bson:"result,omitempty"`
	Tags          []string           `json:"tags" bson:"tags"`
	Analysis      string             `json:"analysis,omitempty" bson:"analysis,omitempty"`
	Reasoning     string             `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`

	Handicapper *PublicProfile `json:"handicapper,omitempty" bson:"-"`
}

func (p *Pick) Normalize() {
	if p.Status == "" {
		p.Status = PickStatusPending
	}
	if p.Result == "" {
		p.Result = p.Status.Result()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Likes < 0 {
		p.Likes = 0
	}
	if p.Shares < 0 {
		p.Shares = 0
	}
	if p.Comments < 0 {
		p.Comments = 0
	}
}

// Outcome is the pick's terminal result, if any, without requiring Normalize.
func (p *Pick) Outcome() PickResult {
	if p.Result != "" {
		return p.Result
	}
	return p.Status.Result()
}

func (p *Pick) HasResult() bool {
	switch p.Outcome() {
	case PickResultWin, PickResultLoss, PickResultPush:
		return true
	}
	return false
}

type PickInteraction struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PickID    primitive.ObjectID `json:"pick_id" bson:"pick_id"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Type      InteractionType    `json:"type" bson:"type"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// PickFilter narrows pick listings. Nil pointers mean "any".
type PickFilter struct {
	HandicapperID string
	Sport         string
	IsPaid        *bool
	IsFree        *bool
	Status        PickStatus
	Limit         int
}
