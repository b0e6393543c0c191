package interfaces

import (
	"context"

	"handicapper/internal/models"
)

type HandicapperQuery struct {
	Search  string
	ProOnly bool
	Sport   string
	Exclude []string
	Limit   int
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Upsert inserts the user or refreshes its sign-in fields. created is true
	// when no record existed.
	Upsert(ctx context.Context, user *models.User) (created bool, err error)
	UpdateProfile(ctx context.Context, id string, updates map[string]interface{}) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error

	// UpdateReviewStats overwrites the denormalized review fields. No
	// concurrency control: the last writer wins.
	UpdateReviewStats(ctx context.Context, id string, stats models.ReviewStats) error
	UpdatePickStats(ctx context.Context, id string, totalPicks int, winRate float64) error

	// AdjustFollowers adds delta to the follower count, never going below 0.
	AdjustFollowers(ctx context.Context, id string, delta int) error

	ListHandicappers(ctx context.Context, query HandicapperQuery) ([]*models.User, error)
}
