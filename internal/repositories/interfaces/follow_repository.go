package interfaces

import (
	"context"

	"handicapper/internal/models"
)

type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	// Delete reports whether an edge was removed.
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowing(ctx context.Context, followerID string) ([]string, error)
	ListFollowers(ctx context.Context, followingID string) ([]string, error)
	CountFollowers(ctx context.Context, followingID string) (int64, error)
	CountFollowing(ctx context.Context, followerID string) (int64, error)
}
