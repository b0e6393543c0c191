package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/utils"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/cache"
	"handicapper/pkg/logger"
)

type FollowingService interface {
	Follow(ctx context.Context, userID, handicapperID string) error
	Unfollow(ctx context.Context, userID, handicapperID string) error
	IsFollowing(ctx context.Context, userID, handicapperID string) bool

	GetFollowing(ctx context.Context, userID string) ([]*models.PublicProfile, error)
	GetFollowers(ctx context.Context, handicapperID string) ([]*models.PublicProfile, error)
	GetFollowersCount(ctx context.Context, handicapperID string) int64
	GetFollowingCount(ctx context.Context, userID string) int64

	GetSuggestedHandicappers(ctx context.Context, userID string, limit int) ([]*models.PublicProfile, error)
}

type followingService struct {
	followRepo       interfaces.FollowRepository
	userRepo         interfaces.UserRepository
	cache            CacheService
	analyticsService AnalyticsService
	logger           *logger.Logger
}

func NewFollowingService(
	followRepo interfaces.FollowRepository,
	userRepo interfaces.UserRepository,
	cache CacheService,
	analyticsService AnalyticsService,
	log *logger.Logger,
) FollowingService {
	return &followingService{
		followRepo:       followRepo,
		userRepo:         userRepo,
		cache:            cache,
		analyticsService: analyticsService,
		logger:           log,
	}
}

func (s *followingService) Follow(ctx context.Context, userID, handicapperID string) error {
	if userID == handicapperID {
		return apperrors.InvalidInput("You cannot follow yourself")
	}

	exists, err := s.followRepo.Exists(ctx, userID, handicapperID)
	if err != nil {
		return fmt.Errorf("failed to check follow: %w", err)
	}
	if exists {
		return apperrors.AlreadyExists("Already following this handicapper")
	}

	follow := &models.Follow{
		FollowerID:  userID,
		FollowingID: handicapperID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return apperrors.AlreadyExists("Already following this handicapper")
		}
		return fmt.Errorf("failed to follow handicapper: %w", err)
	}

	s.adjustFollowers(ctx, userID, handicapperID, 1)
	s.analyticsService.LogFollow(ctx, userID, handicapperID, true)

	return nil
}

func (s *followingService) Unfollow(ctx context.Context, userID, handicapperID string) error {
	removed, err := s.followRepo.Delete(ctx, userID, handicapperID)
	if err != nil {
		return fmt.Errorf("failed to unfollow handicapper: %w", err)
	}
	if !removed {
		return apperrors.NotFound("follow", handicapperID)
	}

	s.adjustFollowers(ctx, userID, handicapperID, -1)
	s.analyticsService.LogFollow(ctx, userID, handicapperID, false)

	return nil
}

// adjustFollowers keeps the denormalized follower count in step with the
// edge that was just written. Failures are logged.
func (s *followingService) adjustFollowers(ctx context.Context, userID, handicapperID string, delta int) {
	if err := s.userRepo.AdjustFollowers(ctx, handicapperID, delta); err != nil {
		s.logger.WithError(err).WithHandicapperID(handicapperID).Warn("Failed to update follower count")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, followerCountKey(handicapperID), followingCountKey(userID)); err != nil {
			s.logger.WithError(err).Debug("Failed to invalidate follow counts")
		}
	}
}

func (s *followingService) IsFollowing(ctx context.Context, userID, handicapperID string) bool {
	ok, err := s.followRepo.Exists(ctx, userID, handicapperID)
	if err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Failed to check follow status")
		return false
	}
	return ok
}

func (s *followingService) GetFollowing(ctx context.Context, userID string) ([]*models.PublicProfile, error) {
	ids, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return s.profiles(ctx, ids)
}

func (s *followingService) GetFollowers(ctx context.Context, handicapperID string) ([]*models.PublicProfile, error) {
	ids, err := s.followRepo.ListFollowers(ctx, handicapperID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return s.profiles(ctx, ids)
}

// profiles resolves ids in order. Ids with no user record get the default
// profile.
func (s *followingService) profiles(ctx context.Context, ids []string) ([]*models.PublicProfile, error) {
	out := make([]*models.PublicProfile, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for _, id := range ids {
		user, ok := users[id]
		if !ok {
			user = models.DefaultHandicapper(id)
		}
		out = append(out, user.ToPublicProfile())
	}
	return out, nil
}

func (s *followingService) GetFollowersCount(ctx context.Context, handicapperID string) int64 {
	return s.cachedCount(ctx, followerCountKey(handicapperID), func() (int64, error) {
		return s.followRepo.CountFollowers(ctx, handicapperID)
	})
}

func (s *followingService) GetFollowingCount(ctx context.Context, userID string) int64 {
	return s.cachedCount(ctx, followingCountKey(userID), func() (int64, error) {
		return s.followRepo.CountFollowing(ctx, userID)
	})
}

// cachedCount reads through the cache. Any failure reads as zero.
func (s *followingService) cachedCount(ctx context.Context, key string, count func() (int64, error)) int64 {
	if s.cache != nil {
		var n int64
		err := s.cache.Get(ctx, key, &n)
		if err == nil {
			return n
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithError(err).Debug("Follow count cache read failed")
		}
	}

	n, err := count()
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to count follows")
		return 0
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, n, followCountTTL); err != nil {
			s.logger.WithError(err).Debug("Follow count cache write failed")
		}
	}
	return n
}

// GetSuggestedHandicappers lists pro handicappers the user does not follow
// yet, never including the user.
func (s *followingService) GetSuggestedHandicappers(ctx context.Context, userID string, limit int) ([]*models.PublicProfile, error) {
	if limit <= 0 {
		limit = utils.DefaultSuggestionLimit
	}

	following, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}

	users, err := s.userRepo.ListHandicappers(ctx, interfaces.HandicapperQuery{
		ProOnly: true,
		Exclude: append(following, userID),
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get suggested handicappers: %w", err)
	}

	out := make([]*models.PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublicProfile())
	}
	return out, nil
}
