package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/logger"
	"handicapper/pkg/storage"
)

type UserService interface {
	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	GetHandicapper(ctx context.Context, handicapperID string) (*models.User, error)
	ListHandicappers(ctx context.Context, userID string, query interfaces.HandicapperQuery) ([]*models.PublicProfile, error)

	// Profile management
	UpdateProfile(ctx context.Context, userID string, req *validators.ProfileUpdateRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, userID string, file io.Reader, size int64) (*models.User, error)
}

type userService struct {
	userRepo         interfaces.UserRepository
	storage          storage.StorageProvider
	analyticsService AnalyticsService
	maxAvatarSize    int64
	logger           *logger.Logger
}

func NewUserService(
	userRepo interfaces.UserRepository,
	storageProvider storage.StorageProvider,
	analyticsService AnalyticsService,
	maxAvatarSize int64,
	log *logger.Logger,
) UserService {
	if maxAvatarSize <= 0 {
		maxAvatarSize = utils.MaxImageSize
	}
	return &userService{
		userRepo:         userRepo,
		storage:          storageProvider,
		analyticsService: analyticsService,
		maxAvatarSize:    maxAvatarSize,
		logger:           log,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetHandicapper never reports a missing handicapper: unknown ids resolve
// to the default profile.
func (s *userService) GetHandicapper(ctx context.Context, handicapperID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, handicapperID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.DefaultHandicapper(handicapperID), nil
		}
		return nil, fmt.Errorf("failed to get handicapper: %w", err)
	}
	return user, nil
}

func (s *userService) ListHandicappers(ctx context.Context, userID string, query interfaces.HandicapperQuery) ([]*models.PublicProfile, error) {
	query.Search = strings.TrimSpace(query.Search)
	if query.Limit <= 0 || query.Limit > utils.MaxPageSize {
		query.Limit = utils.DefaultPageSize
	}

	users, err := s.userRepo.ListHandicappers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list handicappers: %w", err)
	}

	if query.Search != "" {
		s.analyticsService.LogSearch(ctx, userID, query.Search)
	}

	out := make([]*models.PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublicProfile())
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *validators.ProfileUpdateRequest) (*models.User, error) {
	if err := validators.ValidateProfileUpdate(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		updates["username"] = strings.TrimSpace(*req.Username)
	}
	if req.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Sports != nil {
		updates["preferences.sports"] = trimAll(*req.Sports)
	}
	if req.BetTypes != nil {
		updates["preferences.bet_types"] = trimAll(*req.BetTypes)
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, updates); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.LogUserAction(userID, "update_profile", map[string]interface{}{"fields": len(updates)})
	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores an image and points the user's avatar at it. The
// previous avatar object is left in place.
func (s *userService) UploadAvatar(ctx context.Context, userID string, file io.Reader, size int64) (*models.User, error) {
	if size > s.maxAvatarSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Avatar must be at most %d bytes", s.maxAvatarSize))
	}

	contentType, body, err := utils.DetectImageContentType(file)
	if err != nil {
		return nil, apperrors.InvalidInput("Avatar must be a JPEG, PNG, WebP or GIF image")
	}

	upload, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          utils.AvatarKey(userID, contentType),
		Reader:       io.LimitReader(body, s.maxAvatarSize),
		ContentType:  contentType,
		Size:         size,
		CacheControl: "public, max-age=31536000",
		Metadata:     map[string]string{"user_id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", utils.ErrFileUploadFailed, err)
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, upload.URL); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
