package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/aggregation"
	"handicapper/internal/config"
	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/logger"
)

type PickService interface {
	// Pick management
	CreatePick(ctx context.Context, handicapperID string, req *validators.PickCreateRequest) (*models.Pick, error)
	GetPick(ctx context.Context, pickID string) (*models.Pick, error)
	UpdatePickStatus(ctx context.Context, actorID, pickID string, status models.PickStatus) (*models.Pick, error)
	DeletePick(ctx context.Context, actorID, pickID string) error

	// Feeds
	GetPicks(ctx context.Context, filter models.PickFilter) ([]*models.Pick, error)
	GetFollowingPicks(ctx context.Context, userID string, limit int) ([]*models.Pick, error)
	GetTopRatedPicks(ctx context.Context, limit int) ([]*models.Pick, error)

	// Interactions
	LikePick(ctx context.Context, userID, pickID string) (*models.Pick, error)
	SharePick(ctx context.Context, userID, pickID string) (*models.Pick, error)

	// Performance
	GetHandicapperPerformance(ctx context.Context, handicapperID string) (*models.HandicapperPerformance, error)
}

type pickService struct {
	pickRepo            interfaces.PickRepository
	interactionRepo     interfaces.PickInteractionRepository
	userRepo            interfaces.UserRepository
	followRepo          interfaces.FollowRepository
	notificationService NotificationService
	analyticsService    AnalyticsService
	features            *config.FeatureConfig
	logger              *logger.Logger
}

func NewPickService(
	pickRepo interfaces.PickRepository,
	interactionRepo interfaces.PickInteractionRepository,
	userRepo interfaces.UserRepository,
	followRepo interfaces.FollowRepository,
	notificationService NotificationService,
	analyticsService AnalyticsService,
	features *config.FeatureConfig,
	log *logger.Logger,
) PickService {
	return &pickService{
		pickRepo:            pickRepo,
		interactionRepo:     interactionRepo,
		userRepo:            userRepo,
		followRepo:          followRepo,
		notificationService: notificationService,
		analyticsService:    analyticsService,
		features:            features,
		logger:              log,
	}
}

func (s *pickService) CreatePick(ctx context.Context, handicapperID string, req *validators.PickCreateRequest) (*models.Pick, error) {
	if err := validators.ValidatePickCreate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pick := &models.Pick{
		HandicapperID: handicapperID,
		Content:       strings.TrimSpace(req.Content),
		Game:          strings.TrimSpace(req.Game),
		Selection:     strings.TrimSpace(req.Selection),
		Sport:         strings.TrimSpace(req.Sport),
		Odds:          req.Odds,
		Confidence:    req.Confidence,
		IsPaid:        req.IsPaid,
		IsFree:        req.IsFree || !req.IsPaid,
		Status:        models.PickStatusPending,
		Tags:          req.Tags,
		Analysis:      req.Analysis,
		Reasoning:     req.Reasoning,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if pick.IsPaid {
		pick.Price = req.Price
	}
	pick.Normalize()

	if err := s.pickRepo.Create(ctx, pick); err != nil {
		return nil, fmt.Errorf("failed to create pick: %w", err)
	}

	handicapper := s.loadHandicapper(ctx, handicapperID)
	pick.Handicapper = handicapper.ToPublicProfile()

	s.refreshPickStats(ctx, handicapperID)
	s.analyticsService.LogPostPick(ctx, handicapperID, pick.Sport, pick.IsPaid)
	s.notifyFollowers(ctx, handicapper, pick)

	return pick, nil
}

func (s *pickService) notifyFollowers(ctx context.Context, handicapper *models.User, pick *models.Pick) {
	if !s.features.NotifyFollowersOnPick {
		return
	}

	followers, err := s.followRepo.ListFollowers(ctx, handicapper.ID)
	if err != nil {
		s.logger.WithError(err).WithHandicapperID(handicapper.ID).Warn("Failed to load followers for pick notification")
		return
	}
	if len(followers) == 0 {
		return
	}

	s.notificationService.SendNewPickNotification(ctx, followers, handicapper, pick)
}

func (s *pickService) GetPick(ctx context.Context, pickID string) (*models.Pick, error) {
	pick, err := s.getPick(ctx, pickID)
	if err != nil {
		return nil, err
	}
	s.attachHandicappers(ctx, []*models.Pick{pick})
	return pick, nil
}

func (s *pickService) getPick(ctx context.Context, pickID string) (*models.Pick, error) {
	id, err := primitive.ObjectIDFromHex(pickID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid pick id")
	}

	pick, err := s.pickRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("pick", pickID)
		}
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return pick, nil
}

// UpdatePickStatus overwrites the pick's status. With pick transitions
// enforced only pending picks may move, and only to a terminal status.
func (s *pickService) UpdatePickStatus(ctx context.Context, actorID, pickID string, status models.PickStatus) (*models.Pick, error) {
	if !status.Valid() {
		return nil, apperrors.InvalidInput("invalid pick status")
	}

	pick, err := s.getPick(ctx, pickID)
	if err != nil {
		return nil, err
	}
	if pick.HandicapperID != actorID {
		return nil, apperrors.Forbidden("Only the handicapper who posted a pick can grade it")
	}

	if s.features.EnforcePickTransitions && !models.CanTransition(pick.Status, status) {
		return nil, apperrors.InvalidTransition(string(pick.Status), string(status))
	}

	result := status.Result()
	if err := s.pickRepo.UpdateStatus(ctx, pick.ID, status, result); err != nil {
		return nil, fmt.Errorf("failed to update pick status: %w", err)
	}

	s.logger.WithHandicapperID(actorID).WithFields(map[string]interface{}{
		"pick_id": pickID,
		"from":    pick.Status,
		"to":      status,
	}).Info("Pick status updated")

	pick.Status = status
	pick.Result = result
	pick.UpdatedAt = time.Now().UTC()

	s.refreshPickStats(ctx, pick.HandicapperID)

	return pick, nil
}

func (s *pickService) DeletePick(ctx context.Context, actorID, pickID string) error {
	pick, err := s.getPick(ctx, pickID)
	if err != nil {
		return err
	}
	if pick.HandicapperID != actorID {
		return apperrors.Forbidden("Only the handicapper who posted a pick can delete it")
	}

	if err := s.pickRepo.Delete(ctx, pick.ID); err != nil {
		return fmt.Errorf("failed to delete pick: %w", err)
	}

	s.refreshPickStats(ctx, actorID)
	return nil
}

func (s *pickService) GetPicks(ctx context.Context, filter models.PickFilter) ([]*models.Pick, error) {
	picks, err := s.pickRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get picks: %w", err)
	}

	s.attachHandicappers(ctx, picks)
	return picks, nil
}

func (s *pickService) GetFollowingPicks(ctx context.Context, userID string, limit int) ([]*models.Pick, error) {
	if limit <= 0 {
		limit = utils.DefaultPageSize
	}

	following, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	if len(following) == 0 {
		return []*models.Pick{}, nil
	}

	picks, err := s.pickRepo.ListByHandicappers(ctx, following, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get following picks: %w", err)
	}

	s.attachHandicappers(ctx, picks)
	return picks, nil
}

// GetTopRatedPicks takes the latest picks and keeps those posted by pro
// handicappers or handicappers with a high win rate.
func (s *pickService) GetTopRatedPicks(ctx context.Context, limit int) ([]*models.Pick, error) {
	if limit <= 0 {
		limit = utils.DefaultPageSize
	}

	picks, err := s.pickRepo.List(ctx, models.PickFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to get top rated picks: %w", err)
	}

	handicappers := s.lookupHandicappers(ctx, picks)

	top := make([]*models.Pick, 0, len(picks))
	for _, pick := range picks {
		h := handicappers[pick.HandicapperID]
		if !h.QualifiesAsTopRated() {
			continue
		}
		pick.Handicapper = h.ToPublicProfile()
		top = append(top, pick)
	}

	return top, nil
}

func (s *pickService) LikePick(ctx context.Context, userID, pickID string) (*models.Pick, error) {
	pick, err := s.getPick(ctx, pickID)
	if err != nil {
		return nil, err
	}

	liked, err := s.interactionRepo.Exists(ctx, pick.ID, userID, models.InteractionLike)
	if err != nil {
		return nil, fmt.Errorf("failed to check like: %w", err)
	}
	if liked {
		return pick, nil
	}

	count, err := s.interact(ctx, userID, pick, models.InteractionLike, "likes")
	if err != nil {
		// A concurrent like from the same user won the unique index.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return pick, nil
		}
		return nil, fmt.Errorf("failed to like pick: %w", err)
	}
	pick.Likes = int(count)

	return pick, nil
}

func (s *pickService) SharePick(ctx context.Context, userID, pickID string) (*models.Pick, error) {
	pick, err := s.getPick(ctx, pickID)
	if err != nil {
		return nil, err
	}

	count, err := s.interact(ctx, userID, pick, models.InteractionShare, "shares")
	if err != nil {
		return nil, fmt.Errorf("failed to share pick: %w", err)
	}
	pick.Shares = int(count)

	s.analyticsService.LogShare(ctx, userID, "pick", pickID)

	return pick, nil
}

// interact records the interaction and rewrites the pick's counter from a
// fresh count of stored interactions.
func (s *pickService) interact(ctx context.Context, userID string, pick *models.Pick, kind models.InteractionType, counter string) (int64, error) {
	interaction := &models.PickInteraction{
		PickID:    pick.ID,
		UserID:    userID,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		return 0, err
	}

	count, err := s.interactionRepo.Count(ctx, pick.ID, kind)
	if err != nil {
		return 0, err
	}

	if err := s.pickRepo.SetCounter(ctx, pick.ID, counter, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *pickService) GetHandicapperPerformance(ctx context.Context, handicapperID string) (*models.HandicapperPerformance, error) {
	picks, err := s.pickRepo.List(ctx, models.PickFilter{HandicapperID: handicapperID})
	if err != nil {
		return nil, fmt.Errorf("failed to get handicapper picks: %w", err)
	}

	return aggregation.ComputePerformance(handicapperID, picks), nil
}

// refreshPickStats rewrites the denormalized pick count and win rate on the
// handicapper profile. Failures are logged.
func (s *pickService) refreshPickStats(ctx context.Context, handicapperID string) {
	picks, err := s.pickRepo.List(ctx, models.PickFilter{HandicapperID: handicapperID})
	if err != nil {
		s.logger.WithError(err).WithHandicapperID(handicapperID).Warn("Failed to load picks for stats")
		return
	}

	if err := s.userRepo.UpdatePickStats(ctx, handicapperID, len(picks), aggregation.WinRate(picks)); err != nil {
		s.logger.WithError(err).WithHandicapperID(handicapperID).Warn("Failed to update handicapper pick stats")
	}
}

func (s *pickService) loadHandicapper(ctx context.Context, handicapperID string) *models.User {
	user, err := s.userRepo.GetByID(ctx, handicapperID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WithError(err).WithHandicapperID(handicapperID).Warn("Failed to load handicapper")
		}
		return models.DefaultHandicapper(handicapperID)
	}
	return user
}

// lookupHandicappers loads the posters of picks in one query. Unknown ids
// and lookup failures map to the default handicapper.
func (s *pickService) lookupHandicappers(ctx context.Context, picks []*models.Pick) map[string]*models.User {
	ids := make([]string, 0, len(picks))
	seen := make(map[string]bool, len(picks))
	for _, p := range picks {
		if !seen[p.HandicapperID] {
			seen[p.HandicapperID] = true
			ids = append(ids, p.HandicapperID)
		}
	}

	users := map[string]*models.User{}
	if len(ids) > 0 {
		found, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load handicappers for picks")
		} else {
			users = found
		}
	}

	for _, id := range ids {
		if _, ok := users[id]; !ok {
			users[id] = models.DefaultHandicapper(id)
		}
	}
	return users
}

func (s *pickService) attachHandicappers(ctx context.Context, picks []*models.Pick) {
	handicappers := s.lookupHandicappers(ctx, picks)
	for _, pick := range picks {
		pick.Handicapper = handicappers[pick.HandicapperID].ToPublicProfile()
	}
}
