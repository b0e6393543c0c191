package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"handicapper/internal/config"
	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/logger"
	"handicapper/pkg/metrics"
)

type AnalyticsService interface {
	// Event Tracking
	LogEvent(ctx context.Context, name, userID string, params map[string]interface{})
	Record(ctx context.Context, name, userID string, params map[string]interface{}) error

	// Product events
	LogSignUp(ctx context.Context, userID, method string)
	LogLogin(ctx context.Context, userID, method string)
	LogPostPick(ctx context.Context, userID, sport string, isPaid bool)
	LogPurchase(ctx context.Context, userID string, tx *models.Transaction)
	LogLeaveReview(ctx context.Context, userID, handicapperID string, rating int, comment string)
	LogFollow(ctx context.Context, userID, handicapperID string, following bool)
	LogChat(ctx context.Context, userID, conversationID string)
	LogSearch(ctx context.Context, userID, term string)
	LogShare(ctx context.Context, userID, contentType, itemID string)

	// Reporting
	GetEventCount(ctx context.Context, name string, day time.Time) (int64, error)
}

type analyticsService struct {
	analyticsRepo interfaces.AnalyticsRepository
	cache         CacheService
	config        *config.AnalyticsConfig
	logger        *logger.Logger
	now           func() time.Time
}

func NewAnalyticsService(
	analyticsRepo interfaces.AnalyticsRepository,
	cache CacheService,
	cfg *config.AnalyticsConfig,
	log *logger.Logger,
) AnalyticsService {
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		cache:         cache,
		config:        cfg,
		logger:        log,
		now:           time.Now,
	}
}

// LogEvent records the event in the background. The caller's cancellation
// does not abort the write and failures are only logged.
func (s *analyticsService) LogEvent(ctx context.Context, name, userID string, params map[string]interface{}) {
	if !s.config.Enabled {
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		writeCtx, cancel := context.WithTimeout(detached, s.config.WriteTimeout)
		defer cancel()

		if err := s.Record(writeCtx, name, userID, params); err != nil {
			s.logger.WithError(err).WithField("event", name).Warn("Failed to record analytics event")
		}
	}()
}

func (s *analyticsService) Record(ctx context.Context, name, userID string, params map[string]interface{}) error {
	event := &models.AnalyticsEvent{
		Name:      name,
		UserID:    userID,
		Params:    params,
		CreatedAt: s.now(),
	}
	event.Normalize()

	if err := s.analyticsRepo.Create(ctx, event); err != nil {
		metrics.AnalyticsEvents.WithLabelValues(name, metrics.ResultFailure).Inc()
		return fmt.Errorf("failed to track event: %w", err)
	}
	metrics.AnalyticsEvents.WithLabelValues(name, metrics.ResultSuccess).Inc()

	if s.cache != nil {
		if _, err := s.cache.Increment(ctx, eventCounterKey(name, event.CreatedAt), s.config.CounterTTL); err != nil {
			s.logger.WithError(err).WithField("event", name).Debug("Failed to bump analytics counter")
		}
	}

	return nil
}

func (s *analyticsService) LogSignUp(ctx context.Context, userID, method string) {
	s.LogEvent(ctx, models.EventSignUp, userID, map[string]interface{}{"method": method})
}

func (s *analyticsService) LogLogin(ctx context.Context, userID, method string) {
	s.LogEvent(ctx, models.EventLogin, userID, map[string]interface{}{"method": method})
}

func (s *analyticsService) LogPostPick(ctx context.Context, userID, sport string, isPaid bool) {
	s.LogEvent(ctx, models.EventPostPick, userID, map[string]interface{}{
		"sport":   sport,
		"is_paid": isPaid,
	})
}

func (s *analyticsService) LogPurchase(ctx context.Context, userID string, tx *models.Transaction) {
	s.LogEvent(ctx, models.EventPurchase, userID, map[string]interface{}{
		"transaction_id": tx.ID.Hex(),
		"handicapper_id": tx.HandicapperID,
		"product_type":   string(tx.ProductType),
		"product_id":     tx.ProductID,
		"value":          tx.Amount,
		"currency":       tx.Currency,
	})
}

func (s *analyticsService) LogLeaveReview(ctx context.Context, userID, handicapperID string, rating int, comment string) {
	s.LogEvent(ctx, models.EventLeaveReview, userID, map[string]interface{}{
		"handicapper_id": handicapperID,
		"rating":         rating,
		"has_comment":    comment != "",
		"comment_length": utf8.RuneCountInString(comment),
	})
}

func (s *analyticsService) LogFollow(ctx context.Context, userID, handicapperID string, following bool) {
	action := "follow"
	if !following {
		action = "unfollow"
	}
	s.LogEvent(ctx, models.EventFollow, userID, map[string]interface{}{
		"handicapper_id": handicapperID,
		"action":         action,
	})
}

func (s *analyticsService) LogChat(ctx context.Context, userID, conversationID string) {
	s.LogEvent(ctx, models.EventChat, userID, map[string]interface{}{"conversation_id": conversationID})
}

func (s *analyticsService) LogSearch(ctx context.Context, userID, term string) {
	s.LogEvent(ctx, models.EventSearch, userID, map[string]interface{}{"search_term": term})
}

func (s *analyticsService) LogShare(ctx context.Context, userID, contentType, itemID string) {
	s.LogEvent(ctx, models.EventShare, userID, map[string]interface{}{
		"content_type": contentType,
		"item_id":      itemID,
	})
}

// GetEventCount reads the daily counter, falling back to counting stored
// events when the cache is unavailable.
func (s *analyticsService) GetEventCount(ctx context.Context, name string, day time.Time) (int64, error) {
	if s.cache != nil {
		n, err := s.cache.GetInt(ctx, eventCounterKey(name, day))
		if err == nil {
			return n, nil
		}
		s.logger.WithError(err).Debug("Analytics counter unavailable, counting events")
	}

	day = day.UTC()
	n, err := s.analyticsRepo.CountByName(ctx, name, startOfUTCDay(day), startOfUTCDay(day).Add(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func startOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
