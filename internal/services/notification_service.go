package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/logger"
	"handicapper/pkg/metrics"
	"handicapper/pkg/push"
)

type NotificationService interface {
	// Token management
	SaveToken(ctx context.Context, userID, token string, platform models.Platform, deviceID string)
	GetUserTokens(ctx context.Context, userID string) ([]*models.NotificationToken, error)

	// Delivery
	SendToUser(ctx context.Context, userID string, message *models.NotificationMessage) int
	SendToUsers(ctx context.Context, userIDs []string, message *models.NotificationMessage) int

	// Product notifications
	SendNewPickNotification(ctx context.Context, followerIDs []string, handicapper *models.User, pick *models.Pick)
	SendSubscriptionRenewalReminder(ctx context.Context, sub *models.Subscription, productName string)
	SendExpiringSubscriptionNotice(ctx context.Context, sub *models.Subscription, productName string)
	SendExpiringSubscriptionNotices(ctx context.Context, within time.Duration) int
	SendSaleNotification(ctx context.Context, tx *models.Transaction)
}

type notificationService struct {
	tokenRepo        interfaces.NotificationTokenRepository
	subscriptionRepo interfaces.SubscriptionRepository
	fcm              push.PushProvider
	apns             push.PushProvider
	logger           *logger.Logger
	now              func() time.Time
}

// NewNotificationService routes iOS tokens to apns and everything else to
// fcm. Either provider may be nil when it is not configured; tokens for it
// are skipped.
func NewNotificationService(
	tokenRepo interfaces.NotificationTokenRepository,
	subscriptionRepo interfaces.SubscriptionRepository,
	fcm push.PushProvider,
	apns push.PushProvider,
	log *logger.Logger,
) NotificationService {
	return &notificationService{
		tokenRepo:        tokenRepo,
		subscriptionRepo: subscriptionRepo,
		fcm:              fcm,
		apns:             apns,
		logger:           log,
		now:              time.Now,
	}
}

func (s *notificationService) SaveToken(ctx context.Context, userID, token string, platform models.Platform, deviceID string) {
	now := s.now().UTC()
	record := &models.NotificationToken{
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		DeviceID:  deviceID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	record.Normalize()

	if err := s.tokenRepo.Upsert(ctx, record); err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Failed to save notification token")
	}
}

func (s *notificationService) GetUserTokens(ctx context.Context, userID string) ([]*models.NotificationToken, error) {
	tokens, err := s.tokenRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification tokens: %w", err)
	}
	return tokens, nil
}

func (s *notificationService) SendToUser(ctx context.Context, userID string, message *models.NotificationMessage) int {
	tokens, err := s.tokenRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Failed to load notification tokens")
		return 0
	}
	return s.deliver(ctx, tokens, message)
}

func (s *notificationService) SendToUsers(ctx context.Context, userIDs []string, message *models.NotificationMessage) int {
	if len(userIDs) == 0 {
		return 0
	}

	tokens, err := s.tokenRepo.ListByUsers(ctx, userIDs)
	if err != nil {
		s.logger.WithError(err).WithField("users", len(userIDs)).Warn("Failed to load notification tokens")
		return 0
	}
	return s.deliver(ctx, tokens, message)
}

// deliver splits tokens by platform, sends one batch per provider and
// returns how many devices accepted the message.
func (s *notificationService) deliver(ctx context.Context, tokens []*models.NotificationToken, message *models.NotificationMessage) int {
	var ios, other []*push.NotificationRequest
	for _, t := range tokens {
		req := buildPushRequest(t.Token, message)
		if t.Platform == models.PlatformIOS {
			ios = append(ios, req)
		} else {
			other = append(other, req)
		}
	}

	return s.sendBatch(ctx, "apns", s.apns, ios) + s.sendBatch(ctx, "fcm", s.fcm, other)
}

func (s *notificationService) sendBatch(ctx context.Context, name string, provider push.PushProvider, requests []*push.NotificationRequest) int {
	if len(requests) == 0 {
		return 0
	}
	if provider == nil {
		s.logger.WithField("provider", name).Debugf("Push provider not configured, skipping %d tokens", len(requests))
		return 0
	}

	responses, err := provider.SendBulkNotifications(ctx, requests)
	if err != nil {
		metrics.PushesSent.WithLabelValues(name, metrics.ResultFailure).Add(float64(len(requests)))
		s.logger.WithError(err).WithField("provider", name).Warn("Failed to send push notifications")
		return 0
	}

	sent := 0
	for _, resp := range responses {
		if resp == nil {
			continue
		}
		if resp.Success {
			sent++
			metrics.PushesSent.WithLabelValues(name, metrics.ResultSuccess).Inc()
			continue
		}

		metrics.PushesSent.WithLabelValues(name, metrics.ResultFailure).Inc()
		if resp.Unregistered {
			if err := s.tokenRepo.DeleteByToken(ctx, resp.Token); err != nil {
				s.logger.WithError(err).Warn("Failed to remove unregistered token")
			}
		}
	}
	return sent
}

func buildPushRequest(token string, message *models.NotificationMessage) *push.NotificationRequest {
	data := make(map[string]string, len(message.Data)+1)
	for k, v := range message.Data {
		data[k] = v
	}
	data["type"] = string(message.Type)

	return &push.NotificationRequest{
		Token:    token,
		Title:    message.Title,
		Body:     message.Body,
		Data:     data,
		Sound:    "default",
		Priority: push.PriorityHigh,
	}
}

func (s *notificationService) SendNewPickNotification(ctx context.Context, followerIDs []string, handicapper *models.User, pick *models.Pick) {
	message := &models.NotificationMessage{
		Type:  models.NotificationTypeNewPick,
		Title: "New Pick from " + handicapper.DisplayName,
		Body:  pick.Sport + ": " + pick.Game + " - " + pick.Selection,
		Data: map[string]string{
			"pick_id":        pick.ID.Hex(),
			"handicapper_id": handicapper.ID,
		},
	}

	sent := s.SendToUsers(ctx, followerIDs, message)
	s.logger.WithHandicapperID(handicapper.ID).WithFields(map[string]interface{}{
		"pick_id":   pick.ID.Hex(),
		"followers": len(followerIDs),
		"delivered": sent,
	}).Debug("New pick notification sent")
}

func (s *notificationService) SendSubscriptionRenewalReminder(ctx context.Context, sub *models.Subscription, productName string) {
	s.SendToUser(ctx, sub.UserID, &models.NotificationMessage{
		Type:  models.NotificationTypeSubscriptionRenewal,
		Title: "Subscription Renewal Reminder",
		Body:  fmt.Sprintf("Your %s subscription will renew on %s", productName, sub.EndDate.Format("Jan 2, 2006")),
		Data: map[string]string{
			"subscription_id": sub.ID.Hex(),
			"handicapper_id":  sub.HandicapperID,
		},
	})
}

func (s *notificationService) SendExpiringSubscriptionNotice(ctx context.Context, sub *models.Subscription, productName string) {
	days := sub.DaysRemaining(s.now())
	s.SendToUser(ctx, sub.UserID, &models.NotificationMessage{
		Type:  models.NotificationTypeSubscriptionExpiring,
		Title: "Subscription Expiring Soon",
		Body:  fmt.Sprintf("Your %s subscription expires in %d days", productName, days),
		Data: map[string]string{
			"subscription_id": sub.ID.Hex(),
			"handicapper_id":  sub.HandicapperID,
			"days_remaining":  strconv.Itoa(days),
		},
	})
}

// SendExpiringSubscriptionNotices reminds every subscriber whose
// subscription ends within the window. Auto-renewing subscriptions get a
// renewal reminder instead of an expiry notice.
func (s *notificationService) SendExpiringSubscriptionNotices(ctx context.Context, within time.Duration) int {
	now := s.now()
	subs, err := s.subscriptionRepo.ListExpiringBetween(ctx, now, now.Add(within))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load expiring subscriptions")
		return 0
	}

	for _, sub := range subs {
		if sub.AutoRenew {
			s.SendSubscriptionRenewalReminder(ctx, sub, sub.ProductID)
		} else {
			s.SendExpiringSubscriptionNotice(ctx, sub, sub.ProductID)
		}
	}
	return len(subs)
}

func (s *notificationService) SendSaleNotification(ctx context.Context, tx *models.Transaction) {
	s.SendToUser(ctx, tx.HandicapperID, &models.NotificationMessage{
		Type:  models.NotificationTypeSale,
		Title: "New Sale",
		Body:  fmt.Sprintf("You earned %.2f %s from a %s purchase", tx.NetAmount, tx.Currency, tx.ProductType),
		Data: map[string]string{
			"transaction_id": tx.ID.Hex(),
			"product_type":   string(tx.ProductType),
		},
	})
}
