package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/models"
	"handicapper/pkg/logger"
	"handicapper/pkg/push"
)

var notifyNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newNotificationFixture(fcm, apns push.PushProvider) (*mockTokenRepo, *mockSubscriptionRepo, NotificationService) {
	tokens := &mockTokenRepo{}
	subs := &mockSubscriptionRepo{}
	svc := NewNotificationService(tokens, subs, fcm, apns, logger.NewNop())
	svc.(*notificationService).now = func() time.Time { return notifyNow }
	return tokens, subs, svc
}

func requestTokens(reqs []*push.NotificationRequest) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Token)
	}
	return out
}

func TestNotificationService_SaveToken(t *testing.T) {
	ctx := context.Background()
	tokens, _, svc := newNotificationFixture(nil, nil)
	tokens.On("Upsert", ctx, mock.MatchedBy(func(tok *models.NotificationToken) bool {
		return tok.UserID == "u1" && tok.Token == "tok" && tok.Platform == models.PlatformAndroid && tok.DeviceID == "pixel"
	})).Return(errStore)

	// Failures are logged, never surfaced.
	svc.SaveToken(ctx, "u1", "tok", "", "pixel")

	tokens.AssertExpectations(t)
}

func TestNotificationService_SendToUser_RoutesByPlatform(t *testing.T) {
	ctx := context.Background()
	fcm := &mockPushProvider{}
	apns := &mockPushProvider{}
	tokens, _, svc := newNotificationFixture(fcm, apns)

	tokens.On("ListByUser", ctx, "u1").Return([]*models.NotificationToken{
		{Token: "iphone", Platform: models.PlatformIOS},
		{Token: "pixel", Platform: models.PlatformAndroid},
		{Token: "stale", Platform: models.PlatformAndroid},
	}, nil)

	apns.On("SendBulkNotifications", ctx, mock.MatchedBy(func(reqs []*push.NotificationRequest) bool {
		return assert.ObjectsAreEqual([]string{"iphone"}, requestTokens(reqs))
	})).Return([]*push.NotificationResponse{{Token: "iphone", Success: true}}, nil)

	fcm.On("SendBulkNotifications", ctx, mock.MatchedBy(func(reqs []*push.NotificationRequest) bool {
		return assert.ObjectsAreEqual([]string{"pixel", "stale"}, requestTokens(reqs)) &&
			reqs[0].Data["type"] == string(models.NotificationTypeTest) &&
			reqs[0].Priority == push.PriorityHigh
	})).Return([]*push.NotificationResponse{
		{Token: "pixel", Success: true},
		{Token: "stale", Success: false, Unregistered: true},
	}, nil)

	tokens.On("DeleteByToken", ctx, "stale").Return(nil)

	sent := svc.SendToUser(ctx, "u1", &models.NotificationMessage{
		Type:  models.NotificationTypeTest,
		Title: "Hello",
		Body:  "World",
	})

	assert.Equal(t, 2, sent)
	tokens.AssertExpectations(t)
	apns.AssertExpectations(t)
	fcm.AssertExpectations(t)
}

func TestNotificationService_SendToUser_SkipsMissingProvider(t *testing.T) {
	ctx := context.Background()
	fcm := &mockPushProvider{}
	tokens, _, svc := newNotificationFixture(fcm, nil)

	tokens.On("ListByUser", ctx, "u1").Return([]*models.NotificationToken{
		{Token: "iphone", Platform: models.PlatformIOS},
	}, nil)

	sent := svc.SendToUser(ctx, "u1", &models.NotificationMessage{Type: models.NotificationTypeTest})

	assert.Zero(t, sent)
	fcm.AssertNotCalled(t, "SendBulkNotifications", mock.Anything, mock.Anything)
}

func TestNotificationService_SendNewPickNotification(t *testing.T) {
	ctx := context.Background()
	fcm := &mockPushProvider{}
	tokens, _, svc := newNotificationFixture(fcm, nil)

	pick := &models.Pick{ID: primitive.NewObjectID(), Sport: "NBA", Game: "LAL @ BOS", Selection: "BOS -3.5"}
	handicapper := &models.User{ID: "h1", DisplayName: "Sharp Sam"}

	tokens.On("ListByUsers", ctx, []string{"u1", "u2"}).Return([]*models.NotificationToken{
		{Token: "a", Platform: models.PlatformAndroid},
	}, nil)
	fcm.On("SendBulkNotifications", ctx, mock.MatchedBy(func(reqs []*push.NotificationRequest) bool {
		r := reqs[0]
		return r.Title == "New Pick from Sharp Sam" &&
			r.Body == "NBA: LAL @ BOS - BOS -3.5" &&
			r.Data["pick_id"] == pick.ID.Hex() &&
			r.Data["type"] == string(models.NotificationTypeNewPick)
	})).Return([]*push.NotificationResponse{{Token: "a", Success: true}}, nil)

	svc.SendNewPickNotification(ctx, []string{"u1", "u2"}, handicapper, pick)

	fcm.AssertExpectations(t)
}

func TestNotificationService_SendExpiringSubscriptionNotices(t *testing.T) {
	ctx := context.Background()
	fcm := &mockPushProvider{}
	tokens, subs, svc := newNotificationFixture(fcm, nil)

	subs.On("ListExpiringBetween", ctx, notifyNow, notifyNow.Add(72*time.Hour)).Return([]*models.Subscription{
		{ID: primitive.NewObjectID(), UserID: "renewer", ProductID: "VIP", AutoRenew: true, EndDate: notifyNow.Add(48 * time.Hour)},
		{ID: primitive.NewObjectID(), UserID: "lapser", ProductID: "VIP", EndDate: notifyNow.Add(36 * time.Hour)},
	}, nil)

	tokens.On("ListByUser", ctx, "renewer").Return([]*models.NotificationToken{{Token: "r", Platform: models.PlatformAndroid}}, nil)
	tokens.On("ListByUser", ctx, "lapser").Return([]*models.NotificationToken{{Token: "l", Platform: models.PlatformWeb}}, nil)

	var titles, bodies []string
	fcm.On("SendBulkNotifications", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			r := args.Get(1).([]*push.NotificationRequest)[0]
			titles = append(titles, r.Title)
			bodies = append(bodies, r.Body)
		}).
		Return([]*push.NotificationResponse{{Success: true}}, nil)

	n := svc.SendExpiringSubscriptionNotices(ctx, 72*time.Hour)

	require.Equal(t, 2, n)
	assert.Equal(t, []string{"Subscription Renewal Reminder", "Subscription Expiring Soon"}, titles)
	assert.Equal(t, "Your VIP subscription expires in 2 days", bodies[1])
}

func TestNotificationService_SendToUsers_Empty(t *testing.T) {
	tokens, _, svc := newNotificationFixture(nil, nil)

	assert.Zero(t, svc.SendToUsers(context.Background(), nil, &models.NotificationMessage{}))
	tokens.AssertNotCalled(t, "ListByUsers", mock.Anything, mock.Anything)
}
