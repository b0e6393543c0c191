package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/pkg/firebaseauth"
	"handicapper/pkg/payment"
	"handicapper/pkg/push"
	"handicapper/pkg/websocket"
)

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil && review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	args := m.Called(ctx, id)
	review, _ := args.Get(0).(*models.Review)
	return review, args.Error(1)
}

func (m *mockReviewRepo) GetByUserAndHandicapper(ctx context.Context, userID, handicapperID string) (*models.Review, error) {
	args := m.Called(ctx, userID, handicapperID)
	review, _ := args.Get(0).(*models.Review)
	return review, args.Error(1)
}

func (m *mockReviewRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	args := m.Called(ctx, id, rating, comment)
	review, _ := args.Get(0).(*models.Review)
	return review, args.Error(1)
}

func (m *mockReviewRepo) ListByHandicapper(ctx context.Context, handicapperID string, limit int) ([]*models.Review, error) {
	args := m.Called(ctx, handicapperID, limit)
	reviews, _ := args.Get(0).([]*models.Review)
	return reviews, args.Error(1)
}

type mockTransactionRepo struct{ mock.Mock }

func (m *mockTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	if args.Error(0) == nil && tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactionRepo) GetByProviderTransactionID(ctx context.Context, providerTxID string) (*models.Transaction, error) {
	args := m.Called(ctx, providerTxID)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactionRepo) HasCompletedPurchase(ctx context.Context, userID, handicapperID string) (bool, error) {
	args := m.Called(ctx, userID, handicapperID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionRepo) HasPurchasedPick(ctx context.Context, userID, pickID string) (bool, error) {
	args := m.Called(ctx, userID, pickID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionRepo) ExistsForUser(ctx context.Context, userID, providerTxID string) (bool, error) {
	args := m.Called(ctx, userID, providerTxID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txs, _ := args.Get(0).([]*models.Transaction)
	return txs, args.Error(1)
}

func (m *mockTransactionRepo) ListCompletedByHandicapper(ctx context.Context, handicapperID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, handicapperID)
	txs, _ := args.Get(0).([]*models.Transaction)
	return txs, args.Error(1)
}

func (m *mockTransactionRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockSubscriptionRepo struct{ mock.Mock }

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *mockSubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userID)
	subs, _ := args.Get(0).([]*models.Subscription)
	return subs, args.Error(1)
}

func (m *mockSubscriptionRepo) HasActive(ctx context.Context, userID, handicapperID string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, handicapperID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Subscription, error) {
	args := m.Called(ctx, from, to)
	subs, _ := args.Get(0).([]*models.Subscription)
	return subs, args.Error(1)
}

func (m *mockSubscriptionRepo) UpdateStatusByTransaction(ctx context.Context, transactionID primitive.ObjectID, status models.SubscriptionStatus) error {
	return m.Called(ctx, transactionID, status).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).(map[string]*models.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *mockUserRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return m.Called(ctx, id, avatarURL).Error(0)
}

func (m *mockUserRepo) UpdateReviewStats(ctx context.Context, id string, stats models.ReviewStats) error {
	return m.Called(ctx, id, stats).Error(0)
}

func (m *mockUserRepo) UpdatePickStats(ctx context.Context, id string, totalPicks int, winRate float64) error {
	return m.Called(ctx, id, totalPicks, winRate).Error(0)
}

func (m *mockUserRepo) AdjustFollowers(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *mockUserRepo) ListHandicappers(ctx context.Context, query interfaces.HandicapperQuery) ([]*models.User, error) {
	args := m.Called(ctx, query)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

type mockPickRepo struct{ mock.Mock }

func (m *mockPickRepo) Create(ctx context.Context, pick *models.Pick) error {
	args := m.Called(ctx, pick)
	if args.Error(0) == nil && pick.ID.IsZero() {
		pick.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockPickRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pick, error) {
	args := m.Called(ctx, id)
	pick, _ := args.Get(0).(*models.Pick)
	return pick, args.Error(1)
}

func (m *mockPickRepo) List(ctx context.Context, filter models.PickFilter) ([]*models.Pick, error) {
	args := m.Called(ctx, filter)
	picks, _ := args.Get(0).([]*models.Pick)
	return picks, args.Error(1)
}

func (m *mockPickRepo) ListByHandicappers(ctx context.Context, handicapperIDs []string, limit int) ([]*models.Pick, error) {
	args := m.Called(ctx, handicapperIDs, limit)
	picks, _ := args.Get(0).([]*models.Pick)
	return picks, args.Error(1)
}

func (m *mockPickRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PickStatus, result models.PickResult) error {
	return m.Called(ctx, id, status, result).Error(0)
}

func (m *mockPickRepo) SetCounter(ctx context.Context, id primitive.ObjectID, field string, value int64) error {
	return m.Called(ctx, id, field, value).Error(0)
}

func (m *mockPickRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type mockInteractionRepo struct{ mock.Mock }

func (m *mockInteractionRepo) Create(ctx context.Context, interaction *models.PickInteraction) error {
	return m.Called(ctx, interaction).Error(0)
}

func (m *mockInteractionRepo) Count(ctx context.Context, pickID primitive.ObjectID, kind models.InteractionType) (int64, error) {
	args := m.Called(ctx, pickID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInteractionRepo) Exists(ctx context.Context, pickID primitive.ObjectID, userID string, kind models.InteractionType) (bool, error) {
	args := m.Called(ctx, pickID, userID, kind)
	return args.Bool(0), args.Error(1)
}

type mockFollowRepo struct{ mock.Mock }

func (m *mockFollowRepo) Create(ctx context.Context, follow *models.Follow) error {
	return m.Called(ctx, follow).Error(0)
}

func (m *mockFollowRepo) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepo) ListFollowing(ctx context.Context, followerID string) ([]string, error) {
	args := m.Called(ctx, followerID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockFollowRepo) ListFollowers(ctx context.Context, followingID string) ([]string, error) {
	args := m.Called(ctx, followingID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockFollowRepo) CountFollowers(ctx context.Context, followingID string) (int64, error) {
	args := m.Called(ctx, followingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFollowRepo) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	args := m.Called(ctx, followerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Upsert(ctx context.Context, token *models.NotificationToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepo) ListByUser(ctx context.Context, userID string) ([]*models.NotificationToken, error) {
	args := m.Called(ctx, userID)
	tokens, _ := args.Get(0).([]*models.NotificationToken)
	return tokens, args.Error(1)
}

func (m *mockTokenRepo) ListByUsers(ctx context.Context, userIDs []string) ([]*models.NotificationToken, error) {
	args := m.Called(ctx, userIDs)
	tokens, _ := args.Get(0).([]*models.NotificationToken)
	return tokens, args.Error(1)
}

func (m *mockTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type mockAnalyticsRepo struct{ mock.Mock }

func (m *mockAnalyticsRepo) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockAnalyticsRepo) CountByName(ctx context.Context, name string, from, to time.Time) (int64, error) {
	args := m.Called(ctx, name, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockChatRepo struct{ mock.Mock }

func (m *mockChatRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	if args.Error(0) == nil && message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockChatRepo) ListConversation(ctx context.Context, conversationID string, limit int) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, conversationID, limit)
	messages, _ := args.Get(0).([]*models.ChatMessage)
	return messages, args.Error(1)
}

func (m *mockChatRepo) ListConversations(ctx context.Context, participantID string) ([]*models.ConversationSummary, error) {
	args := m.Called(ctx, participantID)
	summaries, _ := args.Get(0).([]*models.ConversationSummary)
	return summaries, args.Error(1)
}

type mockPaymentProvider struct{ mock.Mock }

func (m *mockPaymentProvider) ProcessPayment(ctx context.Context, request *payment.PaymentRequest) (*payment.PaymentResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*payment.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentProvider) GetPayment(ctx context.Context, transactionID string) (*payment.PaymentResponse, error) {
	args := m.Called(ctx, transactionID)
	resp, _ := args.Get(0).(*payment.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentProvider) RefundPayment(ctx context.Context, request *payment.RefundRequest) (*payment.RefundResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*payment.RefundResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentProvider) ValidateWebhook(ctx context.Context, payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(ctx, payload, signature)
	event, _ := args.Get(0).(*payment.WebhookEvent)
	return event, args.Error(1)
}

type mockPushProvider struct{ mock.Mock }

func (m *mockPushProvider) SendNotification(ctx context.Context, request *push.NotificationRequest) (*push.NotificationResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*push.NotificationResponse)
	return resp, args.Error(1)
}

func (m *mockPushProvider) SendBulkNotifications(ctx context.Context, requests []*push.NotificationRequest) ([]*push.NotificationResponse, error) {
	args := m.Called(ctx, requests)
	resps, _ := args.Get(0).([]*push.NotificationResponse)
	return resps, args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) SaveToken(ctx context.Context, userID, token string, platform models.Platform, deviceID string) {
	m.Called(ctx, userID, token, platform, deviceID)
}

func (m *mockNotificationService) GetUserTokens(ctx context.Context, userID string) ([]*models.NotificationToken, error) {
	args := m.Called(ctx, userID)
	tokens, _ := args.Get(0).([]*models.NotificationToken)
	return tokens, args.Error(1)
}

func (m *mockNotificationService) SendToUser(ctx context.Context, userID string, message *models.NotificationMessage) int {
	return m.Called(ctx, userID, message).Int(0)
}

func (m *mockNotificationService) SendToUsers(ctx context.Context, userIDs []string, message *models.NotificationMessage) int {
	return m.Called(ctx, userIDs, message).Int(0)
}

func (m *mockNotificationService) SendNewPickNotification(ctx context.Context, followerIDs []string, handicapper *models.User, pick *models.Pick) {
	m.Called(ctx, followerIDs, handicapper, pick)
}

func (m *mockNotificationService) SendSubscriptionRenewalReminder(ctx context.Context, sub *models.Subscription, productName string) {
	m.Called(ctx, sub, productName)
}

func (m *mockNotificationService) SendExpiringSubscriptionNotice(ctx context.Context, sub *models.Subscription, productName string) {
	m.Called(ctx, sub, productName)
}

func (m *mockNotificationService) SendExpiringSubscriptionNotices(ctx context.Context, within time.Duration) int {
	return m.Called(ctx, within).Int(0)
}

func (m *mockNotificationService) SendSaleNotification(ctx context.Context, tx *models.Transaction) {
	m.Called(ctx, tx)
}

type stubVerifier struct {
	identity *firebaseauth.Identity
	err      error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*firebaseauth.Identity, error) {
	return s.identity, s.err
}

// recordedEvent is one call captured by fakeAnalytics.
type recordedEvent struct {
	Name   string
	UserID string
	Params map[string]interface{}
}

// fakeAnalytics records events synchronously so tests can assert on them.
type fakeAnalytics struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeAnalytics) add(name, userID string, params map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Name: name, UserID: userID, Params: params})
}

func (f *fakeAnalytics) Events() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedEvent(nil), f.events...)
}

func (f *fakeAnalytics) LogEvent(_ context.Context, name, userID string, params map[string]interface{}) {
	f.add(name, userID, params)
}

func (f *fakeAnalytics) Record(_ context.Context, name, userID string, params map[string]interface{}) error {
	f.add(name, userID, params)
	return nil
}

func (f *fakeAnalytics) LogSignUp(_ context.Context, userID, method string) {
	f.add(models.EventSignUp, userID, map[string]interface{}{"method": method})
}

func (f *fakeAnalytics) LogLogin(_ context.Context, userID, method string) {
	f.add(models.EventLogin, userID, map[string]interface{}{"method": method})
}

func (f *fakeAnalytics) LogPostPick(_ context.Context, userID, sport string, isPaid bool) {
	f.add(models.EventPostPick, userID, map[string]interface{}{"sport": sport, "is_paid": isPaid})
}

func (f *fakeAnalytics) LogPurchase(_ context.Context, userID string, tx *models.Transaction) {
	f.add(models.EventPurchase, userID, map[string]interface{}{"value": tx.Amount})
}

func (f *fakeAnalytics) LogLeaveReview(_ context.Context, userID, handicapperID string, rating int, comment string) {
	f.add(models.EventLeaveReview, userID, map[string]interface{}{
		"handicapper_id": handicapperID,
		"rating":         rating,
		"comment_length": len([]rune(comment)),
	})
}

func (f *fakeAnalytics) LogFollow(_ context.Context, userID, handicapperID string, following bool) {
	f.add(models.EventFollow, userID, map[string]interface{}{"handicapper_id": handicapperID, "following": following})
}

func (f *fakeAnalytics) LogChat(_ context.Context, userID, conversationID string) {
	f.add(models.EventChat, userID, map[string]interface{}{"conversation_id": conversationID})
}

func (f *fakeAnalytics) LogSearch(_ context.Context, userID, term string) {
	f.add(models.EventSearch, userID, map[string]interface{}{"search_term": term})
}

func (f *fakeAnalytics) LogShare(_ context.Context, userID, contentType, itemID string) {
	f.add(models.EventShare, userID, map[string]interface{}{"content_type": contentType, "item_id": itemID})
}

func (f *fakeAnalytics) GetEventCount(_ context.Context, _ string, _ time.Time) (int64, error) {
	return int64(len(f.Events())), nil
}

// fakeLive captures websocket deliveries.
type fakeLive struct {
	mu   sync.Mutex
	sent map[string][]websocket.Message
}

func newFakeLive() *fakeLive {
	return &fakeLive{sent: map[string][]websocket.Message{}}
}

func (f *fakeLive) SendToUser(userID string, msg websocket.Message) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[userID] = append(f.sent[userID], msg)
	return 1
}

func (f *fakeLive) To(userID string) []websocket.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[userID]
}
