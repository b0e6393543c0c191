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
	"handicapper/pkg/metrics"
	"handicapper/pkg/payment"
)

type PurchaseService interface {
	// Purchases
	PurchasePick(ctx context.Context, userID string, req *validators.PurchasePickRequest) (*models.Transaction, error)
	PurchaseSubscription(ctx context.Context, userID string, req *validators.PurchaseSubscriptionRequest) (*models.Transaction, *models.Subscription, error)
	RestorePurchases(ctx context.Context, userID string, receipts []validators.RestoreReceipt) ([]*models.Transaction, error)
	RefundTransaction(ctx context.Context, userID, transactionID, reason string) (*models.Transaction, error)

	// History
	GetUserTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
	GetUserSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error)
	GetHandicapperEarnings(ctx context.Context, handicapperID string) (*models.Earnings, error)

	// Provider callbacks
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type purchaseService struct {
	transactionRepo     interfaces.TransactionRepository
	subscriptionRepo    interfaces.SubscriptionRepository
	pickRepo            interfaces.PickRepository
	interactionRepo     interfaces.PickInteractionRepository
	paymentProvider     payment.PaymentProvider
	notificationService NotificationService
	analyticsService    AnalyticsService
	config              *config.PaymentConfig
	logger              *logger.Logger
	now                 func() time.Time
}

func NewPurchaseService(
	transactionRepo interfaces.TransactionRepository,
	subscriptionRepo interfaces.SubscriptionRepository,
	pickRepo interfaces.PickRepository,
	interactionRepo interfaces.PickInteractionRepository,
	paymentProvider payment.PaymentProvider,
	notificationService NotificationService,
	analyticsService AnalyticsService,
	cfg *config.PaymentConfig,
	log *logger.Logger,
) PurchaseService {
	return &purchaseService{
		transactionRepo:     transactionRepo,
		subscriptionRepo:    subscriptionRepo,
		pickRepo:            pickRepo,
		interactionRepo:     interactionRepo,
		paymentProvider:     paymentProvider,
		notificationService: notificationService,
		analyticsService:    analyticsService,
		config:              cfg,
		logger:              log,
		now:                 time.Now,
	}
}

func (s *purchaseService) PurchasePick(ctx context.Context, userID string, req *validators.PurchasePickRequest) (*models.Transaction, error) {
	if err := validators.ValidatePurchasePick(req); err != nil {
		return nil, err
	}

	pickID, _ := primitive.ObjectIDFromHex(req.PickID)
	pick, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("pick", req.PickID)
		}
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	if !pick.IsPaid || pick.Price <= 0 {
		return nil, apperrors.InvalidInput("This pick is free")
	}
	if pick.HandicapperID == userID {
		return nil, apperrors.InvalidInput("You cannot buy your own pick")
	}

	owned, err := s.transactionRepo.HasPurchasedPick(ctx, userID, req.PickID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pick purchase: %w", err)
	}
	if owned {
		return nil, apperrors.AlreadyExists("You already own this pick")
	}

	tx := &models.Transaction{
		UserID:        userID,
		HandicapperID: pick.HandicapperID,
		PickID:        req.PickID,
		Amount:        pick.Price,
		ProductType:   models.ProductTypePick,
		ProductID:     req.PickID,
		Platform:      platformOrDefault(req.Platform),
	}

	if err := s.charge(ctx, tx, req.PaymentMethodID, "Pick "+pick.Game); err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx); err != nil {
		return nil, err
	}

	interaction := &models.PickInteraction{
		PickID:    pick.ID,
		UserID:    userID,
		Type:      models.InteractionPurchase,
		CreatedAt: tx.CreatedAt,
	}
	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Failed to record pick purchase interaction")
	}

	s.afterPurchase(ctx, tx)
	return tx, nil
}

func (s *purchaseService) PurchaseSubscription(ctx context.Context, userID string, req *validators.PurchaseSubscriptionRequest) (*models.Transaction, *models.Subscription, error) {
	if err := validators.ValidatePurchaseSubscription(req); err != nil {
		return nil, nil, err
	}
	if req.HandicapperID == userID {
		return nil, nil, apperrors.InvalidInput("You cannot subscribe to yourself")
	}
	price, ok := s.config.SubscriptionPrice(req.ProductID)
	if !ok {
		return nil, nil, apperrors.InvalidInput("Unknown subscription product")
	}

	now := s.now().UTC()
	active, err := s.subscriptionRepo.HasActive(ctx, userID, req.HandicapperID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if active {
		return nil, nil, apperrors.AlreadyExists("You already have an active subscription to this handicapper")
	}

	sub := &models.Subscription{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		HandicapperID: req.HandicapperID,
		ProductID:     req.ProductID,
		Status:        models.SubscriptionStatusActive,
		StartDate:     now,
		EndDate:       now.Add(models.DefaultSubscriptionPeriod),
		AutoRenew:     req.AutoRenew,
	}
	tx := &models.Transaction{
		UserID:         userID,
		HandicapperID:  req.HandicapperID,
		SubscriptionID: sub.ID.Hex(),
		Amount:         price,
		ProductType:    models.ProductTypeSubscription,
		ProductID:      req.ProductID,
		Platform:       platformOrDefault(req.Platform),
	}

	if err := s.charge(ctx, tx, req.PaymentMethodID, "Subscription "+req.ProductID); err != nil {
		return nil, nil, err
	}
	if err := s.record(ctx, tx); err != nil {
		return nil, nil, err
	}

	sub.TransactionID = tx.ID
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		s.logger.WithError(err).WithUserID(userID).
			WithField("transaction_id", tx.ID.Hex()).
			Error("Subscription charge recorded but subscription could not be created")
		return tx, nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.afterPurchase(ctx, tx)
	return tx, sub, nil
}

// charge collects tx.Amount through the billing provider and fills in the
// fee split and provider reference on tx.
func (s *purchaseService) charge(ctx context.Context, tx *models.Transaction, paymentMethodID, description string) error {
	currency := strings.ToLower(s.config.Currency)

	resp, err := s.paymentProvider.ProcessPayment(ctx, &payment.PaymentRequest{
		PaymentMethodID: paymentMethodID,
		Amount:          tx.Amount,
		Currency:        currency,
		Description:     description,
		Metadata: map[string]string{
			"user_id":        tx.UserID,
			"handicapper_id": tx.HandicapperID,
			"product_type":   string(tx.ProductType),
			"product_id":     tx.ProductID,
		},
	})
	if err != nil {
		return apperrors.PaymentFailed("Payment could not be processed", err)
	}
	if !resp.Succeeded() {
		return apperrors.PaymentFailed("Payment was not completed", fmt.Errorf("payment status %s", resp.Status))
	}

	tx.ProviderTransactionID = resp.TransactionID
	tx.Currency = currency
	tx.PlatformFee, tx.NetAmount = aggregation.PlatformFee(tx.Amount, s.config.PlatformFeeRate)
	tx.Status = models.TransactionStatusCompleted
	tx.CreatedAt = s.now().UTC()
	return nil
}

func (s *purchaseService) record(ctx context.Context, tx *models.Transaction) error {
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		// The customer has been charged at this point.
		s.logger.WithError(err).WithUserID(tx.UserID).
			WithField("provider_transaction_id", tx.ProviderTransactionID).
			Error("Payment succeeded but transaction could not be recorded")
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	s.logger.LogPaymentEvent(tx.ID.Hex(), "completed", tx.Amount, tx.Currency)
	metrics.PurchasesCompleted.WithLabelValues(string(tx.ProductType)).Inc()
	return nil
}

func (s *purchaseService) afterPurchase(ctx context.Context, tx *models.Transaction) {
	s.analyticsService.LogPurchase(ctx, tx.UserID, tx)
	s.notificationService.SendSaleNotification(ctx, tx)
}

// RestorePurchases records receipts the user does not have on file yet.
// Each receipt is confirmed with the billing provider. Product details come
// from the payment's own metadata; receipts the provider does not confirm as
// paid by this user, or whose claimed product disagrees with it, are skipped.
func (s *purchaseService) RestorePurchases(ctx context.Context, userID string, receipts []validators.RestoreReceipt) ([]*models.Transaction, error) {
	if err := validators.ValidateRestorePurchases(&validators.RestorePurchasesRequest{Receipts: receipts}); err != nil {
		return nil, err
	}

	restored := make([]*models.Transaction, 0, len(receipts))
	for _, r := range receipts {
		exists, err := s.transactionRepo.ExistsForUser(ctx, userID, r.ProviderTransactionID)
		if err != nil {
			return restored, fmt.Errorf("failed to check existing transaction: %w", err)
		}
		if exists {
			continue
		}

		paid, err := s.paymentProvider.GetPayment(ctx, r.ProviderTransactionID)
		if err != nil {
			s.logger.WithError(err).WithUserID(userID).
				WithField("provider_transaction_id", r.ProviderTransactionID).
				Warn("Could not verify restored purchase")
			continue
		}
		if !paid.Succeeded() || paid.Metadata["user_id"] != userID {
			s.logger.WithUserID(userID).
				WithField("provider_transaction_id", r.ProviderTransactionID).
				Warn("Restored purchase did not match a completed payment")
			continue
		}
		if field, ok := receiptMatchesPayment(r, paid.Metadata); !ok {
			s.logger.LogSecurityEvent("restore_receipt_mismatch", "high", map[string]interface{}{
				"user_id":                 userID,
				"provider_transaction_id": r.ProviderTransactionID,
				"field":                   field,
			})
			continue
		}

		tx := &models.Transaction{
			UserID:                userID,
			HandicapperID:         paid.Metadata["handicapper_id"],
			Amount:                paid.Amount,
			Currency:              paid.Currency,
			Status:                models.TransactionStatusCompleted,
			ProductType:           models.ProductType(paid.Metadata["product_type"]),
			ProductID:             paid.Metadata["product_id"],
			ProviderTransactionID: r.ProviderTransactionID,
			Receipt:               r.Receipt,
			Platform:              platformOrDefault(r.Platform),
		}
		if tx.ProductType == models.ProductTypePick {
			tx.PickID = tx.ProductID
		}
		if paid.CreatedAt > 0 {
			tx.CreatedAt = time.Unix(paid.CreatedAt, 0).UTC()
		}
		tx.PlatformFee, tx.NetAmount = aggregation.PlatformFee(tx.Amount, s.config.PlatformFeeRate)

		if err := s.transactionRepo.Create(ctx, tx); err != nil {
			return restored, fmt.Errorf("failed to restore transaction: %w", err)
		}
		restored = append(restored, tx)
	}

	s.logger.LogUserAction(userID, "restore_purchases", map[string]interface{}{
		"receipts": len(receipts),
		"restored": len(restored),
	})
	return restored, nil
}

// receiptMatchesPayment compares a client receipt with the metadata written
// when the payment was charged. It returns the first field that disagrees.
func receiptMatchesPayment(r validators.RestoreReceipt, metadata map[string]string) (string, bool) {
	if metadata["handicapper_id"] == "" || metadata["product_type"] == "" || metadata["product_id"] == "" {
		return "metadata", false
	}
	if r.HandicapperID != metadata["handicapper_id"] {
		return "handicapper_id", false
	}
	if r.ProductType != metadata["product_type"] {
		return "product_type", false
	}
	if r.ProductID != metadata["product_id"] {
		return "product_id", false
	}
	if r.PickID != "" && r.PickID != metadata["product_id"] {
		return "pick_id", false
	}
	return "", true
}

// RefundTransaction refunds one of the user's completed purchases and
// cancels the subscription it paid for.
func (s *purchaseService) RefundTransaction(ctx context.Context, userID, transactionID, reason string) (*models.Transaction, error) {
	if err := validators.ValidateRefund(&validators.RefundRequest{Reason: reason}); err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(transactionID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid transaction id")
	}

	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("transaction", transactionID)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx.UserID != userID {
		return nil, apperrors.NotFound("transaction", transactionID)
	}
	if !tx.IsCompleted() {
		return nil, apperrors.InvalidTransition(string(tx.Status), string(models.TransactionStatusRefunded))
	}

	if _, err := s.paymentProvider.RefundPayment(ctx, &payment.RefundRequest{
		TransactionID: tx.ProviderTransactionID,
		Reason:        reason,
	}); err != nil {
		return nil, apperrors.PaymentFailed("Refund could not be processed", err)
	}

	if err := s.markRefunded(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *purchaseService) markRefunded(ctx context.Context, tx *models.Transaction) error {
	if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, models.TransactionStatusRefunded); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	tx.Status = models.TransactionStatusRefunded

	if tx.ProductType == models.ProductTypeSubscription {
		if err := s.subscriptionRepo.UpdateStatusByTransaction(ctx, tx.ID, models.SubscriptionStatusCancelled); err != nil && !apperrors.IsNotFound(err) {
			s.logger.WithError(err).WithField("transaction_id", tx.ID.Hex()).Warn("Failed to cancel refunded subscription")
		}
	}

	s.logger.LogPaymentEvent(tx.ID.Hex(), "refunded", tx.Amount, tx.Currency)
	return nil
}

func (s *purchaseService) GetUserTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = utils.DefaultTransactionHistoryLimit
	}

	txs, err := s.transactionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txs, nil
}

func (s *purchaseService) GetUserSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error) {
	subs, err := s.subscriptionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	return subs, nil
}

func (s *purchaseService) GetHandicapperEarnings(ctx context.Context, handicapperID string) (*models.Earnings, error) {
	txs, err := s.transactionRepo.ListCompletedByHandicapper(ctx, handicapperID)
	if err != nil {
		return nil, fmt.Errorf("failed to get earnings: %w", err)
	}

	earnings := aggregation.ComputeEarnings(txs)
	earnings.HandicapperID = handicapperID
	return &earnings, nil
}

// HandleWebhook applies provider-side status changes to recorded
// transactions. Events for unknown payments are ignored.
func (s *purchaseService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.paymentProvider.ValidateWebhook(ctx, payload, signature)
	if err != nil {
		s.logger.LogSecurityEvent("invalid_webhook_signature", "medium", map[string]interface{}{"error": err.Error()})
		return apperrors.Unauthorized("invalid webhook signature")
	}

	var (
		paymentID string
		status    models.TransactionStatus
	)
	switch event.EventType {
	case "charge.refunded":
		paymentID, _ = event.Data["payment_intent"].(string)
		status = models.TransactionStatusRefunded
	case "payment_intent.payment_failed":
		paymentID, status = event.ObjectID, models.TransactionStatusFailed
	case "payment_intent.canceled":
		paymentID, status = event.ObjectID, models.TransactionStatusCancelled
	default:
		s.logger.WithField("event_type", event.EventType).Debug("Ignoring webhook event")
		return nil
	}
	if paymentID == "" {
		return nil
	}

	tx, err := s.transactionRepo.GetByProviderTransactionID(ctx, paymentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx.Status == status {
		return nil
	}

	if status == models.TransactionStatusRefunded {
		return s.markRefunded(ctx, tx)
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, status); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	s.logger.LogPaymentEvent(tx.ID.Hex(), string(status), tx.Amount, tx.Currency)
	return nil
}

func platformOrDefault(p string) models.Platform {
	if p == "" {
		return models.PlatformWeb
	}
	return models.Platform(p)
}
