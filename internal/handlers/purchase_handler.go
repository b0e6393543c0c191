package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
)

// maxWebhookBodySize mirrors the payload limit Stripe documents for events.
const maxWebhookBodySize = 65536

type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// PurchasePick charges the caller for a paid pick
func (h *PurchaseHandler) PurchasePick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.PurchasePickRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.purchaseService.PurchasePick(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Pick purchased successfully", tx)
}

func (h *PurchaseHandler) PurchaseSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.PurchaseSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, sub, err := h.purchaseService.PurchaseSubscription(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Subscription purchased successfully", gin.H{
		"transaction":  tx,
		"subscription": sub,
	})
}

// RestorePurchases re-records store receipts the server has not seen
func (h *PurchaseHandler) RestorePurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.RestorePurchasesRequest
	if !bindJSON(c, &req) {
		return
	}

	restored, err := h.purchaseService.RestorePurchases(c.Request.Context(), userID, req.Receipts)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Purchases restored successfully", restored, &utils.Meta{Count: len(restored)})
}

func (h *PurchaseHandler) GetTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := utils.GetLimit(c, utils.DefaultTransactionHistoryLimit)

	transactions, err := h.purchaseService.GetUserTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions, &utils.Meta{Count: len(transactions), Limit: limit})
}

func (h *PurchaseHandler) GetSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	subscriptions, err := h.purchaseService.GetUserSubscriptions(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Subscriptions retrieved successfully", subscriptions, &utils.Meta{Count: len(subscriptions)})
}

// RefundTransaction refunds one of the caller's completed transactions.
// The body is optional.
func (h *PurchaseHandler) RefundTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.RefundRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	tx, err := h.purchaseService.RefundTransaction(c.Request.Context(), userID, c.Param("id"), req.Reason)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Transaction refunded successfully", tx)
}

// StripeWebhook receives payment events. It is unauthenticated; the
// signature header is what proves the sender.
func (h *PurchaseHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body")
		return
	}

	if err := h.purchaseService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
