package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/logger"
	"handicapper/pkg/metrics"
	"handicapper/pkg/websocket"
)

type ChatService interface {
	SendMessage(ctx context.Context, senderID string, req *validators.ChatSendRequest) (*models.ChatMessage, error)
	GetConversation(ctx context.Context, requesterID, userID, handicapperID string, limit int) ([]*models.ChatMessage, error)
	ListConversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error)

	// HandleInbound processes a message a user sent over the websocket.
	HandleInbound(ctx context.Context, userID string, msg websocket.Message)
}

// LiveDelivery pushes messages to connected clients.
type LiveDelivery interface {
	SendToUser(userID string, msg websocket.Message) int
}

type chatService struct {
	chatRepo         interfaces.ChatRepository
	userRepo         interfaces.UserRepository
	live             LiveDelivery
	analyticsService AnalyticsService
	logger           *logger.Logger
}

func NewChatService(
	chatRepo interfaces.ChatRepository,
	userRepo interfaces.UserRepository,
	live LiveDelivery,
	analyticsService AnalyticsService,
	log *logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:         chatRepo,
		userRepo:         userRepo,
		live:             live,
		analyticsService: analyticsService,
		logger:           log,
	}
}

// SendMessage stores a message between a user and a handicapper and pushes
// it to both of them. When the sender is the handicapper, req.UserID names
// the user being answered.
func (s *chatService) SendMessage(ctx context.Context, senderID string, req *validators.ChatSendRequest) (*models.ChatMessage, error) {
	if err := validators.ValidateChatSend(req); err != nil {
		return nil, err
	}

	userID := senderID
	isHandicapper := senderID == req.HandicapperID
	if isHandicapper {
		if req.UserID == "" || req.UserID == senderID {
			return nil, apperrors.InvalidInput("user_id is required when replying as the handicapper")
		}
		userID = req.UserID
	}

	message := &models.ChatMessage{
		ConversationID: models.ConversationID(userID, req.HandicapperID),
		UserID:         userID,
		HandicapperID:  req.HandicapperID,
		SenderID:       senderID,
		Text:           strings.TrimSpace(req.Text),
		IsHandicapper:  isHandicapper,
		CreatedAt:      time.Now().UTC(),
	}
	s.fillSender(ctx, message)

	if err := s.chatRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.deliver(message)
	s.analyticsService.LogChat(ctx, senderID, message.ConversationID)

	return message, nil
}

func (s *chatService) fillSender(ctx context.Context, message *models.ChatMessage) {
	sender, err := s.userRepo.GetByID(ctx, message.SenderID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.WithError(err).WithUserID(message.SenderID).Debug("Failed to load chat sender")
		}
		sender = models.DefaultHandicapper(message.SenderID)
	}
	message.SenderName = sender.DisplayName
	message.SenderAvatar = sender.AvatarURL
}

func (s *chatService) deliver(message *models.ChatMessage) {
	if s.live == nil {
		return
	}

	out := websocket.Message{
		Type:           websocket.MessageTypeChatMessage,
		ConversationID: message.ConversationID,
		From:           message.SenderID,
		Timestamp:      message.CreatedAt.Unix(),
		Data: map[string]interface{}{
			"id":             message.ID.Hex(),
			"user_id":        message.UserID,
			"handicapper_id": message.HandicapperID,
			"sender_name":    message.SenderName,
			"sender_avatar":  message.SenderAvatar,
			"text":           message.Text,
			"is_handicapper": message.IsHandicapper,
		},
	}

	n := s.live.SendToUser(message.UserID, out)
	n += s.live.SendToUser(message.HandicapperID, out)
	metrics.ChatMessagesDelivered.Add(float64(n))
}

func (s *chatService) GetConversation(ctx context.Context, requesterID, userID, handicapperID string, limit int) ([]*models.ChatMessage, error) {
	if requesterID != userID && requesterID != handicapperID {
		return nil, apperrors.Forbidden("You are not part of this conversation")
	}
	if limit <= 0 {
		limit = utils.DefaultChatHistoryLimit
	}

	messages, err := s.chatRepo.ListConversation(ctx, models.ConversationID(userID, handicapperID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return messages, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	conversations, err := s.chatRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

func (s *chatService) HandleInbound(ctx context.Context, userID string, msg websocket.Message) {
	switch msg.Type {
	case websocket.MessageTypeChatMessage:
		req := &validators.ChatSendRequest{
			HandicapperID: stringField(msg.Data, "handicapper_id"),
			UserID:        stringField(msg.Data, "user_id"),
			Text:          stringField(msg.Data, "text"),
		}
		if _, err := s.SendMessage(ctx, userID, req); err != nil {
			s.replyError(userID, msg.ConversationID, err)
		}

	case websocket.MessageTypeTyping:
		to := stringField(msg.Data, "to")
		if to == "" || s.live == nil {
			return
		}
		s.live.SendToUser(to, websocket.Message{
			Type:           websocket.MessageTypeTyping,
			ConversationID: msg.ConversationID,
			From:           userID,
		})

	default:
		s.replyError(userID, msg.ConversationID, apperrors.InvalidInput("unsupported message type"))
	}
}

func (s *chatService) replyError(userID, conversationID string, err error) {
	if s.live == nil {
		return
	}
	s.live.SendToUser(userID, websocket.Message{
		Type:           websocket.MessageTypeError,
		ConversationID: conversationID,
		Data: map[string]interface{}{
			"code":    apperrors.Code(err),
			"message": apperrors.Message(err),
		},
	})
}

func stringField(data map[string]interface{}, key string) string {
	v, _ := data[key].(string)
	return v
}
