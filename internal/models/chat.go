package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxChatMessageLen = 1000

type ChatMessage struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID string             `json:"conversation_id" bson:"conversation_id"`
	UserID         string             `json:"user_id" bson:"user_id"`
	HandicapperID  string             `json:"handicapper_id" bson:"handicapper_id"`
	SenderID       string             `json:"sender_id" bson:"sender_id"`
	SenderName     string             `json:"sender_name" bson:"sender_name"`
	SenderAvatar   string             `json:"sender_avatar,omitempty" bson:"sender_avatar,omitempty"`
	Text           string             `json:"text" bson:"text"`
	IsHandicapper  bool               `json:"is_handicapper" bson:"is_handicapper"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// ConversationID names the thread between a user and a handicapper.
func ConversationID(userID, handicapperID string) string {
	return userID + "_" + handicapperID
}

type ConversationSummary struct {
	ConversationID string    `json:"conversation_id" bson:"_id"`
	UserID         string    `json:"user_id" bson:"user_id"`
	HandicapperID  string    `json:"handicapper_id" bson:"handicapper_id"`
	LastMessage    string    `json:"last_message" bson:"last_message"`
	LastSenderID   string    `json:"last_sender_id" bson:"last_sender_id"`
	LastMessageAt  time.Time `json:"last_message_at" bson:"last_message_at"`
	MessageCount   int       `json:"message_count" bson:"message_count"`
}
