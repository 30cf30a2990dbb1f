package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db}
}

// GetOrCreate returns the conversation for a user id, creating it on first
// contact.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, userID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conversation = model.Conversation{UserID: userID}
		if err := r.db.WithContext(ctx).Create(&conversation).Error; err != nil {
			return nil, err
		}
		return &conversation, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// AppendMessage adds one turn. The log is append-only; messages are never
// edited in place.
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// RecentMessages returns the newest limit messages in chronological order.
func (r *ConversationRepository) RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order for the agent.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
