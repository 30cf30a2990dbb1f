package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(255);index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is one turn of a conversation. Rows are append-only; history windows
// are rebuilt from storage in chronological order.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index" json:"conversation_id"`
	Sender         string    `gorm:"type:varchar(10)" json:"sender"` // user | bot
	Text           string    `gorm:"type:text" json:"text"`
	Timestamp      time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (Message) TableName() string {
	return "messages"
}
