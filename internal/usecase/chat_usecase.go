package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/rag"
	"go.uber.org/zap"
)

const DefaultHistoryWindow = 10

// AgentInvoker answers one user query given prior conversation turns.
type AgentInvoker interface {
	Invoke(ctx context.Context, query string, history []rag.Turn) (*rag.Result, error)
}

// ConversationStore is the slice of the conversation repository the chat
// flow needs.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, userID string) (*model.Conversation, error)
	AppendMessage(ctx context.Context, message *model.Message) error
	RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]model.Message, error)
}

// ChatUsecase binds the agent to a persistent per-user conversation log.
type ChatUsecase struct {
	conversations ConversationStore
	agent         AgentInvoker
	logger        *zap.Logger

	// HistoryWindow caps how many prior turns the agent sees.
	HistoryWindow int
}

func NewChatUsecase(conversations ConversationStore, agent AgentInvoker, logger *zap.Logger) *ChatUsecase {
	return &ChatUsecase{
		conversations: conversations,
		agent:         agent,
		logger:        logger,
		HistoryWindow: DefaultHistoryWindow,
	}
}

// Chat appends the user's message to their conversation, invokes the agent
// with the preceding history window, records the reply and returns it. An
// agent failure still produces a recorded, in-band apology turn so the log
// stays consistent.
func (uc *ChatUsecase) Chat(ctx context.Context, userID, message string) (*rag.Result, error) {
	if userID == "" {
		userID = "anonymous"
	}

	conversation, err := uc.conversations.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// History is read before the current message is stored, so the window
	// never includes the message being answered.
	recent, err := uc.conversations.RecentMessages(ctx, conversation.ID, uc.HistoryWindow)
	if err != nil {
		return nil, err
	}

	if err := uc.conversations.AppendMessage(ctx, &model.Message{
		ConversationID: conversation.ID,
		Sender:         model.SenderUser,
		Text:           message,
	}); err != nil {
		return nil, err
	}

	history := make([]rag.Turn, len(recent))
	for i, m := range recent {
		history[i] = rag.Turn{Sender: m.Sender, Text: m.Text}
	}

	result, err := uc.agent.Invoke(ctx, message, history)
	if err != nil {
		uc.logger.Error("agent invocation failed",
			zap.String("user_id", userID), zap.Error(err))
		result = &rag.Result{
			Answer: "Sorry, I ran into a problem answering that. Please try again.",
		}
	}

	if err := uc.conversations.AppendMessage(ctx, &model.Message{
		ConversationID: conversation.ID,
		Sender:         model.SenderBot,
		Text:           result.Answer,
	}); err != nil {
		return nil, err
	}

	uc.logger.Info("chat turn complete",
		zap.String("user_id", userID), zap.Int("steps", result.Steps),
		zap.Int("sources", len(result.Sources)))
	return result, nil
}

// History returns the newest limit turns of a user's conversation in
// chronological order.
func (uc *ChatUsecase) History(ctx context.Context, userID string, limit int) ([]model.Message, error) {
	if userID == "" {
		userID = "anonymous"
	}
	if limit <= 0 {
		limit = uc.HistoryWindow
	}
	conversation, err := uc.conversations.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.conversations.RecentMessages(ctx, conversation.ID, limit)
}
