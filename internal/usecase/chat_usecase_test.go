package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/rag"
	"go.uber.org/zap"
)

type stubConversations struct {
	conversations map[string]*model.Conversation
	messages      map[uuid.UUID][]model.Message
}

func newStubConversations() *stubConversations {
	return &stubConversations{
		conversations: make(map[string]*model.Conversation),
		messages:      make(map[uuid.UUID][]model.Message),
	}
}

func (s *stubConversations) GetOrCreate(ctx context.Context, userID string) (*model.Conversation, error) {
	if c, ok := s.conversations[userID]; ok {
		return c, nil
	}
	c := &model.Conversation{ID: uuid.New(), UserID: userID}
	s.conversations[userID] = c
	return c, nil
}

func (s *stubConversations) AppendMessage(ctx context.Context, message *model.Message) error {
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], *message)
	return nil
}

func (s *stubConversations) RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]model.Message, error) {
	all := s.messages[conversationID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type stubAgent struct {
	result    *rag.Result
	err       error
	histories [][]rag.Turn
	queries   []string
}

func (s *stubAgent) Invoke(ctx context.Context, query string, history []rag.Turn) (*rag.Result, error) {
	s.queries = append(s.queries, query)
	s.histories = append(s.histories, history)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestChatRecordsBothTurns(t *testing.T) {
	conversations := newStubConversations()
	agent := &stubAgent{result: &rag.Result{Answer: "Alice has 5 years of Python.", Steps: 2}}
	uc := NewChatUsecase(conversations, agent, zap.NewNop())

	result, err := uc.Chat(context.Background(), "hr-1", "tell me about Alice")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Answer != "Alice has 5 years of Python." {
		t.Fatalf("answer = %q", result.Answer)
	}

	conversation := conversations.conversations["hr-1"]
	log := conversations.messages[conversation.ID]
	if len(log) != 2 {
		t.Fatalf("message log has %d entries, want 2", len(log))
	}
	if log[0].Sender != model.SenderUser || log[1].Sender != model.SenderBot {
		t.Fatalf("senders = %q, %q", log[0].Sender, log[1].Sender)
	}
	if log[1].Text != result.Answer {
		t.Fatalf("recorded bot text = %q", log[1].Text)
	}
}

func TestChatHistoryExcludesCurrentMessage(t *testing.T) {
	conversations := newStubConversations()
	agent := &stubAgent{result: &rag.Result{Answer: "ok"}}
	uc := NewChatUsecase(conversations, agent, zap.NewNop())
	ctx := context.Background()

	if _, err := uc.Chat(ctx, "hr-1", "first question"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := uc.Chat(ctx, "hr-1", "second question"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// First turn saw no history at all.
	if len(agent.histories[0]) != 0 {
		t.Fatalf("first turn history = %v, want empty", agent.histories[0])
	}
	// Second turn sees the first exchange but never its own message.
	second := agent.histories[1]
	if len(second) != 2 {
		t.Fatalf("second turn history has %d turns, want 2", len(second))
	}
	for _, turn := range second {
		if turn.Text == "second question" {
			t.Fatal("history window contains the message being answered")
		}
	}
	if second[0].Text != "first question" || second[1].Text != "ok" {
		t.Fatalf("history order wrong: %+v", second)
	}
}

func TestChatHistoryWindowBounded(t *testing.T) {
	conversations := newStubConversations()
	agent := &stubAgent{result: &rag.Result{Answer: "ok"}}
	uc := NewChatUsecase(conversations, agent, zap.NewNop())
	uc.HistoryWindow = 4
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if _, err := uc.Chat(ctx, "hr-1", fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("Chat %d: %v", i, err)
		}
	}

	last := agent.histories[len(agent.histories)-1]
	if len(last) != 4 {
		t.Fatalf("history window = %d turns, want 4", len(last))
	}
	// The window holds the newest prior turns, oldest first.
	if last[len(last)-1].Text != "ok" {
		t.Fatalf("window should end with the latest bot reply, got %q", last[len(last)-1].Text)
	}
}

func TestChatAgentFailureAnsweredInBand(t *testing.T) {
	conversations := newStubConversations()
	agent := &stubAgent{err: &rag.AgentError{Err: errors.New("model unavailable")}}
	uc := NewChatUsecase(conversations, agent, zap.NewNop())

	result, err := uc.Chat(context.Background(), "hr-1", "anything")
	if err != nil {
		t.Fatalf("agent failure must not surface as a chat error: %v", err)
	}
	if result.Answer == "" {
		t.Fatal("expected an apologetic in-band answer")
	}

	conversation := conversations.conversations["hr-1"]
	log := conversations.messages[conversation.ID]
	if len(log) != 2 {
		t.Fatalf("message log has %d entries, want both turns recorded", len(log))
	}
	if log[1].Text != result.Answer {
		t.Fatalf("apology not recorded, got %q", log[1].Text)
	}
}

func TestChatDefaultsAnonymousUser(t *testing.T) {
	conversations := newStubConversations()
	agent := &stubAgent{result: &rag.Result{Answer: "ok"}}
	uc := NewChatUsecase(conversations, agent, zap.NewNop())

	if _, err := uc.Chat(context.Background(), "", "hello"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, ok := conversations.conversations["anonymous"]; !ok {
		t.Fatal("empty user id should map to the anonymous conversation")
	}
}
