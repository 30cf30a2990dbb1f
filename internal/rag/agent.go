package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/recruvia/cv-insight/internal/logger"
	"github.com/recruvia/cv-insight/internal/model"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultMaxSteps bounds the reasoning loop. Each step is one model turn; the
// ceiling prevents unbounded tool-call loops.
const DefaultMaxSteps = 8

// ToolCaller runs one model turn given the transcript so far and the tool
// declarations. Satisfied by the Gemini service.
type ToolCaller interface {
	GenerateWithTools(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// AgentError is a reasoning-loop fault. Non-fatal for the conversation: the
// caller surfaces an apologetic in-band answer and records it.
type AgentError struct {
	Err error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent: %v", e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// Turn is one prior conversation message.
type Turn struct {
	Sender string // model.SenderUser or model.SenderBot
	Text   string
}

// Source records one tool invocation made while answering, for auditability.
type Source struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// Result is the agent's answer plus its evidence trail. Steps counts the
// messages exchanged with the model, including tool results.
type Result struct {
	Answer  string   `json:"answer"`
	Steps   int      `json:"steps"`
	Sources []Source `json:"sources"`
}

// Agent is the tool-augmented conversational reasoner over the CV index.
type Agent struct {
	llm      ToolCaller
	tools    *Toolset
	maxSteps int
	logger   *zap.Logger
}

func NewAgent(llm ToolCaller, tools *Toolset, log *zap.Logger) *Agent {
	return &Agent{
		llm:      llm,
		tools:    tools,
		maxSteps: DefaultMaxSteps,
		logger:   log,
	}
}

// Invoke answers a user query given a bounded window of prior turns. The
// model may call retrieval tools zero or more times before its final answer;
// tool failures are reported back to it as tool results rather than aborting
// the turn.
func (a *Agent) Invoke(ctx context.Context, query string, history []Turn) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &AgentError{Err: fmt.Errorf("empty query")}
	}

	a.logger.Info("invoking agent",
		zap.String("query", logger.TruncateForLog(query, 200)),
		zap.Int("history_turns", len(history)))

	contents := formatHistory(history)
	contents = append(contents, genai.NewContentFromText(query, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0)),
		SystemInstruction: genai.NewContentFromText(agentSystemPrompt, genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: a.tools.declarations()},
		},
	}

	var sources []Source
	for step := 0; step < a.maxSteps; step++ {
		resp, err := a.llm.GenerateWithTools(ctx, contents, cfg)
		if err != nil {
			return nil, &AgentError{Err: err}
		}

		content := resp.Candidates[0].Content
		calls := functionCalls(content)
		if len(calls) == 0 {
			answer := textOf(content)
			contents = append(contents, content)
			a.logger.Info("agent answered",
				zap.Int("steps", len(contents)), zap.Int("tool_calls", len(sources)))
			return &Result{
				Answer:  answer,
				Steps:   len(contents),
				Sources: sources,
			}, nil
		}

		contents = append(contents, content)
		for _, call := range calls {
			sources = append(sources, Source{Tool: call.Name, Input: call.Args})

			output, err := a.tools.dispatch(ctx, call.Name, call.Args)
			response := map[string]any{"result": output}
			if err != nil {
				// Tool failures go back to the model so it can
				// recover or apologize instead of crashing the turn.
				a.logger.Warn("tool call failed",
					zap.String("tool", call.Name), zap.Error(err))
				response = map[string]any{"error": err.Error()}
			}

			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     call.Name,
						Response: response,
					},
				}},
			})
		}
	}

	// Step ceiling reached: answer best-effort rather than hanging.
	a.logger.Warn("agent hit step ceiling", zap.Int("max_steps", a.maxSteps))
	return &Result{
		Answer: "I wasn't able to finish reasoning about your question within my step limit. " +
			"Here is what I gathered so far; please try a more specific question.",
		Steps:   len(contents),
		Sources: sources,
	}, nil
}

// formatHistory converts stored turns into alternating user/model messages.
func formatHistory(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Sender == model.SenderBot {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}

func functionCalls(content *genai.Content) []*genai.FunctionCall {
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

func textOf(content *genai.Content) string {
	var b strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}
