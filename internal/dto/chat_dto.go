package dto

import "github.com/recruvia/cv-insight/internal/rag"

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatSourceDTO struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

type ChatResponseDTO struct {
	Answer  string          `json:"answer"`
	Steps   int             `json:"steps"`
	Sources []ChatSourceDTO `json:"sources"`
}

func NewChatResponseDTO(result *rag.Result) ChatResponseDTO {
	sources := make([]ChatSourceDTO, len(result.Sources))
	for i, s := range result.Sources {
		sources[i] = ChatSourceDTO{Tool: s.Tool, Input: s.Input}
	}
	return ChatResponseDTO{
		Answer:  result.Answer,
		Steps:   result.Steps,
		Sources: sources,
	}
}
