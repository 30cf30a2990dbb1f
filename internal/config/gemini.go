package config

import (
	"os"
	"sync"
)

type GeminiConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		chatModel := os.Getenv("GEMINI_CHAT_MODEL")
		if chatModel == "" {
			chatModel = "gemini-2.5-flash"
		}
		embeddingModel := os.Getenv("GEMINI_EMBEDDING_MODEL")
		if embeddingModel == "" {
			embeddingModel = "gemini-embedding-001"
		}
		geminiConfig = &GeminiConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			ChatModel:      chatModel,
			EmbeddingModel: embeddingModel,
		}
	})
	return geminiConfig
}
