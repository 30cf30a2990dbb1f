package config

import (
	"log"
	"os"
	"sync"
)

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BaseURL   string
	UploadDir string

	// LLMProvider selects the JSON generator for summarization and match
	// scoring: "gemini" (default) or "openrouter". The agent's tool loop
	// always runs on Gemini.
	LLMProvider string
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		uploadDir := os.Getenv("UPLOAD_DIR")
		if uploadDir == "" {
			uploadDir = "./uploads/cvs"
		}
		provider := os.Getenv("LLM_PROVIDER")
		if provider == "" {
			provider = "gemini"
		}
		appConfig = &AppConfig{
			Name:        os.Getenv("APP_NAME"),
			Env:         env,
			Port:        os.Getenv("APP_PORT"),
			BaseURL:     os.Getenv("APP_URL"),
			UploadDir:   uploadDir,
			LLMProvider: provider,
		}
	})
	return appConfig
}
