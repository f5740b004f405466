package config

import (
	"time"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
)

// LLM builds an llm.OpenAIConfig from the "llm" section of a config:
//
//	llm:
//	  provider: deepseek
//	  model: deepseek-chat
//	  api_key: ${DEEPSEEK_API_KEY}
//	  max_tokens: 1024
//	  temperature: 0.7
//	  timeout: 90s
func (c Config) LLM() llm.OpenAIConfig {
	section := c.Section("llm")
	return llm.OpenAIConfig{
		Provider:    section.String("provider", ""),
		Model:       section.String("model", ""),
		APIKey:      section.String("api_key", ""),
		BaseURL:     section.String("base_url", ""),
		MaxTokens:   section.Int("max_tokens", 0),
		Temperature: section.Float("temperature", 0),
		Timeout:     section.Duration("timeout", 120*time.Second),
	}
}
