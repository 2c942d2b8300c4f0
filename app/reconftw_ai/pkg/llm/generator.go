package llm

import (
	"context"
	"fmt"

	"github.com/iWorld-y/reconftw_ai/app/reconftw_ai/pkg/config"
)

// Generator 定义通用的文本生成接口
type Generator interface {
	// Generate 用指定模型生成文本
	Generate(ctx context.Context, model, prompt string) (string, error)
	// Name 提供方名称，用于错误信息
	Name() string
}

// NewGenerator 根据配置创建生成客户端，apiKey 由调用方显式传入
func NewGenerator(ctx context.Context, cfg config.LLMConfig, apiKey string) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm api key is missing")
	}

	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, apiKey, cfg.BaseURL)

	case config.ProviderOpenAI:
		return NewOpenAIClient(ctx, apiKey, cfg.BaseURL, cfg.Model)

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
