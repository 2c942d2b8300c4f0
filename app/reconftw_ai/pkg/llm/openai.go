package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAIClient 兼容 OpenAI 协议的生成客户端 (DeepSeek / Qwen 等)
type OpenAIClient struct {
	chatModel model.ChatModel
}

// Ensure OpenAIClient implements Generator
var _ Generator = (*OpenAIClient)(nil)

// NewOpenAIClient 创建 OpenAI 兼容客户端
func NewOpenAIClient(ctx context.Context, apiKey, baseURL, defaultModel string) (*OpenAIClient, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   defaultModel,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &OpenAIClient{chatModel: chatModel}, nil
}

func (c *OpenAIClient) Name() string { return "OpenAI" }

// Generate 单次请求，model 覆盖初始化时的默认模型
func (c *OpenAIClient) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	messages := []*schema.Message{
		schema.UserMessage(prompt),
	}

	var opts []model.Option
	if modelID != "" {
		opts = append(opts, model.WithModel(modelID))
	}

	resp, err := c.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
