package describe

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilkoid/woo-ingest/pkg/config"
	"github.com/ilkoid/woo-ingest/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Generator генерирует маркетинговый текст описания через
// OpenAI-совместимый chat completions API.
type Generator struct {
	api   *openai.Client
	model string
}

// NewGenerator создает генератор из конфигурации.
//
// Поддерживает custom BaseURL для OpenAI-совместимых провайдеров.
func NewGenerator(cfg config.OpenAIConfig) *Generator {
	cfg = cfg.GetDefaults()

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.ModelName,
	}
}

// Generate запрашивает у модели SEO-оптимизированное описание товара.
//
// System prompt параметризуется названием товара как целевым keyword,
// user message — "{name}: {description поставщика}".
//
// Пустой или отсутствующий ответ модели — НЕ ошибка: возвращается пустая
// строка, и Compose деградирует до заголовка с изображениями.
func (g *Generator) Generate(ctx context.Context, name, description string) (string, error) {
	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a helpful assistant. Provide a detailed description for the given product. SEO optimize using %s as the target keyword.",
					name),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("%s: %s", name, description),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		utils.Warn("LLM returned no choices, description degrades to heading + images", "product", name)
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
