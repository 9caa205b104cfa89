package openaiLLM

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"docassist/internal/config"
	"docassist/internal/rag/llm"
	"docassist/pkg/logger_i"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logger_i.Logger
var once sync.Once
var apiClient *openai.Client

// GetOpenAIClient returns a Provider backed by OpenAI chat completions.
func GetOpenAIClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		c := openai.NewClient(option.WithAPIKey(apikey))
		apiClient = &c
		logger.Info("OpenAI client created")
	})

	if apiClient == nil {
		return nil
	}
	return &llmClient{api: *apiClient, modelName: modelName}
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "model", c.modelName)

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	result, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", err
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", errors.New("empty generation response")
	}
	return result.Choices[0].Message.Content, nil
}
