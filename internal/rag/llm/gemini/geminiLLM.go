package gemini

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"

	"docassist/internal/config"
	"docassist/internal/rag/llm"
	"docassist/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var once sync.Once
var geminiClient *genai.Client

// GetGeminiClient returns a Provider for the given Gemini model. The
// underlying genai client is shared between the answer and judge providers.
func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
		if err != nil {
			logger.Error("Error creating Gemini client:", "error", err)
			return
		}
		geminiClient = c
		logger.Info("Gemini client created")
		go closeClient(ctx)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient, modelName: modelName}
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "model", c.modelName)

	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}
	if req.System != "" {
		contentConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(req.Prompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	if result == nil || result.Text() == "" {
		return "", errors.New("empty generation response")
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	geminiClient = nil
}
