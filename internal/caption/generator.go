package caption

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/petos-app/petos/internal/config"
	"github.com/petos-app/petos/internal/models"
)

// ErrAllModelsExhausted reports that every model in the fallback list failed.
// The wrapping error message carries the last attempt's failure detail.
var ErrAllModelsExhausted = errors.New("all caption models failed")

// ChatClient is the slice of the OpenAI client the generator needs.
// *openai.Client satisfies it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces pet captions by trying a priority-ordered list of model
// identifiers until one answers. The provider's available model set varies
// per account and over time, so a single hardcoded model would hard-fail
// where a sibling model still works.
type Generator struct {
	client         ChatClient
	modelFallbacks []string
	attemptTimeout time.Duration
	log            *slog.Logger
}

func NewGenerator(cfg config.Config, log *slog.Logger) *Generator {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	return &Generator{
		client:         openai.NewClientWithConfig(clientCfg),
		modelFallbacks: cfg.CaptionModels,
		attemptTimeout: cfg.RequestTimeout,
		log:            log,
	}
}

// NewGeneratorWithClient wires an explicit client, used by tests.
func NewGeneratorWithClient(client ChatClient, modelFallbacks []string, attemptTimeout time.Duration, log *slog.Logger) *Generator {
	return &Generator{
		client:         client,
		modelFallbacks: modelFallbacks,
		attemptTimeout: attemptTimeout,
		log:            log,
	}
}

// Generate asks each model in order for an inner-monologue caption for the
// photo. The first non-empty answer wins; an attempt failure is logged and
// the next model is tried.
func (g *Generator) Generate(ctx context.Context, lang models.Language, imageBytes []byte, mimeType string) (string, error) {
	if len(imageBytes) == 0 {
		return "", fmt.Errorf("no image data")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := PromptFor(lang)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageBytes))

	var lastErr error
	for _, model := range g.modelFallbacks {
		text, err := g.attempt(ctx, model, prompt, dataURL)
		if err != nil {
			g.log.Warn("caption model failed, trying next", "model", model, "err", err)
			lastErr = fmt.Errorf("model %s: %w", model, err)
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: %v", ErrAllModelsExhausted, lastErr)
}

func (g *Generator) attempt(ctx context.Context, model, prompt, imageDataURL string) (string, error) {
	attemptCtx := ctx
	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: imageDataURL,
						},
					},
				},
			},
		},
		MaxTokens: 120,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("blank caption")
	}
	return text, nil
}
