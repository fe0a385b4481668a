package engine

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls the chat completions API through go-openai.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	opts   generatorOpts
}

// NewOpenAIGenerator creates a generator for model. baseURL may be empty
// for the public OpenAI endpoint.
func NewOpenAIGenerator(apiKey, baseURL, model string, opts ...GeneratorOption) *OpenAIGenerator {
	o := defaultGeneratorOpts()
	for _, fn := range opts {
		fn(&o)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = o.httpClient
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		opts:   o,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)

	var messages []openai.ChatCompletionMessage
	if g.opts.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.opts.system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.opts.maxTokens,
		Temperature: float32(g.opts.temperature),
	})
	if err != nil {
		metrics.LLMErrors.Add(1)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return "", fmt.Errorf("openai chat completion: %w: %w", &HTTPStatusError{StatusCode: apiErr.HTTPStatusCode}, err)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMErrors.Add(1)
		return "", ErrEmptyCompletion
	}
	return checkCompletion(resp.Choices[0].Message.Content)
}
