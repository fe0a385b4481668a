package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// ErrEmptyCompletion is returned when a model answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorOption tunes a Generator.
type GeneratorOption func(*generatorOpts)

type generatorOpts struct {
	system      string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

func defaultGeneratorOpts() generatorOpts {
	return generatorOpts{
		system:      summarySystem,
		temperature: 0.5,
		maxTokens:   2048,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithSystem sets the system message sent with every prompt. Empty disables it.
func WithSystem(system string) GeneratorOption {
	return func(o *generatorOpts) { o.system = system }
}

func WithTemperature(t float64) GeneratorOption {
	return func(o *generatorOpts) { o.temperature = t }
}

func WithMaxTokens(n int) GeneratorOption {
	return func(o *generatorOpts) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

func WithHTTPClient(hc *http.Client) GeneratorOption {
	return func(o *generatorOpts) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// completeFunc matches llm.Client.Complete with the per-call options applied.
type completeFunc func(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error)

// LLMGenerator calls an OpenAI-compatible endpoint through the go-kit client.
type LLMGenerator struct {
	complete completeFunc
	opts     generatorOpts
}

// NewLLMGenerator wraps an existing go-kit client.
func NewLLMGenerator(client *llm.Client, opts ...GeneratorOption) *LLMGenerator {
	o := defaultGeneratorOpts()
	for _, fn := range opts {
		fn(&o)
	}
	return &LLMGenerator{
		complete: func(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error) {
			return client.Complete(ctx, system, prompt,
				llm.WithChatTemperature(temperature),
				llm.WithChatMaxTokens(maxTokens),
			)
		},
		opts: o,
	}
}

// Generate sends prompt and returns the fence-stripped answer.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := g.complete(ctx, g.opts.system, prompt, g.opts.temperature, g.opts.maxTokens)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return checkCompletion(resp)
}

// NewGenerator builds the generator selected by cfg.LLMProvider.
// model overrides cfg.LLMModel when non-empty.
func NewGenerator(cfg Config, model string, opts ...GeneratorOption) (Generator, error) {
	if model == "" {
		model = cfg.LLMModel
	}
	switch cfg.LLMProvider {
	case ProviderOpenAI:
		key := cfg.OpenAIAPIKey
		if key == "" {
			key = cfg.LLMAPIKey
		}
		return NewOpenAIGenerator(key, cfg.OpenAIBaseURL, model, opts...), nil
	case ProviderKit, "":
		o := defaultGeneratorOpts()
		for _, fn := range opts {
			fn(&o)
		}
		client := llm.NewClient(cfg.LLMAPIBase, cfg.LLMAPIKey, model,
			llm.WithFallbackKeys(cfg.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(cfg.LLMMaxTokens),
			llm.WithTemperature(cfg.LLMTemperature),
			llm.WithHTTPClient(o.httpClient),
		)
		return NewLLMGenerator(client, opts...), nil
	default:
		return nil, &InvalidArgumentError{Name: "LLM_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", cfg.LLMProvider)}
	}
}

// checkCompletion normalises raw model output; blank output is an error.
func checkCompletion(resp string) (string, error) {
	text := stripFences(resp)
	if text == "" {
		metrics.LLMErrors.Add(1)
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// stripFences removes a markdown code fence wrapping the whole LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```md")
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// --- Prompt builders ---

// SummaryPrompt asks for a kind-styled summary of the full transcript.
func SummaryPrompt(kind Kind, transcript string) string {
	return fmt.Sprintf(summaryPrompt, kindInstructions[kind], transcript)
}

// PartialPrompt asks for a summary of chunk part (1-based) out of total.
func PartialPrompt(kind Kind, part, total int, chunk string) string {
	return fmt.Sprintf(partialPrompt, part, total, kindInstructions[kind], chunk)
}

// ReducePrompt combines ordered partial summaries into one kind-styled summary.
func ReducePrompt(kind Kind, partials []string) string {
	var sb strings.Builder
	for i, p := range partials {
		fmt.Fprintf(&sb, "\n[Part %d]\n%s\n", i+1, p)
	}
	return fmt.Sprintf(reducePrompt, kindInstructions[kind], sb.String())
}

// TitlePrompt asks for a video title from a summary or a transcript excerpt.
func TitlePrompt(fromSummary bool, content string) string {
	if fromSummary {
		return fmt.Sprintf(titleFromSummaryPrompt, content)
	}
	return fmt.Sprintf(titleFromTranscriptPrompt, content)
}
