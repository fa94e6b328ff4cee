package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/llm"
	"google.golang.org/genai"
)

// LLM provider names accepted in Config.LLMProvider.
const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// truncationMarker is appended to transcripts cut at MaxTranscriptChars.
const truncationMarker = "..."

// TruncateTranscript keeps the first MaxTranscriptChars runes of a longer
// transcript and appends truncationMarker after them.
func TruncateTranscript(transcript string) string {
	if utf8.RuneCountInString(transcript) <= MaxTranscriptChars {
		return transcript
	}
	return TruncateRunes(transcript, MaxTranscriptChars, "") + truncationMarker
}

// BuildSummaryPrompt embeds the (possibly truncated) transcript in the summary template.
func BuildSummaryPrompt(transcript string) string {
	return fmt.Sprintf(summaryPrompt, TruncateTranscript(transcript))
}

// Summarize generates a summary of transcript with the named model.
// Any backend failure, including an empty completion, is reported as ErrSummaryGeneration.
func Summarize(ctx context.Context, transcript, model string) (string, error) {
	metrics.LLMCalls.Add(1)
	summary, err := cfg.Generator.Generate(ctx, model, BuildSummaryPrompt(transcript), SummaryMaxTokens)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		metrics.LLMErrors.Add(1)
		slog.Warn("llm: summary generation failed",
			slog.String("model", model), slog.Any("error", err))
		return "", ErrSummaryGeneration
	}
	return strings.TrimSpace(summary), nil
}

// NewGenerator picks the generation backend for c.
// Auto mode sends gemini-* models to the native Gemini API when a key is
// configured, and everything else to the OpenAI-compatible endpoint.
func NewGenerator(c Config) Generator {
	openai := &OpenAIGenerator{
		BaseURL:      c.LLMAPIBase,
		APIKey:       c.LLMAPIKey,
		FallbackKeys: c.LLMAPIKeyFallbacks,
		Temperature:  c.LLMTemperature,
		HTTPClient:   c.LLMHTTPClient,
	}
	if c.LLMAPIBase != "" && c.DefaultModel != "" {
		openai.client(c.DefaultModel)
	}
	gemini := &GeminiGenerator{
		APIKey:     c.GeminiAPIKey,
		BaseURL:    c.GeminiBaseURL,
		HTTPClient: c.LLMHTTPClient,
	}
	switch strings.ToLower(c.LLMProvider) {
	case ProviderOpenAI:
		return openai
	case ProviderGemini:
		return gemini
	}
	if c.GeminiAPIKey == "" {
		return openai
	}
	return &routingGenerator{openai: openai, gemini: gemini}
}

type routingGenerator struct {
	openai Generator
	gemini Generator
}

func (r *routingGenerator) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if strings.HasPrefix(strings.ToLower(model), "gemini") {
		return r.gemini.Generate(ctx, model, prompt, maxTokens)
	}
	return r.openai.Generate(ctx, model, prompt, maxTokens)
}

// OpenAIGenerator talks to any OpenAI-compatible /chat/completions endpoint
// (Anthropic, Gemini OpenAI shim, LiteLLM proxy, OpenAI itself).
// One go-kit llm client is built per model and reused.
type OpenAIGenerator struct {
	BaseURL      string
	APIKey       string
	FallbackKeys []string
	Temperature  float64
	HTTPClient   *http.Client

	mu      sync.Mutex
	clients map[string]*llm.Client
}

// client returns the cached client for model, building it on first use.
func (g *OpenAIGenerator) client(model string) *llm.Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[model]; ok {
		return c
	}
	hc := g.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	c := llm.NewClient(g.BaseURL, g.APIKey, model,
		llm.WithFallbackKeys(g.FallbackKeys),
		llm.WithMaxTokens(SummaryMaxTokens),
		llm.WithTemperature(g.Temperature),
		llm.WithHTTPClient(hc),
	)
	if g.clients == nil {
		g.clients = make(map[string]*llm.Client)
	}
	g.clients[model] = c
	return c
}

// Generate sends prompt as a single user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if g.BaseURL == "" {
		return "", errors.New("openai: LLM_API_BASE is not configured")
	}
	return g.client(model).Complete(ctx, "", prompt, llm.WithChatMaxTokens(maxTokens))
}

// GeminiGenerator calls the native Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Generate sends prompt as a single user-role content.
func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if g.APIKey == "" {
		return "", errors.New("gemini: GEMINI_API_KEY is not configured")
	}
	cc := &genai.ClientConfig{
		APIKey:     g.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.HTTPClient,
	}
	if g.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return resp.Text(), nil
}
