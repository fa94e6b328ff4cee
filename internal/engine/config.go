package engine

import (
	"context"
	"net/http"
)

// Built-in defaults, overridable per call or through configuration.
const (
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultOutputFile  = "transcript.md"
	DefaultYouTubeBase = "https://www.youtube.com"
	MaxTranscriptChars = 8000
	SummaryMaxTokens   = 1000
)

// TranscriptSource downloads caption segments for a video ID.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) ([]TranscriptSegment, error)
}

// TranscriptSourceFunc adapts a plain function to TranscriptSource.
type TranscriptSourceFunc func(ctx context.Context, videoID string) ([]TranscriptSegment, error)

// Fetch calls f.
func (f TranscriptSourceFunc) Fetch(ctx context.Context, videoID string) ([]TranscriptSegment, error) {
	return f(ctx, videoID)
}

// Generator sends a single user prompt to a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMProvider        string // auto | openai | gemini
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMTemperature     float64
	GeminiAPIKey       string
	GeminiBaseURL      string // empty = Google default
	DefaultModel       string
	DefaultOutputFile  string
	OutputDir          string // empty = current working directory
	YouTubeBaseURL     string
	TranscriptLangs    []string
	HTTPClient         *http.Client
	LLMHTTPClient      *http.Client
	Transcripts        TranscriptSource // nil = transcript fetching disabled
	Generator          Generator        // nil = built from the LLM fields by NewGenerator
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Empty fields fall back to the package defaults.
func Init(c Config) {
	if c.DefaultModel == "" {
		c.DefaultModel = DefaultModel
	}
	if c.DefaultOutputFile == "" {
		c.DefaultOutputFile = DefaultOutputFile
	}
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = DefaultYouTubeBase
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = []string{"en"}
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.LLMHTTPClient == nil {
		c.LLMHTTPClient = c.HTTPClient
	}
	if c.Generator == nil {
		c.Generator = NewGenerator(c)
	}
	cfg = c
	Cfg = &cfg
}
