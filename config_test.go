package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytsummary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: gemini
  model: gemini-2.5-flash
  temperature: 0
  timeout: 45s
  api_key_fallbacks: [k2, k3]
youtube:
  langs: [ru, en]
  timeout: 10s
output:
  dir: /tmp/out
log_level: debug
`), 0o644))

	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", fc.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", fc.LLM.Model)
	require.NotNil(t, fc.LLM.Temperature)
	assert.Zero(t, *fc.LLM.Temperature)
	assert.Equal(t, 45*time.Second, fc.LLM.Timeout)
	assert.Equal(t, []string{"k2", "k3"}, fc.LLM.APIKeyFallbacks)
	assert.Equal(t, []string{"ru", "en"}, fc.YouTube.Langs)
	assert.Equal(t, 10*time.Second, fc.YouTube.Timeout)
	assert.Equal(t, "/tmp/out", fc.Output.Dir)
	assert.Equal(t, "debug", fc.LogLevel)
}

func TestLoadFileConfig_Errors(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  modle: typo\n"), 0o644))
	_, err = loadFileConfig(path)
	assert.Error(t, err)

	fc, err := loadFileConfig("")
	require.NoError(t, err)
	assert.Empty(t, fc.LLM.Model)
}

func TestLoadFileConfig_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := loadFileConfig(path)
	assert.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	newLogger(&buf, "bogus").Info("info by default")
	assert.Contains(t, buf.String(), "info by default")
}

type cliGenerator struct{ err error }

func (g cliGenerator) Generate(context.Context, string, string, int) (string, error) {
	return "cli summary", g.err
}

func initTestEngine(t *testing.T, genErr error) string {
	t.Helper()
	dir := t.TempDir()
	saved := *engine.Cfg
	engine.Init(engine.Config{
		OutputDir: dir,
		Generator: cliGenerator{err: genErr},
		Transcripts: engine.TranscriptSourceFunc(func(context.Context, string) ([]engine.TranscriptSegment, error) {
			return []engine.TranscriptSegment{{Text: "spoken words"}}, nil
		}),
	})
	t.Cleanup(func() { engine.Init(saved) })
	return dir
}

func TestRunSummary_PromptsForURL(t *testing.T) {
	dir := initTestEngine(t, nil)
	var out bytes.Buffer
	err := runSummary(context.Background(), strings.NewReader("dQw4w9WgXcQ\n"), &out, nil,
		rootOptions{output: "notes", model: "m1"})
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Enter YouTube video URL: "))
	assert.Contains(t, text, "Video ID: dQw4w9WgXcQ")
	assert.Contains(t, text, "Generating summary using m1...")
	assert.Contains(t, text, "Summary and transcript saved to: ")

	base, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(base, "notes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "cli summary")
}

func TestRunSummary_Failures(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdin  string
		genErr error
		want   string
	}{
		{"no input", nil, "\n", nil, "Error: No YouTube URL provided"},
		{"invalid", []string{"https://evil.com/watch?v=AAAAAAAAAAA"}, "", nil, "Error: Invalid YouTube URL or video ID"},
		{"generation", []string{"dQw4w9WgXcQ"}, "", errors.New("down"), "Failed to generate summary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initTestEngine(t, tt.genErr)
			var out bytes.Buffer
			err := runSummary(context.Background(), strings.NewReader(tt.stdin), &out, tt.args,
				rootOptions{output: "x.md", model: "m"})
			assert.ErrorIs(t, err, errFailed)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRunSummary_SaveFailureExitsNonZero(t *testing.T) {
	initTestEngine(t, nil)
	engine.Cfg.OutputDir = filepath.Join(t.TempDir(), "missing")

	var out bytes.Buffer
	err := runSummary(context.Background(), strings.NewReader(""), &out, []string{"dQw4w9WgXcQ"},
		rootOptions{output: "x.md", model: "m"})
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out.String(), "Error: Unable to save file.")
}
