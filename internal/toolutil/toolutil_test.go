package toolutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSummaryInput(t *testing.T) {
	engine.Init(engine.Config{})

	tests := []struct {
		name    string
		raw     string
		want    SummaryInput
		wantErr bool
	}{
		{"empty", ``, SummaryInput{Model: engine.DefaultModel, OutputFile: engine.DefaultOutputFile}, false},
		{"null", `null`, SummaryInput{Model: engine.DefaultModel, OutputFile: engine.DefaultOutputFile}, false},
		{"url only", `{"url":"dQw4w9WgXcQ"}`, SummaryInput{URL: "dQw4w9WgXcQ", Model: engine.DefaultModel, OutputFile: engine.DefaultOutputFile}, false},
		{"all fields", `{"url":"u","model":"m","output_file":"o.md","save_to_file":true}`, SummaryInput{URL: "u", Model: "m", OutputFile: "o.md", SaveToFile: true}, false},
		{"not an object", `[1,2]`, SummaryInput{}, true},
		{"wrong type", `{"save_to_file":"yes"}`, SummaryInput{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSummaryInput(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArguments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStageMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{engine.ErrMissingInput, "URL is required"},
		{engine.ErrInvalidVideoID, "Invalid YouTube URL or video ID"},
		{engine.ErrTranscriptFetch, "Failed to download transcript"},
		{engine.ErrSummaryGeneration, "Failed to generate summary"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		if got := StageMessage(&engine.StageError{Err: tt.err}); got != tt.want {
			t.Errorf("StageMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestResults(t *testing.T) {
	res := ErrorResult("nope")
	assert.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "nope", res.Content[0].(*mcp.TextContent).Text)

	res, err := JSONResult(map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "{\n  \"k\": \"v\"\n}", res.Content[0].(*mcp.TextContent).Text)
}
