// Package toolutil provides shared helpers for the youtube_summary tool,
// used by both the stdio line server and the go-sdk MCP server.
package toolutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SummaryInput is the argument object of the youtube_summary tool.
type SummaryInput struct {
	URL        string `json:"url"`
	Model      string `json:"model,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	SaveToFile bool   `json:"save_to_file,omitempty"`
}

// ErrInvalidArguments marks tool arguments that are not a valid SummaryInput object.
var ErrInvalidArguments = errors.New("invalid arguments")

// DecodeSummaryInput parses raw tool arguments and fills in configured defaults.
// Missing or null arguments decode to an empty input.
func DecodeSummaryInput(raw json.RawMessage) (SummaryInput, error) {
	var in SummaryInput
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &in); err != nil {
			return SummaryInput{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}
	if in.Model == "" {
		in.Model = engine.Cfg.DefaultModel
	}
	if in.OutputFile == "" {
		in.OutputFile = engine.Cfg.DefaultOutputFile
	}
	return in, nil
}

// TextResult wraps text in a single content block.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// ErrorResult reports a tool-level failure the caller can read.
func ErrorResult(msg string) *mcp.CallToolResult {
	res := TextResult(msg)
	res.IsError = true
	return res
}

// JSONResult wraps v as indented JSON text in a single content block.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return TextResult(string(data)), nil
}

// RunSummary executes the pipeline for in. Pipeline stage failures come back
// as error results; only unexpected failures return a non-nil error.
func RunSummary(ctx context.Context, in SummaryInput) (*mcp.CallToolResult, error) {
	out, err := engine.RunPipeline(ctx, engine.PipelineRequest{
		Input:      in.URL,
		Model:      in.Model,
		OutputFile: in.OutputFile,
		SaveToFile: in.SaveToFile,
	})
	if err != nil {
		var se *engine.StageError
		if errors.As(err, &se) {
			return ErrorResult(StageMessage(se)), nil
		}
		return nil, err
	}
	return JSONResult(out)
}

// StageMessage is the user-facing text for a failed pipeline stage.
func StageMessage(se *engine.StageError) string {
	switch {
	case errors.Is(se, engine.ErrMissingInput):
		return "URL is required"
	case errors.Is(se, engine.ErrInvalidVideoID):
		return "Invalid YouTube URL or video ID"
	case errors.Is(se, engine.ErrTranscriptFetch):
		return "Failed to download transcript"
	case errors.Is(se, engine.ErrSummaryGeneration):
		return "Failed to generate summary"
	}
	return se.Error()
}
