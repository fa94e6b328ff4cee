package summaryserver

import (
	"context"
	"encoding/json"

	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/toolutil"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// ServerName identifies the server in initialize responses and the HTTP transport.
	ServerName = "ytsummary"
	// SummaryToolName is the single tool exposed by both servers.
	SummaryToolName = "youtube_summary"
)

// SummaryTool describes youtube_summary. Schema defaults follow the current engine config.
func SummaryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        SummaryToolName,
		Description: "Download YouTube video transcript and generate AI summary",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"url": {
					Type:        "string",
					Description: "YouTube video URL or video ID",
				},
				"model": {
					Type:        "string",
					Description: "LLM model to use for summary",
					Default:     rawJSON(engine.Cfg.DefaultModel),
				},
				"output_file": {
					Type:        "string",
					Description: "Output markdown file path",
					Default:     rawJSON(engine.Cfg.DefaultOutputFile),
				},
				"save_to_file": {
					Type:        "boolean",
					Description: "Whether to save results to file",
					Default:     rawJSON(false),
				},
			},
			Required: []string{"url"},
		},
	}
}

func rawJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

// callSummary is the tools/call handler shared by both transports.
func callSummary(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	in, err := toolutil.DecodeSummaryInput(args)
	if err != nil {
		return nil, err
	}
	return toolutil.RunSummary(ctx, in)
}

// RegisterTools registers youtube_summary on the given MCP server.
func RegisterTools(server *mcp.Server) {
	server.AddTool(SummaryTool(), func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := callSummary(ctx, req.Params.Arguments)
		if err != nil {
			return toolutil.ErrorResult(err.Error()), nil
		}
		return res, nil
	})
}
