// ytsummary is a YouTube transcript summarizer.
//
// Downloads a video's captions, asks an LLM for a structured summary and
// writes both to a Markdown file. Runs as a one-shot CLI, as a
// line-delimited JSON-RPC server on stdio, or as an HTTP MCP server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytsummary/internal/engine"
	"github.com/anatolykoptev/go_ytsummary/internal/engine/sources"
	"github.com/anatolykoptev/go_ytsummary/internal/summaryserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var version = "dev"

// errFailed signals a failure already reported to the user.
var errFailed = errors.New("ytsummary: failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	output     string
	model      string
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	var fc fileConfig

	cmd := &cobra.Command{
		Use:           "ytsummary [youtube-url]",
		Short:         "Download a YouTube transcript and generate an AI summary",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			fc, err = setup(opts.configPath)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				opts.output = engine.Cfg.DefaultOutputFile
			}
			if !cmd.Flags().Changed("model") {
				opts.model = engine.Cfg.DefaultModel
			}
			return runSummary(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("YTSUMMARY_CONFIG"), "YAML config file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", engine.DefaultOutputFile, "Output markdown file")
	cmd.Flags().StringVarP(&opts.model, "model", "m", engine.DefaultModel, "LLM model to use for summary")

	cmd.AddCommand(newServeCmd(&fc))
	return cmd
}

func newServeCmd(fc *fileConfig) *cobra.Command {
	var useHTTP bool
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the youtube_summary tool over stdio JSON-RPC or HTTP MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !useHTTP {
				slog.Info("serving stdio", slog.String("version", version))
				err := summaryserver.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), version)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			if port == "" {
				port = env.Str("MCP_PORT", orStr(fc.MCPPort, "8892"))
			}
			return serveHTTP(port)
		},
	}
	cmd.Flags().BoolVar(&useHTTP, "http", false, "Serve MCP over HTTP instead of stdio")
	cmd.Flags().StringVar(&port, "port", "", "HTTP port (default $MCP_PORT or 8892)")
	return cmd
}

func serveHTTP(port string) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    summaryserver.ServerName,
		Version: version,
	}, nil)
	summaryserver.RegisterTools(server)
	slog.Info("starting ytsummary", slog.String("port", port))

	return mcpserver.Run(server, mcpserver.Config{
		Name:         summaryserver.ServerName,
		Version:      version,
		Port:         port,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}

// setup loads .env and the optional YAML file, installs the logger and initializes the engine.
func setup(configPath string) (fileConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fileConfig{}, fmt.Errorf("load .env: %w", err)
	}
	fc, err := loadFileConfig(configPath)
	if err != nil {
		return fileConfig{}, err
	}
	slog.SetDefault(newLogger(os.Stderr, env.Str("LOG_LEVEL", orStr(fc.LogLevel, "warn"))))
	initEngine(fc)
	return fc, nil
}

func initEngine(fc fileConfig) {
	c := engine.Config{
		LLMProvider:        env.Str("LLM_PROVIDER", orStr(fc.LLM.Provider, engine.ProviderAuto)),
		LLMAPIBase:         env.Str("LLM_API_BASE", orStr(fc.LLM.APIBase, "https://api.anthropic.com/v1")),
		LLMAPIKey:          env.Str("LLM_API_KEY", fc.LLM.APIKey),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", strings.Join(fc.LLM.APIKeyFallbacks, ",")),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", orFloat(fc.LLM.Temperature, 0.3)),
		GeminiAPIKey:       env.Str("GEMINI_API_KEY", fc.Gemini.APIKey),
		GeminiBaseURL:      env.Str("GEMINI_BASE_URL", fc.Gemini.BaseURL),
		DefaultModel:       env.Str("LLM_MODEL", orStr(fc.LLM.Model, engine.DefaultModel)),
		DefaultOutputFile:  env.Str("OUTPUT_FILE", orStr(fc.Output.File, engine.DefaultOutputFile)),
		OutputDir:          env.Str("OUTPUT_DIR", fc.Output.Dir),
		YouTubeBaseURL:     env.Str("YOUTUBE_BASE_URL", orStr(fc.YouTube.BaseURL, engine.DefaultYouTubeBase)),
		TranscriptLangs:    env.List("TRANSCRIPT_LANGS", orStr(strings.Join(fc.YouTube.Langs, ","), "en")),
		HTTPClient: &http.Client{
			Timeout: env.Duration("HTTP_TIMEOUT", orDuration(fc.YouTube.Timeout, 30*time.Second)),
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		LLMHTTPClient: &http.Client{Timeout: env.Duration("LLM_TIMEOUT", orDuration(fc.LLM.Timeout, 120*time.Second))},
		Transcripts:   sources.YouTubeTranscripts,
	}
	engine.Init(c)
	slog.Debug("engine initialized",
		slog.String("provider", c.LLMProvider),
		slog.String("model", c.DefaultModel),
		slog.String("youtube", c.YouTubeBaseURL))
}

// runSummary is the one-shot CLI flow. Progress goes to out; any failure,
// including a failed save, is reported on one line and exits nonzero.
func runSummary(ctx context.Context, in io.Reader, out io.Writer, args []string, opts rootOptions) error {
	var input string
	if len(args) > 0 {
		input = args[0]
	} else {
		fmt.Fprint(out, "Enter YouTube video URL: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(line)
	}

	res, err := engine.RunPipeline(ctx, engine.PipelineRequest{
		Input:      input,
		Model:      opts.model,
		OutputFile: opts.output,
		SaveToFile: true,
		Progress: func(_ engine.Stage, msg string) {
			fmt.Fprintln(out, msg)
		},
	})
	if err != nil {
		fmt.Fprintln(out, cliMessage(err))
		return errFailed
	}
	if res.SavedToFile != nil && !*res.SavedToFile {
		return errFailed
	}
	return nil
}

func cliMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrMissingInput):
		return "Error: No YouTube URL provided"
	case errors.Is(err, engine.ErrInvalidVideoID):
		return "Error: Invalid YouTube URL or video ID"
	case errors.Is(err, engine.ErrTranscriptFetch):
		return "Failed to download transcript"
	case errors.Is(err, engine.ErrSummaryGeneration):
		return "Failed to generate summary"
	}
	return "Error: " + err.Error()
}
