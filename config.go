package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML config file. Environment variables override it.
type fileConfig struct {
	LLM struct {
		Provider        string        `yaml:"provider"`
		APIBase         string        `yaml:"api_base"`
		APIKey          string        `yaml:"api_key"`
		APIKeyFallbacks []string      `yaml:"api_key_fallbacks"`
		Model           string        `yaml:"model"`
		Temperature     *float64      `yaml:"temperature"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Gemini struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"gemini"`
	YouTube struct {
		BaseURL string        `yaml:"base_url"`
		Langs   []string      `yaml:"langs"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"youtube"`
	Output struct {
		Dir  string `yaml:"dir"`
		File string `yaml:"file"`
	} `yaml:"output"`
	LogLevel string `yaml:"log_level"`
	MCPPort  string `yaml:"mcp_port"`
}

// loadFileConfig reads path. An empty path yields the zero config.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// newLogger builds the process logger. Output goes to w (stderr in main)
// so stdout stays free for progress lines and RPC frames.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func orStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
