package engine

import (
	"errors"
	"strings"
)

// --- Transcript types ---

// TranscriptSegment is one caption cue as returned by the transcript service.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// JoinSegments flattens caption segments into one text, single-space separated, in order.
func JoinSegments(segs []TranscriptSegment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// --- Pipeline types ---

// Stage names one step of a pipeline run.
type Stage int

const (
	StageInput Stage = iota
	StageResolve
	StageFetch
	StageSummarize
	StageSave
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageResolve:
		return "resolve"
	case StageFetch:
		return "fetch"
	case StageSummarize:
		return "summarize"
	case StageSave:
		return "save"
	}
	return "unknown"
}

// Pipeline failures. Stage wrappers return exactly one of these; the
// underlying service error only reaches the log.
var (
	ErrMissingInput      = errors.New("no YouTube URL provided")
	ErrInvalidVideoID    = errors.New("invalid YouTube URL or video ID")
	ErrTranscriptFetch   = errors.New("failed to download transcript")
	ErrSummaryGeneration = errors.New("failed to generate summary")
	ErrSave              = errors.New("unable to save file")
)

// StageError reports which stage stopped a pipeline run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// PipelineRequest is the input of one pipeline run.
type PipelineRequest struct {
	Input      string // URL or bare video ID
	Model      string // empty = Cfg.DefaultModel
	OutputFile string // empty = Cfg.DefaultOutputFile
	SaveToFile bool
	// Progress, when set, receives a human-readable message at every stage transition.
	Progress func(stage Stage, msg string)
}

// PipelineResult is the aggregate output of a successful run.
// SavedToFile is nil unless a save was requested; OutputFile is set only when the save succeeded.
type PipelineResult struct {
	VideoID     string `json:"video_id"`
	VideoURL    string `json:"video_url"`
	Transcript  string `json:"transcript"`
	Summary     string `json:"summary"`
	ModelUsed   string `json:"model_used"`
	SavedToFile *bool  `json:"saved_to_file,omitempty"`
	OutputFile  string `json:"output_file,omitempty"`
}

// Document is the content persisted by SaveMarkdown.
type Document struct {
	VideoURL   string
	Summary    string
	Model      string
	Transcript string
}
