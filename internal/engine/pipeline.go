package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// FetchTranscript downloads and flattens the transcript for videoID.
// Any transcript-service failure, or an empty transcript, is reported as ErrTranscriptFetch.
func FetchTranscript(ctx context.Context, videoID string) (string, error) {
	metrics.TranscriptRequests.Add(1)
	var (
		segs []TranscriptSegment
		err  error
	)
	if cfg.Transcripts == nil {
		err = errors.New("no transcript source configured")
	} else {
		segs, err = cfg.Transcripts.Fetch(ctx, videoID)
	}
	text := strings.TrimSpace(JoinSegments(segs))
	if err == nil && text == "" {
		err = errors.New("empty transcript")
	}
	if err != nil {
		metrics.TranscriptErrors.Add(1)
		slog.Warn("transcript: fetch failed", slog.String("id", videoID), slog.Any("error", err))
		return "", ErrTranscriptFetch
	}
	return text, nil
}

// RunPipeline resolves, fetches, summarizes and optionally saves, in that order.
// The first failing stage aborts the run with a *StageError. A failed save
// does not: it is reported through PipelineResult.SavedToFile.
func RunPipeline(ctx context.Context, req PipelineRequest) (out *PipelineResult, err error) {
	_ = TrackOperation(ctx, "pipeline", func(ctx context.Context) error {
		out, err = runPipeline(ctx, req)
		return err
	})
	return
}

func runPipeline(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	metrics.PipelineRuns.Add(1)
	runID := uuid.NewString()
	log := slog.With(slog.String("run", runID))

	progress := req.Progress
	if progress == nil {
		progress = func(Stage, string) {}
	}
	fail := func(stage Stage, err error) (*PipelineResult, error) {
		metrics.PipelineFailures.Add(1)
		log.Info("pipeline: failed", slog.String("stage", stage.String()), slog.Any("error", err))
		return nil, &StageError{Stage: stage, Err: err}
	}

	model := req.Model
	if model == "" {
		model = cfg.DefaultModel
	}
	outputFile := req.OutputFile
	if outputFile == "" {
		outputFile = cfg.DefaultOutputFile
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		return fail(StageInput, ErrMissingInput)
	}

	videoID, ok := ExtractVideoID(input)
	if !ok {
		return fail(StageResolve, ErrInvalidVideoID)
	}
	log.Info("pipeline: resolved", slog.String("id", videoID))
	progress(StageResolve, "Video ID: "+videoID)

	progress(StageFetch, "Downloading transcript...")
	transcript, err := FetchTranscript(ctx, videoID)
	if err != nil {
		return fail(StageFetch, err)
	}
	progress(StageFetch, "Transcript downloaded successfully")

	progress(StageSummarize, fmt.Sprintf("Generating summary using %s...", model))
	summary, err := Summarize(ctx, transcript, model)
	if err != nil {
		return fail(StageSummarize, err)
	}
	progress(StageSummarize, "Summary generated successfully")

	out := &PipelineResult{
		VideoID:    videoID,
		VideoURL:   req.Input,
		Transcript: transcript,
		Summary:    summary,
		ModelUsed:  model,
	}

	if req.SaveToFile {
		path, err := SaveMarkdown(cfg.OutputDir, outputFile, Document{
			VideoURL:   req.Input,
			Summary:    summary,
			Model:      model,
			Transcript: transcript,
		})
		saved := err == nil
		out.SavedToFile = &saved
		if saved {
			out.OutputFile = path
			progress(StageSave, "Summary and transcript saved to: "+path)
		} else {
			progress(StageSave, "Error: Unable to save file. Please check permissions and try again.")
		}
	}

	log.Info("pipeline: done", slog.String("id", videoID), slog.String("model", model))
	return out, nil
}
