package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"speechmatics-mcp/internal/domain"
	"speechmatics-mcp/internal/transcribe"
	"speechmatics-mcp/internal/transcript"
)

// textJSON renders a payload as an indented JSON text result.
func textJSON(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorPayload renders a structured error result. Tool calls always return
// a JSON payload, never a protocol-level error.
func errorPayload(message string) (*mcp.CallToolResult, error) {
	return textJSON(map[string]any{
		"status":        "error",
		"error_message": message,
	})
}

// requestOptions decodes the shared transcription options of a tool call.
func requestOptions(req mcp.CallToolRequest) (domain.Options, error) {
	accuracy := domain.Accuracy(req.GetString("accuracy", string(domain.AccuracyStandard)))
	if !accuracy.Valid() {
		return domain.Options{}, fmt.Errorf("invalid accuracy %q: must be %q or %q", accuracy, domain.AccuracyStandard, domain.AccuracyEnhanced)
	}

	return domain.Options{
		Accuracy:       accuracy,
		Diarize:        req.GetBool("diarize", false),
		WithTimestamps: req.GetBool("with_timestamps", false),
		Force:          req.GetBool("force", false),
	}, nil
}

// handleTranscribeFile runs one file and reports its outcome.
func (s *Server) handleTranscribeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return errorPayload(err.Error())
	}
	opts, err := requestOptions(req)
	if err != nil {
		return errorPayload(err.Error())
	}

	outcome := s.transcriber.TranscribeFile(ctx, filePath, opts)
	switch outcome.Status {
	case domain.OutcomeFailed:
		return errorPayload(outcome.Reason)
	case domain.OutcomeSkipped:
		return textJSON(map[string]any{
			"status":          "skipped",
			"transcript_path": outcome.TranscriptPath,
			"message":         fmt.Sprintf("Transcript already exists. Pass force=true to re-transcribe: %s", outcome.TranscriptPath),
		})
	default:
		return textJSON(map[string]any{
			"status":             "success",
			"transcript_path":    outcome.TranscriptPath,
			"duration_seconds":   outcome.DurationSeconds,
			"duration_formatted": transcript.FormatDuration(outcome.DurationSeconds),
			"accuracy":           opts.Accuracy,
		})
	}
}

// handleTranscribeDirectory runs the batch orchestrator over a directory.
func (s *Server) handleTranscribeDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory, err := req.RequireString("directory")
	if err != nil {
		return errorPayload(err.Error())
	}
	opts, err := requestOptions(req)
	if err != nil {
		return errorPayload(err.Error())
	}

	fileTypes := req.GetStringSlice("file_types", domain.DefaultFileTypes)
	recursive := req.GetBool("recursive", false)
	maxConcurrent := req.GetInt("max_concurrent", transcribe.DefaultConcurrent)

	summary, err := s.transcriber.TranscribeDirectory(ctx, directory, fileTypes, recursive, maxConcurrent, opts)
	if err != nil {
		return errorPayload(err.Error())
	}

	if len(summary.Outcomes) == 0 {
		return textJSON(map[string]any{
			"status":                 "success",
			"files_processed":        0,
			"files_skipped":          0,
			"files_failed":           0,
			"transcripts":            []any{},
			"total_duration_seconds": 0,
			"message":                "No media files found in directory",
		})
	}

	transcripts := make([]map[string]any, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		entry := map[string]any{
			"file":   outcome.File,
			"status": string(outcome.Status),
		}
		if outcome.TranscriptPath != "" {
			entry["transcript_path"] = outcome.TranscriptPath
		}
		if outcome.Status == domain.OutcomeSucceeded {
			entry["duration_seconds"] = outcome.DurationSeconds
		}
		if outcome.Reason != "" {
			entry["error_message"] = outcome.Reason
		}
		transcripts = append(transcripts, entry)
	}

	return textJSON(map[string]any{
		"status":                   "success",
		"batch_id":                 summary.BatchID,
		"files_processed":          summary.Succeeded,
		"files_skipped":            summary.Skipped,
		"files_failed":             summary.Failed,
		"transcripts":              transcripts,
		"total_duration_seconds":   summary.TotalDurationSeconds,
		"total_duration_formatted": transcript.FormatDuration(summary.TotalDurationSeconds),
	})
}

// handleGetTranscript reads back an existing artifact.
func (s *Server) handleGetTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return errorPayload(err.Error())
	}

	view, err := transcript.Read(filePath)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			return errorPayload(fmt.Sprintf("No transcript found for: %s", filePath))
		}
		return errorPayload(err.Error())
	}

	payload := map[string]any{
		"status":           "success",
		"transcript":       view.Transcript,
		"transcript_path":  view.TranscriptPath,
		"source_media":     view.SourceMedia,
		"duration_seconds": view.DurationSeconds,
		"has_timestamps":   view.HasTimestamps,
	}
	if view.HasTimestamps {
		payload["word_count"] = view.WordCount
	}
	return textJSON(payload)
}

// handleGetUsage reports account usage for the current month.
func (s *Server) handleGetUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	usage, err := s.usage.Usage(ctx)
	if err != nil {
		return errorPayload(err.Error())
	}

	return textJSON(map[string]any{
		"status":                "success",
		"hours_used_this_month": usage.HoursUsedThisMonth,
		"monthly_limit_hours":   usage.MonthlyLimitHours,
		"hours_remaining":       usage.HoursRemaining,
		"jobs_this_month":       usage.JobsThisMonth,
	})
}
