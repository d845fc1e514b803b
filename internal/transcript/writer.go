package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"speechmatics-mcp/internal/domain"
)

// timedDocument is the on-disk JSON artifact shape.
type timedDocument struct {
	Metadata   timedMetadata `json:"metadata"`
	Transcript string        `json:"transcript"`
	Words      []domain.Word `json:"words"`
}

// timedMetadata describes the source and job parameters of an artifact.
type timedMetadata struct {
	Source          string          `json:"source"`
	TranscribedAt   string          `json:"transcribed_at"`
	DurationSeconds float64         `json:"duration_seconds"`
	Accuracy        domain.Accuracy `json:"accuracy"`
	Diarization     bool            `json:"diarization"`
}

// Writer renders artifacts to disk beside their source media.
type Writer struct {
	now       func() time.Time
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewWriter constructs a writer using real clock and filesystem.
func NewWriter() *Writer {
	return &Writer{
		now:       time.Now,
		writeFile: os.WriteFile,
	}
}

// Write persists the artifact for the given media path and output kind and
// returns the artifact path. Concurrent forced writes to the same media
// path race; the last writer wins.
func (w *Writer) Write(mediaPath string, withTimestamps bool, artifact Artifact) (string, error) {
	outputPath := ArtifactPath(mediaPath, withTimestamps)
	transcribedAt := artifact.TranscribedAt
	if transcribedAt.IsZero() {
		transcribedAt = w.now().UTC()
	}
	sourceName := filepath.Base(mediaPath)

	var data []byte
	if withTimestamps {
		words := artifact.Words
		if words == nil {
			words = []domain.Word{}
		}
		doc := timedDocument{
			Metadata: timedMetadata{
				Source:          sourceName,
				TranscribedAt:   transcribedAt.Format(time.RFC3339),
				DurationSeconds: artifact.DurationSeconds,
				Accuracy:        artifact.Accuracy,
				Diarization:     artifact.Diarization,
			},
			Transcript: artifact.Transcript,
			Words:      words,
		}

		encoded, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode transcript json: %w", err)
		}
		data = encoded
	} else {
		durationStr := "unknown"
		if artifact.DurationSeconds > 0 {
			durationStr = FormatDuration(artifact.DurationSeconds)
		}

		header := fmt.Sprintf(
			"# Transcribed: %s\n# Source: %s\n# Duration: %s\n# Accuracy: %s\n# Diarization: %t\n\n",
			transcribedAt.Format(time.RFC3339),
			sourceName,
			durationStr,
			artifact.Accuracy,
			artifact.Diarization,
		)
		data = []byte(header + artifact.Transcript)
	}

	if err := w.writeFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// NewWriterForTests constructs a writer with injectable dependencies.
func NewWriterForTests(
	now func() time.Time,
	writeFile func(name string, data []byte, perm os.FileMode) error,
) *Writer {
	return &Writer{
		now:       now,
		writeFile: writeFile,
	}
}
