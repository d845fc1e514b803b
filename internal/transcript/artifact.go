// Package transcript persists and locates transcript artifacts next to
// their source media files.
package transcript

import (
	"fmt"
	"os"
	"strings"
	"time"

	"speechmatics-mcp/internal/domain"
)

const (
	// PlainSuffix marks plain-text artifacts.
	PlainSuffix = ".transcript.txt"
	// TimedSuffix marks JSON artifacts with word-level timestamps.
	TimedSuffix = ".transcript.json"
)

// Artifact is a completed transcription ready to be written to disk.
type Artifact struct {
	Source          string
	TranscribedAt   time.Time
	DurationSeconds float64
	Accuracy        domain.Accuracy
	Diarization     bool
	Transcript      string
	Words           []domain.Word
}

// ArtifactPath returns the output path for a media file and output kind.
func ArtifactPath(mediaPath string, withTimestamps bool) string {
	if withTimestamps {
		return mediaPath + TimedSuffix
	}
	return mediaPath + PlainSuffix
}

// IsArtifactPath reports whether the path names a transcript artifact.
func IsArtifactPath(path string) bool {
	return strings.HasSuffix(path, PlainSuffix) || strings.HasSuffix(path, TimedSuffix)
}

// SourcePath returns the media path an artifact path was derived from.
func SourcePath(artifactPath string) string {
	if strings.HasSuffix(artifactPath, PlainSuffix) {
		return strings.TrimSuffix(artifactPath, PlainSuffix)
	}
	return strings.TrimSuffix(artifactPath, TimedSuffix)
}

// Find returns the existing transcript path for a media file, if any.
func Find(mediaPath string) (string, bool) {
	for _, suffix := range []string{PlainSuffix, TimedSuffix} {
		candidate := mediaPath + suffix
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Exists reports whether the artifact of the given kind is already present.
func Exists(mediaPath string, withTimestamps bool) bool {
	_, err := os.Stat(ArtifactPath(mediaPath, withTimestamps))
	return err == nil
}

// FormatDuration renders seconds as M:SS, or H:MM:SS past one hour.
func FormatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
