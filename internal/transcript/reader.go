package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no artifact exists for the given path.
var ErrNotFound = errors.New("transcript not found")

// View is the read-back form of a persisted artifact.
type View struct {
	TranscriptPath  string
	SourceMedia     string
	Transcript      string
	DurationSeconds *float64
	HasTimestamps   bool
	WordCount       int
}

// Read resolves a media or transcript path to its artifact and parses it.
func Read(path string) (View, error) {
	var transcriptPath, sourceMedia string
	if IsArtifactPath(path) {
		transcriptPath = path
		sourceMedia = SourcePath(path)
	} else {
		found, ok := Find(path)
		if !ok {
			return View{}, fmt.Errorf("%w for: %s", ErrNotFound, path)
		}
		transcriptPath = found
		sourceMedia = path
	}

	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return View{}, fmt.Errorf("%w for: %s", ErrNotFound, path)
		}
		return View{}, fmt.Errorf("read transcript %s: %w", transcriptPath, err)
	}

	if strings.HasSuffix(transcriptPath, TimedSuffix) {
		return parseTimed(transcriptPath, sourceMedia, data)
	}
	return parsePlain(transcriptPath, sourceMedia, data)
}

// parseTimed decodes the JSON artifact form.
func parseTimed(transcriptPath, sourceMedia string, data []byte) (View, error) {
	var doc timedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return View{}, fmt.Errorf("parse transcript json %s: %w", transcriptPath, err)
	}

	duration := doc.Metadata.DurationSeconds
	return View{
		TranscriptPath:  transcriptPath,
		SourceMedia:     sourceMedia,
		Transcript:      doc.Transcript,
		DurationSeconds: &duration,
		HasTimestamps:   true,
		WordCount:       len(doc.Words),
	}, nil
}

// parsePlain extracts the transcript body and header duration.
func parsePlain(transcriptPath, sourceMedia string, data []byte) (View, error) {
	lines := strings.Split(string(data), "\n")

	var body []string
	pastHeader := false
	for _, line := range lines {
		if pastHeader {
			body = append(body, line)
		} else if line == "" {
			pastHeader = true
		}
	}

	view := View{
		TranscriptPath: transcriptPath,
		SourceMedia:    sourceMedia,
		Transcript:     strings.TrimSpace(strings.Join(body, "\n")),
	}

	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if !strings.HasPrefix(line, "# Duration:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "# Duration:"))
		if seconds, ok := parseClock(value); ok {
			view.DurationSeconds = &seconds
		}
		break
	}

	return view, nil
}

// parseClock parses M:SS or H:MM:SS duration strings into seconds.
func parseClock(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, false
		}
		total = total*60 + n
	}
	return float64(total), true
}
