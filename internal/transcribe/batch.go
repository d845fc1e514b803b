package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"speechmatics-mcp/internal/domain"
)

const (
	// MinConcurrent and MaxConcurrent bound the batch admission gate.
	MinConcurrent = 1
	MaxConcurrent = 50
	// DefaultConcurrent is used when the caller does not set a bound.
	DefaultConcurrent = 10
)

// ErrInvalidConcurrency is returned for an out-of-range concurrency bound.
var ErrInvalidConcurrency = errors.New("max_concurrent must be between 1 and 50")

// TranscribeDirectory enumerates matching media files once and runs
// TranscribeFile across them with at most maxConcurrent in flight.
// Individual file failures are captured per outcome and never abort the
// batch; the returned error covers only invalid input or an unreadable
// directory. Outcomes keep enumeration order.
func (t *Transcriber) TranscribeDirectory(
	ctx context.Context,
	dir string,
	fileTypes []string,
	recursive bool,
	maxConcurrent int,
	opts domain.Options,
) (domain.Summary, error) {
	if maxConcurrent < MinConcurrent || maxConcurrent > MaxConcurrent {
		return domain.Summary{}, fmt.Errorf("%w, got %d", ErrInvalidConcurrency, maxConcurrent)
	}

	files, err := FindMediaFiles(dir, fileTypes, recursive)
	if err != nil {
		return domain.Summary{}, err
	}

	batchID := uuid.NewString()
	log := t.log.With().Str("batch_id", batchID).Logger()
	log.Info().Str("dir", dir).Int("files", len(files)).Int("max_concurrent", maxConcurrent).Msg("starting batch")

	outcomes := make([]domain.Outcome, len(files))

	// Fixed worker pool over an index channel: dispatch follows
	// enumeration order, in-flight work never exceeds the bound.
	workers := maxConcurrent
	if workers > len(files) {
		workers = len(files)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = t.TranscribeFile(ctx, files[i], opts)
			}
		}()
	}

	for i := range files {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	summary := domain.Summary{
		BatchID:  batchID,
		Outcomes: outcomes,
	}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case domain.OutcomeSucceeded:
			summary.Succeeded++
			summary.TotalDurationSeconds += outcome.DurationSeconds
		case domain.OutcomeSkipped:
			summary.Skipped++
		case domain.OutcomeFailed:
			summary.Failed++
		}
	}

	log.Info().Int("succeeded", summary.Succeeded).Int("skipped", summary.Skipped).Int("failed", summary.Failed).Msg("batch complete")
	return summary, nil
}

// FindMediaFiles returns the sorted absolute paths of files under dir whose
// extension is in fileTypes, optionally recursing into subdirectories.
// The listing is taken once; files appearing mid-run are not included.
func FindMediaFiles(dir string, fileTypes []string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	if len(fileTypes) == 0 {
		fileTypes = domain.DefaultFileTypes
	}
	extensions := make(map[string]bool, len(fileTypes))
	for _, ext := range fileTypes {
		extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	var files []string
	appendMatch := func(path string) error {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !extensions[ext] {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, abs)
		return nil
	}

	if recursive {
		err = filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			return appendMatch(path)
		})
	} else {
		var entries []os.DirEntry
		entries, err = os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if err = appendMatch(filepath.Join(dir, entry.Name())); err != nil {
					break
				}
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}
