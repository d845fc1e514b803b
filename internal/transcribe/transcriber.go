// Package transcribe orchestrates transcription jobs: the single-file
// submit/poll/write cycle and the bounded-concurrency directory batch.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"speechmatics-mcp/internal/domain"
	"speechmatics-mcp/internal/probe"
	"speechmatics-mcp/internal/speechmatics"
	"speechmatics-mcp/internal/transcript"
)

// API is the slice of the Speechmatics client used per job.
type API interface {
	Submit(ctx context.Context, path string, cfg speechmatics.JobConfig) (string, error)
	Status(ctx context.Context, jobID string) (domain.JobStatus, error)
	Transcript(ctx context.Context, jobID string, diarize bool) (*speechmatics.Result, error)
}

// Transcriber runs transcription jobs against a remote API and writes
// artifacts beside the source media.
type Transcriber struct {
	api          API
	prober       probe.Prober
	writer       *transcript.Writer
	language     string
	pollInterval time.Duration
	pollTimeout  time.Duration
	log          zerolog.Logger
}

// New constructs a transcriber with the given collaborators and poll policy.
func New(
	api API,
	prober probe.Prober,
	writer *transcript.Writer,
	language string,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	log zerolog.Logger,
) *Transcriber {
	return &Transcriber{
		api:          api,
		prober:       prober,
		writer:       writer,
		language:     language,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		log:          log,
	}
}

// TranscribeFile runs one file through submit, poll, fetch, and write.
// Every failure is captured in the returned Outcome; it never panics or
// returns an error past this boundary.
func (t *Transcriber) TranscribeFile(ctx context.Context, path string, opts domain.Options) domain.Outcome {
	if _, err := os.Stat(path); err != nil {
		return failed(path, fmt.Sprintf("File not found: %s", path))
	}

	if !opts.Force {
		artifactPath := transcript.ArtifactPath(path, opts.WithTimestamps)
		if _, err := os.Stat(artifactPath); err == nil {
			t.log.Debug().Str("file", path).Str("transcript", artifactPath).Msg("transcript exists, skipping")
			return domain.Outcome{
				File:           path,
				Status:         domain.OutcomeSkipped,
				TranscriptPath: artifactPath,
				Reason:         "transcript already exists",
			}
		}
	}

	jobID, err := t.api.Submit(ctx, path, speechmatics.JobConfig{
		Language: t.language,
		Accuracy: opts.Accuracy,
		Diarize:  opts.Diarize,
	})
	if err != nil {
		return failed(path, err.Error())
	}

	if err := t.waitForCompletion(ctx, jobID); err != nil {
		return failed(path, err.Error())
	}

	result, err := t.api.Transcript(ctx, jobID, opts.Diarize)
	if err != nil {
		return failed(path, err.Error())
	}

	duration := result.DurationSeconds
	if probed, err := t.prober.Probe(ctx, path); err == nil {
		duration = probed
	} else {
		t.log.Warn().Str("file", path).Err(err).Msg("duration probe failed, using API-reported duration")
	}

	outputPath, err := t.writer.Write(path, opts.WithTimestamps, transcript.Artifact{
		Source:          path,
		DurationSeconds: duration,
		Accuracy:        opts.Accuracy,
		Diarization:     opts.Diarize,
		Transcript:      result.Transcript,
		Words:           result.Words,
	})
	if err != nil {
		return failed(path, err.Error())
	}

	t.log.Info().Str("file", path).Str("job_id", jobID).Str("transcript", outputPath).Msg("transcription complete")
	return domain.Outcome{
		File:            path,
		Status:          domain.OutcomeSucceeded,
		TranscriptPath:  outputPath,
		DurationSeconds: duration,
	}
}

// waitForCompletion polls job status until done, failure, cancellation, or
// the poll deadline.
func (t *Transcriber) waitForCompletion(ctx context.Context, jobID string) error {
	deadline := time.Now().Add(t.pollTimeout)

	for {
		status, err := t.api.Status(ctx, jobID)
		if err != nil {
			return err
		}

		switch status {
		case domain.JobStatusDone:
			return nil
		case domain.JobStatusFailed:
			return fmt.Errorf("transcription job %s failed remotely", jobID)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for job %s after %s", jobID, t.pollTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.pollInterval):
		}
	}
}

// failed builds a Failed outcome with a descriptive reason.
func failed(path, reason string) domain.Outcome {
	return domain.Outcome{
		File:   path,
		Status: domain.OutcomeFailed,
		Reason: reason,
	}
}
