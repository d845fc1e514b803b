package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// probeTimeout bounds a single ffprobe invocation.
const probeTimeout = 30 * time.Second

// Prober reports the duration of a media file in seconds.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// FFProbe measures media duration with the ffprobe CLI.
type FFProbe struct {
	binary string
	runner commandRunner
}

// NewFFProbe constructs the production prober.
func NewFFProbe() *FFProbe {
	return &FFProbe{
		binary: "ffprobe",
		runner: &execRunner{},
	}
}

// ffprobeOutput mirrors the -show_format JSON shape.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the file duration in seconds, or an error when ffprobe
// fails or reports no duration.
func (p *FFProbe) Probe(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	}

	result, err := p.runner.Run(ctx, p.binary, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("ffprobe timed out after %s", probeTimeout)
		}
		return 0, fmt.Errorf("ffprobe failed (exit=%d): %w", result.ExitCode, err)
	}

	var out ffprobeOutput
	if err := json.Unmarshal([]byte(result.Stdout), &out); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, errors.New("ffprobe output has no duration")
	}

	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", out.Format.Duration, err)
	}
	return seconds, nil
}

// NewFFProbeForTests constructs a prober with an injectable runner.
func NewFFProbeForTests(binary string, runner commandRunner) *FFProbe {
	return &FFProbe{
		binary: binary,
		runner: runner,
	}
}
