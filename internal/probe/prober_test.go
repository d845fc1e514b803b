package probe

import (
	"context"
	"errors"
	"testing"
)

// fakeRunner simulates command execution outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// TestProbeParsesDuration checks the happy path and argument shape.
func TestProbeParsesDuration(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			gotName = name
			gotArgs = append([]string{}, args...)
			return commandResult{Stdout: `{"format":{"duration":"93.5"}}`}, nil
		},
	}

	prober := NewFFProbeForTests("ffprobe-custom", runner)
	seconds, err := prober.Probe(context.Background(), "/media/a.mp3")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if seconds != 93.5 {
		t.Fatalf("seconds = %v, want 93.5", seconds)
	}
	if gotName != "ffprobe-custom" {
		t.Fatalf("command = %q, want ffprobe-custom", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "/media/a.mp3" {
		t.Fatalf("last arg = %q, want media path", gotArgs[len(gotArgs)-1])
	}
}

// TestProbeCommandFailure checks exec error propagation.
func TestProbeCommandFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stderr: "boom", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	prober := NewFFProbeForTests("ffprobe", runner)
	if _, err := prober.Probe(context.Background(), "/media/a.mp3"); err == nil {
		t.Fatal("expected error")
	}
}

// TestProbeMissingDuration checks output without a duration field.
func TestProbeMissingDuration(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stdout: `{"format":{}}`}, nil
		},
	}

	prober := NewFFProbeForTests("ffprobe", runner)
	if _, err := prober.Probe(context.Background(), "/media/a.mp3"); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

// TestProbeInvalidJSON checks unparsable ffprobe output.
func TestProbeInvalidJSON(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stdout: "{not-json"}, nil
		},
	}

	prober := NewFFProbeForTests("ffprobe", runner)
	if _, err := prober.Probe(context.Background(), "/media/a.mp3"); err == nil {
		t.Fatal("expected json parse error")
	}
}
