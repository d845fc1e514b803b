// Package diagnostics runs startup checks for external dependencies.
package diagnostics

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Status indicates whether a single startup check passed.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one startup check result with optional hint.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report aggregates startup checks.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Checker validates the credential and external tools at startup.
type Checker struct {
	lookPath func(string) (string, error)
	now      func() time.Time
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath: exec.LookPath,
		now:      time.Now,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(apiKey string) Report {
	items := []Item{
		c.checkAPIKey(apiKey),
		c.checkTool("ffprobe"),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == StatusFail {
			hasFailures = true
			break
		}
	}

	return Report{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkAPIKey verifies the Speechmatics credential is configured.
func (c *Checker) checkAPIKey(apiKey string) Item {
	if strings.TrimSpace(apiKey) == "" {
		return Item{
			ID:      "api_key",
			Name:    "Speechmatics API key",
			Status:  StatusFail,
			Message: "SPEECHMATICS_API_KEY is not set.",
			Hint:    "Export the key in the environment or add it to a .env file next to the server.",
		}
	}

	return Item{
		ID:      "api_key",
		Name:    "Speechmatics API key",
		Status:  StatusPass,
		Message: "API key is configured.",
	}
}

// checkTool verifies an optional CLI executable is on PATH. A missing
// prober only degrades duration reporting, so it warns instead of failing.
func (c *Checker) checkTool(name string) Item {
	path, err := c.lookPath(name)
	if err != nil {
		return Item{
			ID:      "tool_" + name,
			Name:    name,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install ffmpeg to include media durations in transcript headers.",
		}
	}

	return Item{
		ID:      "tool_" + name,
		Name:    name,
		Status:  StatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(lookPath func(string) (string, error), now func() time.Time) *Checker {
	return &Checker{
		lookPath: lookPath,
		now:      now,
	}
}
