package speechmatics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speechmatics-mcp/internal/domain"
)

// newTestClient wires a client against an httptest server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	now := func() time.Time {
		return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	}
	return NewClientForTests(srv.URL, "sk-test", srv.Client(), now)
}

// TestSubmitSendsMultipartJob checks upload form fields and auth header.
func TestSubmitSendsMultipartJob(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "a.mp3")
	if err := os.WriteFile(mediaPath, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	var gotConfig string
	var gotAuth string
	var gotFileName string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotConfig = r.FormValue("config")
		if files := r.MultipartForm.File["data_file"]; len(files) == 1 {
			gotFileName = files[0].Filename
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"job-123"}`)
	}))

	jobID, err := client.Submit(context.Background(), mediaPath, JobConfig{
		Language: "en",
		Accuracy: domain.AccuracyEnhanced,
		Diarize:  true,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if jobID != "job-123" {
		t.Fatalf("job id = %q", jobID)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotFileName != "a.mp3" {
		t.Fatalf("file name = %q", gotFileName)
	}
	wantConfig := `{"type":"transcription","transcription_config":{"language":"en","operating_point":"enhanced","diarization":"speaker"}}`
	if gotConfig != wantConfig {
		t.Fatalf("config = %s, want %s", gotConfig, wantConfig)
	}
}

// TestSubmitOmitsDiarizationWhenDisabled checks the default config shape.
func TestSubmitOmitsDiarizationWhenDisabled(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "a.mp3")
	if err := os.WriteFile(mediaPath, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	var gotConfig string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		gotConfig = r.FormValue("config")
		fmt.Fprint(w, `{"id":"job-1"}`)
	}))

	if _, err := client.Submit(context.Background(), mediaPath, JobConfig{Language: "en", Accuracy: domain.AccuracyStandard}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want := `{"type":"transcription","transcription_config":{"language":"en","operating_point":"standard"}}`
	if gotConfig != want {
		t.Fatalf("config = %s, want %s", gotConfig, want)
	}
}

// TestSubmitMissingFile checks local file errors surface before any call.
func TestSubmitMissingFile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	if _, err := client.Submit(context.Background(), "/nope/missing.mp3", JobConfig{Accuracy: domain.AccuracyStandard}); err == nil {
		t.Fatal("expected error")
	}
}

// TestSubmitAPIErrorMapping checks friendly messages for auth failures.
func TestSubmitAPIErrorMapping(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "a.mp3")
	if err := os.WriteFile(mediaPath, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"bad key"}`)
	}))

	_, err := client.Submit(context.Background(), mediaPath, JobConfig{Accuracy: domain.AccuracyStandard})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Error() != "Invalid Speechmatics API key." {
		t.Fatalf("message = %q", apiErr.Error())
	}
}

// TestStatusMapping checks remote status strings against the job model.
func TestStatusMapping(t *testing.T) {
	cases := []struct {
		remote string
		want   domain.JobStatus
	}{
		{"queued", domain.JobStatusQueued},
		{"running", domain.JobStatusRunning},
		{"done", domain.JobStatusDone},
		{"rejected", domain.JobStatusFailed},
		{"expired", domain.JobStatusFailed},
		{"something-new", domain.JobStatusRunning},
	}

	for _, tc := range cases {
		remote := tc.remote
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/jobs/job-9" {
				t.Fatalf("path = %s", r.URL.Path)
			}
			fmt.Fprintf(w, `{"job":{"id":"job-9","status":%q}}`, remote)
		}))

		got, err := client.Status(context.Background(), "job-9")
		if err != nil {
			t.Fatalf("Status(%q) error = %v", remote, err)
		}
		if got != tc.want {
			t.Fatalf("Status(%q) = %s, want %s", remote, got, tc.want)
		}
	}
}

// TestTranscriptAssembly checks word joining, punctuation, and timings.
func TestTranscriptAssembly(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/job-9/transcript" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json-v2" {
			t.Fatalf("format = %q", r.URL.Query().Get("format"))
		}
		fmt.Fprint(w, `{
			"job": {"id": "job-9", "duration": 2.5},
			"results": [
				{"type":"word","start_time":0.1,"end_time":0.5,"alternatives":[{"content":"hello","confidence":0.98}]},
				{"type":"word","start_time":0.6,"end_time":1.0,"alternatives":[{"content":"world","confidence":0.95}]},
				{"type":"punctuation","start_time":1.0,"end_time":1.0,"alternatives":[{"content":".","confidence":1}]}
			]
		}`)
	}))

	result, err := client.Transcript(context.Background(), "job-9", false)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if result.Transcript != "hello world." {
		t.Fatalf("transcript = %q", result.Transcript)
	}
	if result.DurationSeconds != 2.5 {
		t.Fatalf("duration = %v", result.DurationSeconds)
	}
	if len(result.Words) != 2 {
		t.Fatalf("words = %+v", result.Words)
	}
	for i := 1; i < len(result.Words); i++ {
		if result.Words[i].Start < result.Words[i-1].Start || result.Words[i].End < result.Words[i-1].End {
			t.Fatalf("word times not non-decreasing: %+v", result.Words)
		}
	}
}

// TestTranscriptDiarization checks speaker-change line labelling.
func TestTranscriptDiarization(t *testing.T) {
	items := []resultItem{
		{Type: "word", StartTime: 0, EndTime: 0.4, Alternatives: []alternative{{Content: "hi", Speaker: "S1"}}},
		{Type: "word", StartTime: 0.5, EndTime: 0.9, Alternatives: []alternative{{Content: "there", Speaker: "S1"}}},
		{Type: "word", StartTime: 1.0, EndTime: 1.4, Alternatives: []alternative{{Content: "hello", Speaker: "S2"}}},
		{Type: "punctuation", Alternatives: []alternative{{Content: "."}}},
	}

	text, words := assembleTranscript(items, true)
	if text != "S1: hi there\nS2: hello." {
		t.Fatalf("text = %q", text)
	}
	if len(words) != 3 {
		t.Fatalf("words = %+v", words)
	}

	flat, _ := assembleTranscript(items, false)
	if flat != "hi there hello." {
		t.Fatalf("flat text = %q", flat)
	}
}

// TestUsageAggregatesCurrentMonth checks month filtering and rounding.
func TestUsageAggregatesCurrentMonth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"jobs":[
			{"id":"1","created_at":"2026-08-02T10:00:00Z","duration":1800},
			{"id":"2","created_at":"2026-08-20T10:00:00Z","duration":900},
			{"id":"3","created_at":"2026-07-30T10:00:00Z","duration":7200},
			{"id":"4","created_at":"not-a-date","duration":600}
		]}`)
	}))

	usage, err := client.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if usage.JobsThisMonth == nil || *usage.JobsThisMonth != 2 {
		t.Fatalf("jobs this month = %v, want 2", usage.JobsThisMonth)
	}
	if usage.HoursUsedThisMonth == nil || *usage.HoursUsedThisMonth != 0.75 {
		t.Fatalf("hours = %v, want 0.75", usage.HoursUsedThisMonth)
	}
	if usage.MonthlyLimitHours != nil || usage.HoursRemaining != nil {
		t.Fatal("limit fields should stay nil")
	}
}
