// Package speechmatics wraps the Speechmatics batch transcription API:
// job submission, status polling, transcript retrieval, and usage stats.
package speechmatics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"speechmatics-mcp/internal/domain"
)

// JobConfig carries the per-job transcription parameters sent to the API.
type JobConfig struct {
	Language string
	Accuracy domain.Accuracy
	Diarize  bool
}

// Result is a completed transcription fetched from the API.
type Result struct {
	Transcript      string
	Words           []domain.Word
	DurationSeconds float64
}

// Client calls the Speechmatics batch API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient constructs a client for the given endpoint and credential.
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
		now:        time.Now,
	}
}

// jobConfigPayload is the config JSON attached to a job submission.
type jobConfigPayload struct {
	Type                string              `json:"type"`
	TranscriptionConfig transcriptionConfig `json:"transcription_config"`
}

// transcriptionConfig mirrors the API's transcription_config object.
type transcriptionConfig struct {
	Language       string `json:"language"`
	OperatingPoint string `json:"operating_point"`
	Diarization    string `json:"diarization,omitempty"`
}

// Submit uploads a media file and returns the remote job id.
func (c *Client) Submit(ctx context.Context, path string, cfg JobConfig) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	payload := jobConfigPayload{
		Type: "transcription",
		TranscriptionConfig: transcriptionConfig{
			Language:       cfg.Language,
			OperatingPoint: string(cfg.Accuracy),
		},
	}
	if cfg.Diarize {
		payload.TranscriptionConfig.Diarization = "speaker"
	}
	configJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode job config: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("data_file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy media into form: %w", err)
	}
	if err := writer.WriteField("config", string(configJSON)); err != nil {
		return "", fmt.Errorf("write config field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", body)
	if err != nil {
		return "", fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug().Str("file", path).Str("accuracy", string(cfg.Accuracy)).Bool("diarize", cfg.Diarize).Msg("submitting transcription job")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.responseError(resp)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("submit response has no job id")
	}

	c.log.Debug().Str("job_id", created.ID).Msg("job accepted")
	return created.ID, nil
}

// jobEnvelope mirrors the job detail response.
type jobEnvelope struct {
	Job jobRecord `json:"job"`
}

// jobRecord is one job as reported by the API.
type jobRecord struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	Duration  float64 `json:"duration"`
}

// Status returns the current lifecycle state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return "", fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("poll job %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.responseError(resp)
	}

	var envelope jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}

	return mapStatus(envelope.Job.Status), nil
}

// transcriptEnvelope mirrors the json-v2 transcript response.
type transcriptEnvelope struct {
	Job     jobRecord    `json:"job"`
	Results []resultItem `json:"results"`
}

// resultItem is one timed item (word or punctuation) in a transcript.
type resultItem struct {
	Type         string        `json:"type"`
	StartTime    float64       `json:"start_time"`
	EndTime      float64       `json:"end_time"`
	Alternatives []alternative `json:"alternatives"`
}

// alternative is one recognition candidate for a result item.
type alternative struct {
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

// Transcript fetches the finished transcript for a job.
func (c *Client) Transcript(ctx context.Context, jobID string, diarize bool) (*Result, error) {
	url := c.baseURL + "/jobs/" + jobID + "/transcript?format=json-v2"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create transcript request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript %s: %w", jobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp)
	}

	var envelope transcriptEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	text, words := assembleTranscript(envelope.Results, diarize)
	return &Result{
		Transcript:      text,
		Words:           words,
		DurationSeconds: envelope.Job.Duration,
	}, nil
}

// Usage aggregates job counts and hours for the current calendar month.
func (c *Client) Usage(ctx context.Context) (domain.Usage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs", nil)
	if err != nil {
		return domain.Usage{}, fmt.Errorf("create usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Usage{}, fmt.Errorf("list jobs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Usage{}, c.responseError(resp)
	}

	var listing struct {
		Jobs []jobRecord `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return domain.Usage{}, fmt.Errorf("decode job listing: %w", err)
	}

	now := c.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	jobsThisMonth := 0
	var totalSeconds float64
	for _, job := range listing.Jobs {
		created, err := time.Parse(time.RFC3339, job.CreatedAt)
		if err != nil {
			continue
		}
		if created.Before(monthStart) {
			continue
		}
		jobsThisMonth++
		totalSeconds += job.Duration
	}

	hours := math.Round(totalSeconds/3600*100) / 100
	return domain.Usage{
		HoursUsedThisMonth: &hours,
		JobsThisMonth:      &jobsThisMonth,
	}, nil
}

// responseError drains an error response into an APIError.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	detail := ""
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			detail = parsed.Detail
		} else {
			detail = parsed.Error
		}
	}

	c.log.Warn().Int("status", resp.StatusCode).Str("detail", detail).Msg("speechmatics API error")
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}

// mapStatus converts API status strings into the internal job model.
// Unknown statuses count as still running; the poll deadline decides.
func mapStatus(status string) domain.JobStatus {
	switch status {
	case "queued", "accepted":
		return domain.JobStatusQueued
	case "running":
		return domain.JobStatusRunning
	case "done":
		return domain.JobStatusDone
	case "rejected", "expired", "deleted":
		return domain.JobStatusFailed
	default:
		return domain.JobStatusRunning
	}
}

// assembleTranscript flattens json-v2 result items into text and words.
// Punctuation attaches to the previous token; with diarization enabled a
// speaker change starts a new labelled line.
func assembleTranscript(items []resultItem, diarize bool) (string, []domain.Word) {
	var b bytes.Buffer
	var words []domain.Word
	speaker := ""

	for _, item := range items {
		if len(item.Alternatives) == 0 {
			continue
		}
		alt := item.Alternatives[0]

		switch item.Type {
		case "punctuation":
			b.WriteString(alt.Content)
		case "word":
			if diarize && alt.Speaker != "" && alt.Speaker != speaker {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(alt.Speaker)
				b.WriteString(": ")
				speaker = alt.Speaker
			} else if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(alt.Content)
			words = append(words, domain.Word{
				Word:       alt.Content,
				Start:      item.StartTime,
				End:        item.EndTime,
				Confidence: alt.Confidence,
			})
		}
	}

	return b.String(), words
}

// NewClientForTests constructs a client with injectable transport and clock.
func NewClientForTests(baseURL, apiKey string, httpClient *http.Client, now func() time.Time) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        zerolog.Nop(),
		now:        now,
	}
}
