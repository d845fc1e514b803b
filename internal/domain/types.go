package domain

// Accuracy selects the Speechmatics operating point for a job.
type Accuracy string

const (
	AccuracyStandard Accuracy = "standard"
	AccuracyEnhanced Accuracy = "enhanced"
)

// Valid reports whether the accuracy value is one the API accepts.
func (a Accuracy) Valid() bool {
	return a == AccuracyStandard || a == AccuracyEnhanced
}

// DefaultFileTypes are the media extensions searched when none are given.
var DefaultFileTypes = []string{"mp3", "mp4", "wav", "m4a", "webm", "ogg", "flac", "mov", "avi"}

// Options is the per-job transcription configuration. All files in one
// batch invocation share the same options.
type Options struct {
	Accuracy       Accuracy `json:"accuracy"`
	Diarize        bool     `json:"diarize"`
	WithTimestamps bool     `json:"with_timestamps"`
	Force          bool     `json:"force"`
}

// Word is one timed word record from a transcription result.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// JobStatus tracks the lifecycle of a remote transcription job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// OutcomeStatus classifies the result of one per-file transcription attempt.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome is the per-file result of one orchestration attempt. It is
// returned to the caller and never persisted.
type Outcome struct {
	File            string        `json:"file"`
	Status          OutcomeStatus `json:"status"`
	TranscriptPath  string        `json:"transcript_path,omitempty"`
	DurationSeconds float64       `json:"duration_seconds,omitempty"`
	Reason          string        `json:"reason,omitempty"`
}

// Summary aggregates every Outcome for one directory invocation.
// Outcomes keep enumeration order regardless of completion order.
type Summary struct {
	BatchID              string    `json:"batch_id"`
	Succeeded            int       `json:"succeeded"`
	Skipped              int       `json:"skipped"`
	Failed               int       `json:"failed"`
	Outcomes             []Outcome `json:"outcomes"`
	TotalDurationSeconds float64   `json:"total_duration_seconds"`
}

// Usage reports account activity for the current billing month. Limit and
// remaining hours are not exposed by the jobs API and stay nil.
type Usage struct {
	HoursUsedThisMonth *float64 `json:"hours_used_this_month"`
	MonthlyLimitHours  *float64 `json:"monthly_limit_hours"`
	HoursRemaining     *float64 `json:"hours_remaining"`
	JobsThisMonth      *int     `json:"jobs_this_month"`
}
