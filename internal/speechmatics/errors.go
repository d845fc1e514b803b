package speechmatics

import "fmt"

// APIError is a non-2xx response from the Speechmatics API, rendered as a
// user-facing message.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error maps status codes to actionable messages.
func (e *APIError) Error() string {
	switch e.StatusCode {
	case 429:
		return "Rate limited by Speechmatics API. Please wait and try again."
	case 403:
		return "API quota exceeded or invalid API key. Check your Speechmatics account."
	case 401:
		return "Invalid Speechmatics API key."
	case 400:
		if e.Detail != "" {
			return fmt.Sprintf("Invalid request: %s", e.Detail)
		}
		return "Invalid request"
	default:
		if e.Detail != "" {
			return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("API error (%d)", e.StatusCode)
	}
}
