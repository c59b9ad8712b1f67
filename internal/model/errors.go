package model

import "fmt"

// HTTPError is an upstream API failure (GitHub or chat) that keeps the
// upstream HTTP status so the webhook response can mirror it.
type HTTPError struct {
	Op         string // e.g. "github: get pull request"
	StatusCode int
	Status     string // status text, e.g. "Not Found"
	Message    string // upstream error message when the API returned one
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Status)
}
