package model

import "time"

const (
	ConclusionSuccess   = "success"
	ConclusionFailure   = "failure"
	ConclusionCancelled = "cancelled"
	ConclusionSkipped   = "skipped"
)

// Job is one job of a workflow run attempt.
type Job struct {
	Name       string
	HTMLURL    string
	Conclusion string
	Steps      []Step
}

type Step struct {
	Name        string
	Conclusion  string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Elapsed returns the step duration, or zero when either timestamp is unknown.
func (s Step) Elapsed() time.Duration {
	if s.StartedAt == nil || s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(*s.StartedAt)
}
