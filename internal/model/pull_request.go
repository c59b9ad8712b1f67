package model

import "time"

type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateClosed PullRequestState = "closed"
)

// PullRequest is a snapshot read from GitHub on every invocation. It is never cached.
type PullRequest struct {
	Number   int
	Title    string
	Author   string
	State    PullRequestState
	Draft    bool
	Merged   bool
	MergedBy string
	ClosedAt *time.Time
}

func (p PullRequest) IsOpen() bool {
	return !p.Merged && p.ClosedAt == nil && p.State != PullRequestStateClosed
}

// ReviewState is the verdict of a review as returned by the REST API (upper case).
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "APPROVED"
	ReviewStateChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewStateCommented        ReviewState = "COMMENTED"
	ReviewStateDismissed        ReviewState = "DISMISSED"
	ReviewStatePending          ReviewState = "PENDING"
)

type Review struct {
	Reviewer string
	State    ReviewState
}

// ReviewSet groups reviewers by their latest verdict.
type ReviewSet struct {
	ChangesRequested []string
	Approved         []string
}

func (s ReviewSet) Empty() bool {
	return len(s.ChangesRequested) == 0 && len(s.Approved) == 0
}

// Comment is an issue comment on a pull request.
type Comment struct {
	ID     int64
	Author string
	Body   string
}
