package domain

import "errors"

// ErrUnrecognizedEvent is returned when a delivery matches neither a pull request
// nor a workflow run payload.
var ErrUnrecognizedEvent = errors.New("unrecognized event")

// Event is a parsed GitHub webhook delivery. The set of implementations is closed:
// *PullRequestEvent, *WorkflowRunEvent and *UnrecognizedEvent.
type Event interface {
	// Name is the GitHub event name the payload was parsed as.
	Name() string
	isEvent()
}

type PullRequestAction string

const (
	ActionOpened               PullRequestAction = "opened"
	ActionClosed               PullRequestAction = "closed"
	ActionEdited               PullRequestAction = "edited"
	ActionReopened             PullRequestAction = "reopened"
	ActionReviewRequested      PullRequestAction = "review_requested"
	ActionReviewRequestRemoved PullRequestAction = "review_request_removed"
	ActionDismissed            PullRequestAction = "dismissed"
	ActionSubmitted            PullRequestAction = "submitted"
	ActionSynchronize          PullRequestAction = "synchronize"
	ActionLabeled              PullRequestAction = "labeled"
)

// Review states as sent in pull_request_review webhooks (lower case, unlike the REST API).
const (
	WebhookReviewApproved         = "approved"
	WebhookReviewChangesRequested = "changes_requested"
	WebhookReviewCommented        = "commented"
	WebhookReviewDismissed        = "dismissed"
)

// PullRequestEvent covers both pull_request and pull_request_review deliveries.
type PullRequestEvent struct {
	EventName         string
	Action            PullRequestAction
	Sender            string
	PullRequest       PullRequestPayload
	Review            *ReviewPayload // pull_request_review only
	RequestedReviewer string         // review_requested / review_request_removed for a user
	RequestedTeam     string         // review_requested / review_request_removed for a team
	Changes           *Changes       // edited only
}

// PullRequestPayload is the subset of the webhook's pull_request object used for
// notifications. Status rendering always re-fetches the pull request instead.
type PullRequestPayload struct {
	Number  int
	Title   string
	Merged  bool
	BaseRef string
}

type ReviewPayload struct {
	Reviewer string
	State    string
}

// Changes lists which fields an "edited" action touched.
type Changes struct {
	Body      bool
	Title     bool
	TitleFrom string
	Base      bool
}

func (e *PullRequestEvent) Name() string { return e.EventName }
func (*PullRequestEvent) isEvent()       {}

type WorkflowRunEvent struct {
	Action      string
	Sender      string
	WorkflowRun WorkflowRunPayload
}

type WorkflowRunPayload struct {
	ID           int64
	Name         string
	HTMLURL      string
	Conclusion   string
	RunAttempt   int
	PullRequests []int // numbers of the open pull requests the run belongs to
}

func (*WorkflowRunEvent) Name() string { return "workflow_run" }
func (*WorkflowRunEvent) isEvent()     {}

// UnrecognizedEvent is any other delivery (ping, push, issues...).
type UnrecognizedEvent struct {
	EventName string
}

func (e *UnrecognizedEvent) Name() string { return e.EventName }
func (*UnrecognizedEvent) isEvent()       {}
