package mapper

import "github.com/pachca/review-bot/internal/domain"

var threadActions = map[domain.PullRequestAction]bool{
	domain.ActionOpened:               true,
	domain.ActionClosed:               true,
	domain.ActionEdited:               true,
	domain.ActionReopened:             true,
	domain.ActionReviewRequested:      true,
	domain.ActionReviewRequestRemoved: true,
	domain.ActionDismissed:            true,
	domain.ActionSubmitted:            true,
}

// ShouldCreateThread reports whether the event should refresh the status message
// and its thread. Every workflow run qualifies; pull request events only for the
// actions that change what the status or the thread shows.
func ShouldCreateThread(event domain.Event) bool {
	switch e := event.(type) {
	case *domain.WorkflowRunEvent:
		return true
	case *domain.PullRequestEvent:
		return threadActions[e.Action]
	default:
		return false
	}
}

// PullRequestNumber returns the pull request the event belongs to. A workflow run
// that is not associated with any open pull request has none.
func PullRequestNumber(event domain.Event) (int, bool) {
	switch e := event.(type) {
	case *domain.WorkflowRunEvent:
		if len(e.WorkflowRun.PullRequests) == 0 || e.WorkflowRun.PullRequests[0] == 0 {
			return 0, false
		}
		return e.WorkflowRun.PullRequests[0], true
	case *domain.PullRequestEvent:
		if e.PullRequest.Number == 0 {
			return 0, false
		}
		return e.PullRequest.Number, true
	default:
		return 0, false
	}
}
