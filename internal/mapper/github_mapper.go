package mapper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/go-github/v71/github"

	"github.com/pachca/review-bot/internal/domain"
)

type GitHubEventMapper struct{}

func NewGitHubEventMapper() *GitHubEventMapper {
	return &GitHubEventMapper{}
}

// Map parses the delivery using the X-GitHub-Event header. Without the header
// (e.g. the body was forwarded by a cloud function trigger) the event name is
// inferred from the payload's top-level keys.
func (m *GitHubEventMapper) Map(ctx context.Context, body []byte, headers map[string]string) (domain.Event, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	eventName := headers[HeaderEvent]
	if eventName == "" {
		eventName = detectEventName(top)
	}

	switch eventName {
	case EventPullRequest, EventPullRequestReview, EventWorkflowRun:
	default:
		return &domain.UnrecognizedEvent{EventName: eventName}, nil
	}

	parsed, err := github.ParseWebHook(eventName, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch e := parsed.(type) {
	case *github.PullRequestEvent:
		return mapPullRequestEvent(e), nil
	case *github.PullRequestReviewEvent:
		return mapPullRequestReviewEvent(e), nil
	case *github.WorkflowRunEvent:
		return mapWorkflowRunEvent(e), nil
	}

	return &domain.UnrecognizedEvent{EventName: eventName}, nil
}

func detectEventName(top map[string]json.RawMessage) string {
	has := func(key string) bool {
		raw, ok := top[key]
		return ok && string(raw) != "null"
	}

	switch {
	case has("workflow_run"):
		return EventWorkflowRun
	case has("comment"):
		return "pull_request_review_comment"
	case has("review"):
		return EventPullRequestReview
	case has("pull_request"):
		return EventPullRequest
	}
	return ""
}

func mapPullRequestEvent(e *github.PullRequestEvent) *domain.PullRequestEvent {
	event := &domain.PullRequestEvent{
		EventName:         EventPullRequest,
		Action:            domain.PullRequestAction(e.GetAction()),
		Sender:            e.GetSender().GetLogin(),
		PullRequest:       mapPullRequestPayload(e.GetPullRequest()),
		RequestedReviewer: e.GetRequestedReviewer().GetLogin(),
		RequestedTeam:     e.GetRequestedTeam().GetSlug(),
	}
	if event.PullRequest.Number == 0 {
		event.PullRequest.Number = e.GetNumber()
	}

	if c := e.GetChanges(); c != nil {
		event.Changes = &domain.Changes{
			Body:      c.Body != nil,
			Title:     c.Title != nil,
			TitleFrom: c.GetTitle().GetFrom(),
			Base:      c.Base != nil,
		}
	}

	return event
}

func mapPullRequestReviewEvent(e *github.PullRequestReviewEvent) *domain.PullRequestEvent {
	event := &domain.PullRequestEvent{
		EventName:   EventPullRequestReview,
		Action:      domain.PullRequestAction(e.GetAction()),
		Sender:      e.GetSender().GetLogin(),
		PullRequest: mapPullRequestPayload(e.GetPullRequest()),
	}
	if r := e.GetReview(); r != nil {
		event.Review = &domain.ReviewPayload{
			Reviewer: r.GetUser().GetLogin(),
			State:    r.GetState(),
		}
	}
	return event
}

func mapPullRequestPayload(pr *github.PullRequest) domain.PullRequestPayload {
	return domain.PullRequestPayload{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Merged:  pr.GetMerged(),
		BaseRef: pr.GetBase().GetRef(),
	}
}

func mapWorkflowRunEvent(e *github.WorkflowRunEvent) *domain.WorkflowRunEvent {
	run := e.GetWorkflowRun()

	var numbers []int
	for _, pr := range run.PullRequests {
		if pr == nil {
			continue
		}
		numbers = append(numbers, pr.GetNumber())
	}

	return &domain.WorkflowRunEvent{
		Action: e.GetAction(),
		Sender: e.GetSender().GetLogin(),
		WorkflowRun: domain.WorkflowRunPayload{
			ID:           run.GetID(),
			Name:         run.GetName(),
			HTMLURL:      run.GetHTMLURL(),
			Conclusion:   run.GetConclusion(),
			RunAttempt:   run.GetRunAttempt(),
			PullRequests: numbers,
		},
	}
}
