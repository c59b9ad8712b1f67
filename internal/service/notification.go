package service

import (
	"context"
	"fmt"

	"github.com/pachca/review-bot/internal/domain"
	"github.com/pachca/review-bot/internal/model"
)

// NotificationService describes what just happened, as opposed to the status
// message which shows the current state.
type NotificationService interface {
	// RenderNotification returns the thread message for the event, or "" when the
	// event has nothing worth telling.
	RenderNotification(ctx context.Context, event domain.Event) (string, error)
}

type notificationService struct {
	jobs           JobDigester
	pullRequestURL string
}

func NewNotificationService(jobs JobDigester, pullRequestURL string) NotificationService {
	return &notificationService{
		jobs:           jobs,
		pullRequestURL: pullRequestURL,
	}
}

func (s *notificationService) RenderNotification(ctx context.Context, event domain.Event) (string, error) {
	switch e := event.(type) {
	case *domain.PullRequestEvent:
		return renderPullRequestNotification(e), nil
	case *domain.WorkflowRunEvent:
		return s.renderWorkflowRunNotification(ctx, e)
	case nil:
		return "", domain.ErrUnrecognizedEvent
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnrecognizedEvent, event.Name())
	}
}

func renderPullRequestNotification(e *domain.PullRequestEvent) string {
	sender := mention(e.Sender)

	switch e.Action {
	case domain.ActionOpened:
		return fmt.Sprintf("🆕 %s opened the PR", sender)

	case domain.ActionClosed:
		if e.PullRequest.Merged {
			return fmt.Sprintf("🎉 %s merged the PR", sender)
		}
		return fmt.Sprintf("🙅 %s closed the PR", sender)

	case domain.ActionReopened:
		return fmt.Sprintf("✌️ %s reopened the PR", sender)

	case domain.ActionEdited:
		return renderEdited(e)

	case domain.ActionReviewRequested:
		switch {
		case e.RequestedReviewer != "" && e.RequestedReviewer == e.Sender:
			return fmt.Sprintf("📣 %s assigned themselves as a reviewer", sender)
		case e.RequestedReviewer != "":
			return fmt.Sprintf("📣 %s requested a review from %s", sender, mention(e.RequestedReviewer))
		case e.RequestedTeam != "":
			return fmt.Sprintf("📣 %s requested a review from team %s", sender, e.RequestedTeam)
		}
		return ""

	case domain.ActionReviewRequestRemoved:
		switch {
		case e.RequestedReviewer != "" && e.RequestedReviewer == e.Sender:
			return fmt.Sprintf("🦵 %s removed themselves from the review", sender)
		case e.RequestedReviewer != "":
			return fmt.Sprintf("🦵 %s removed %s from the review", sender, mention(e.RequestedReviewer))
		case e.RequestedTeam != "":
			return fmt.Sprintf("🦵 %s removed team %s from the review", sender, e.RequestedTeam)
		}
		return ""

	case domain.ActionSubmitted:
		return renderReview(e)
	}

	return ""
}

// renderEdited reports body edits first, then title, then base branch, and
// ignores edits to anything else.
func renderEdited(e *domain.PullRequestEvent) string {
	if e.Changes == nil {
		return ""
	}
	sender := mention(e.Sender)

	switch {
	case e.Changes.Body:
		return fmt.Sprintf("🏗️ %s edited the PR description", sender)
	case e.Changes.Title:
		return fmt.Sprintf("🏗️ %s edited the title\n  ~~%s~~ -> %s", sender, e.Changes.TitleFrom, e.PullRequest.Title)
	case e.Changes.Base:
		if e.PullRequest.BaseRef != "" {
			return fmt.Sprintf("🏗️ %s changed the base branch to `%s`", sender, e.PullRequest.BaseRef)
		}
		return fmt.Sprintf("🏗️ %s changed the base branch", sender)
	}
	return ""
}

func renderReview(e *domain.PullRequestEvent) string {
	if e.Review == nil {
		return ""
	}
	sender := mention(e.Sender)

	state := e.Review.State
	switch state {
	case domain.WebhookReviewDismissed:
		return fmt.Sprintf("❌ %s dismissed the review by %s", sender, mention(e.Review.Reviewer))
	case domain.WebhookReviewCommented:
		return ""
	case domain.WebhookReviewApproved:
		return fmt.Sprintf("👏 %s approved", sender)
	case domain.WebhookReviewChangesRequested:
		return fmt.Sprintf("✏️ %s requested changes", sender)
	}
	return fmt.Sprintf("⚠️ unrecognized review state: %s", state)
}

func (s *notificationService) renderWorkflowRunNotification(ctx context.Context, e *domain.WorkflowRunEvent) (string, error) {
	run := e.WorkflowRun
	if run.Conclusion != model.ConclusionFailure {
		return "", nil
	}

	digest, err := s.jobs.SummarizeFailedJobs(ctx, run.ID, run.RunAttempt)
	if err != nil {
		return "", fmt.Errorf("summarizing failed jobs: %w", err)
	}

	var number int
	if len(run.PullRequests) > 0 {
		number = run.PullRequests[0]
	}

	return fmt.Sprintf("❤️‍🩹 [%s failed](%s) - [#%d](%s) %s%s",
		run.Name, run.HTMLURL,
		number, pullRequestLink(s.pullRequestURL, number),
		mention(e.Sender), digest,
	), nil
}
