package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pachca/review-bot/internal/domain"
	"github.com/pachca/review-bot/internal/service"
)

type fakeDigester struct {
	digest  string
	err     error
	runID   int64
	attempt int
	calls   int
}

func (f *fakeDigester) SummarizeFailedJobs(ctx context.Context, runID int64, attempt int) (string, error) {
	f.calls++
	f.runID, f.attempt = runID, attempt
	return f.digest, f.err
}

func prEvent(action domain.PullRequestAction) *domain.PullRequestEvent {
	return &domain.PullRequestEvent{
		EventName:   "pull_request",
		Action:      action,
		Sender:      "alice",
		PullRequest: domain.PullRequestPayload{Number: 7, Title: "Add thread relay", BaseRef: "main"},
	}
}

func reviewEvent(action domain.PullRequestAction, reviewer, state string) *domain.PullRequestEvent {
	e := prEvent(action)
	e.EventName = "pull_request_review"
	e.Review = &domain.ReviewPayload{Reviewer: reviewer, State: state}
	return e
}

var _ = Describe("NotificationService", func() {
	var (
		ctx      context.Context
		digester *fakeDigester
		svc      service.NotificationService
	)

	BeforeEach(func() {
		ctx = context.Background()
		digester = &fakeDigester{}
		svc = service.NewNotificationService(digester, pullRequestURL)
	})

	render := func(event domain.Event) string {
		text, err := svc.RenderNotification(ctx, event)
		Expect(err).NotTo(HaveOccurred())
		return text
	}

	Describe("pull request events", func() {
		It("announces lifecycle changes", func() {
			Expect(render(prEvent(domain.ActionOpened))).To(Equal("🆕 @alice opened the PR"))
			Expect(render(prEvent(domain.ActionClosed))).To(Equal("🙅 @alice closed the PR"))
			Expect(render(prEvent(domain.ActionReopened))).To(Equal("✌️ @alice reopened the PR"))

			merged := prEvent(domain.ActionClosed)
			merged.PullRequest.Merged = true
			Expect(render(merged)).To(Equal("🎉 @alice merged the PR"))
		})

		It("describes edits by priority", func() {
			e := prEvent(domain.ActionEdited)
			e.Changes = &domain.Changes{Body: true, Title: true, TitleFrom: "Old"}
			Expect(render(e)).To(Equal("🏗️ @alice edited the PR description"))

			e.Changes = &domain.Changes{Title: true, TitleFrom: "Old"}
			Expect(render(e)).To(Equal("🏗️ @alice edited the title\n  ~~Old~~ -> Add thread relay"))

			e.Changes = &domain.Changes{Base: true}
			Expect(render(e)).To(Equal("🏗️ @alice changed the base branch to `main`"))

			e.Changes = &domain.Changes{}
			Expect(render(e)).To(BeEmpty())
		})

		It("distinguishes self-assigned reviews", func() {
			e := prEvent(domain.ActionReviewRequested)
			e.RequestedReviewer = "alice"
			Expect(render(e)).To(Equal("📣 @alice assigned themselves as a reviewer"))

			e.RequestedReviewer = "bob"
			Expect(render(e)).To(Equal("📣 @alice requested a review from @bob"))

			e.RequestedReviewer = ""
			e.RequestedTeam = "backend"
			Expect(render(e)).To(Equal("📣 @alice requested a review from team backend"))
		})

		It("reports removed reviewers", func() {
			e := prEvent(domain.ActionReviewRequestRemoved)
			e.RequestedReviewer = "alice"
			Expect(render(e)).To(Equal("🦵 @alice removed themselves from the review"))

			e.RequestedReviewer = "bob"
			Expect(render(e)).To(Equal("🦵 @alice removed @bob from the review"))
		})

		It("ignores actions that only refresh the status", func() {
			Expect(render(prEvent(domain.ActionSynchronize))).To(BeEmpty())
		})
	})

	Describe("review events", func() {
		It("renders verdicts", func() {
			Expect(render(reviewEvent(domain.ActionSubmitted, "alice", domain.WebhookReviewApproved))).
				To(Equal("👏 @alice approved"))
			Expect(render(reviewEvent(domain.ActionSubmitted, "alice", domain.WebhookReviewChangesRequested))).
				To(Equal("✏️ @alice requested changes"))
		})

		It("stays silent for plain comments", func() {
			Expect(render(reviewEvent(domain.ActionSubmitted, "alice", domain.WebhookReviewCommented))).To(BeEmpty())
		})

		It("names the author of a review submitted as dismissed", func() {
			Expect(render(reviewEvent(domain.ActionSubmitted, "bob", domain.WebhookReviewDismissed))).
				To(Equal("❌ @alice dismissed the review by @bob"))
		})

		It("stays silent for the dismissed action", func() {
			Expect(render(reviewEvent(domain.ActionDismissed, "bob", domain.WebhookReviewDismissed))).To(BeEmpty())
			Expect(render(reviewEvent(domain.ActionDismissed, "bob", domain.WebhookReviewApproved))).To(BeEmpty())
		})

		It("flags unknown states", func() {
			Expect(render(reviewEvent(domain.ActionSubmitted, "alice", "weird"))).
				To(Equal("⚠️ unrecognized review state: weird"))
		})
	})

	Describe("workflow runs", func() {
		var run *domain.WorkflowRunEvent

		BeforeEach(func() {
			run = &domain.WorkflowRunEvent{
				Action: "completed",
				Sender: "alice",
				WorkflowRun: domain.WorkflowRunPayload{
					ID:           55,
					Name:         "CI",
					HTMLURL:      "https://github.com/pachca/web/actions/runs/55",
					Conclusion:   "failure",
					RunAttempt:   2,
					PullRequests: []int{7},
				},
			}
			digester.digest = "\n  ↳ [test](https://ci/1)"
		})

		It("headlines failures with the job digest", func() {
			Expect(render(run)).To(Equal(
				"❤️‍🩹 [CI failed](https://github.com/pachca/web/actions/runs/55) - " +
					"[#7](https://app.graphite.dev/github/pr/pachca/web/7) @alice\n  ↳ [test](https://ci/1)",
			))
			Expect(digester.runID).To(Equal(int64(55)))
			Expect(digester.attempt).To(Equal(2))
		})

		It("says nothing about successful runs", func() {
			run.WorkflowRun.Conclusion = "success"
			Expect(render(run)).To(BeEmpty())
			Expect(digester.calls).To(BeZero())
		})

		It("propagates digest errors", func() {
			boom := errors.New("boom")
			digester.err = boom

			_, err := svc.RenderNotification(ctx, run)
			Expect(err).To(MatchError(boom))
		})
	})

	It("rejects unrecognized events", func() {
		_, err := svc.RenderNotification(ctx, &domain.UnrecognizedEvent{EventName: "ping"})
		Expect(err).To(MatchError(domain.ErrUnrecognizedEvent))

		_, err = svc.RenderNotification(ctx, nil)
		Expect(err).To(MatchError(domain.ErrUnrecognizedEvent))
	})
})
