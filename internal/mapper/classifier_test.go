package mapper_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pachca/review-bot/internal/domain"
	"github.com/pachca/review-bot/internal/mapper"
)

var _ = Describe("Classifier", func() {
	DescribeTable("ShouldCreateThread for pull request actions",
		func(action domain.PullRequestAction, expected bool) {
			event := &domain.PullRequestEvent{Action: action, PullRequest: domain.PullRequestPayload{Number: 7}}
			Expect(mapper.ShouldCreateThread(event)).To(Equal(expected))
		},
		Entry("opened", domain.ActionOpened, true),
		Entry("closed", domain.ActionClosed, true),
		Entry("edited", domain.ActionEdited, true),
		Entry("reopened", domain.ActionReopened, true),
		Entry("review_requested", domain.ActionReviewRequested, true),
		Entry("review_request_removed", domain.ActionReviewRequestRemoved, true),
		Entry("dismissed", domain.ActionDismissed, true),
		Entry("submitted", domain.ActionSubmitted, true),
		Entry("synchronize", domain.ActionSynchronize, false),
		Entry("labeled", domain.ActionLabeled, false),
	)

	It("always refreshes on workflow runs", func() {
		Expect(mapper.ShouldCreateThread(&domain.WorkflowRunEvent{})).To(BeTrue())
	})

	It("ignores unrecognized events", func() {
		Expect(mapper.ShouldCreateThread(&domain.UnrecognizedEvent{EventName: "push"})).To(BeFalse())
		Expect(mapper.ShouldCreateThread(nil)).To(BeFalse())
	})

	Describe("PullRequestNumber", func() {
		It("uses the first pull request of a workflow run", func() {
			number, ok := mapper.PullRequestNumber(&domain.WorkflowRunEvent{
				WorkflowRun: domain.WorkflowRunPayload{PullRequests: []int{12, 13}},
			})
			Expect(ok).To(BeTrue())
			Expect(number).To(Equal(12))
		})

		It("reports runs outside pull requests", func() {
			_, ok := mapper.PullRequestNumber(&domain.WorkflowRunEvent{})
			Expect(ok).To(BeFalse())
		})

		It("reads the pull request of pull request events", func() {
			number, ok := mapper.PullRequestNumber(&domain.PullRequestEvent{PullRequest: domain.PullRequestPayload{Number: 7}})
			Expect(ok).To(BeTrue())
			Expect(number).To(Equal(7))
		})
	})
})
