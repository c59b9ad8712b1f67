package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pachca/review-bot/internal/model"
	"github.com/pachca/review-bot/internal/service"
	"github.com/pachca/review-bot/internal/service/issue_tracker"
)

func timedStep(name, conclusion string, start time.Time, seconds float64) model.Step {
	end := start.Add(time.Duration(seconds * float64(time.Second)))
	return model.Step{Name: name, Conclusion: conclusion, StartedAt: &start, CompletedAt: &end}
}

var _ = Describe("RenderFailedJobs", func() {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	It("excerpts the first failed step with its neighbours", func() {
		jobs := []model.Job{{
			Name:       "test",
			HTMLURL:    "https://github.com/pachca/web/actions/runs/1/job/2",
			Conclusion: model.ConclusionFailure,
			Steps: []model.Step{
				timedStep("Checkout", model.ConclusionSuccess, start, 2),
				timedStep("Run tests", model.ConclusionFailure, start, 31.5),
				timedStep("Upload", model.ConclusionSuccess, start, 1),
				{Name: "Lint", Conclusion: model.ConclusionSkipped},
			},
		}}

		Expect(service.RenderFailedJobs(jobs)).To(Equal(
			"\n  ↳ [test](https://github.com/pachca/web/actions/runs/1/job/2)" +
				"\n\n```bash\n👌 Checkout 2s\n❌ Run tests 31.5s\n👌 Upload 1s\n```",
		))
	})

	It("ignores later failures in the same job", func() {
		jobs := []model.Job{{
			Name:       "build",
			HTMLURL:    "https://ci/2",
			Conclusion: model.ConclusionFailure,
			Steps: []model.Step{
				{Name: "Compile", Conclusion: model.ConclusionCancelled},
				{Name: "Setup", Conclusion: model.ConclusionSuccess},
				{Name: "Package", Conclusion: model.ConclusionFailure},
			},
		}}

		out := service.RenderFailedJobs(jobs)
		Expect(out).To(ContainSubstring("🚫 Compile\n👌 Setup\n```"))
		Expect(out).NotTo(ContainSubstring("Package"))
	})

	It("lists failed jobs without failed steps as links only", func() {
		jobs := []model.Job{
			{Name: "ok", HTMLURL: "https://ci/1", Conclusion: model.ConclusionSuccess},
			{Name: "setup", HTMLURL: "https://ci/3", Conclusion: model.ConclusionFailure},
		}

		Expect(service.RenderFailedJobs(jobs)).To(Equal("\n  ↳ [setup](https://ci/3)"))
	})

	It("renders nothing when no job failed", func() {
		Expect(service.RenderFailedJobs([]model.Job{{Name: "ok", Conclusion: model.ConclusionSuccess}})).To(BeEmpty())
	})
})

var _ = Describe("JobDigester", func() {
	var tracker *fakeTracker

	BeforeEach(func() {
		tracker = &fakeTracker{
			jobs: []model.Job{{Name: "test", HTMLURL: "https://ci/1", Conclusion: model.ConclusionFailure}},
		}
	})

	It("lists the jobs of the given attempt", func() {
		digest, err := service.NewJobDigester(tracker).SummarizeFailedJobs(context.Background(), 99, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(digest).To(Equal("\n  ↳ [test](https://ci/1)"))
		Expect(tracker.jobsParams).To(Equal([]issue_tracker.ListWorkflowJobsParams{{RunID: 99, AttemptNumber: 3}}))
	})

	It("wraps tracker errors", func() {
		boom := errors.New("boom")
		tracker.listJobsErr = boom

		_, err := service.NewJobDigester(tracker).SummarizeFailedJobs(context.Background(), 99, 1)
		Expect(err).To(MatchError(boom))
	})
})
