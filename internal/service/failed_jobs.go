package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pachca/review-bot/internal/model"
	"github.com/pachca/review-bot/internal/service/issue_tracker"
)

// JobDigester condenses the failed jobs of a workflow run attempt.
type JobDigester interface {
	SummarizeFailedJobs(ctx context.Context, runID int64, attempt int) (string, error)
}

type jobDigester struct {
	tracker issue_tracker.IssueTrackerService
}

func NewJobDigester(tracker issue_tracker.IssueTrackerService) JobDigester {
	return &jobDigester{tracker: tracker}
}

func (d *jobDigester) SummarizeFailedJobs(ctx context.Context, runID int64, attempt int) (string, error) {
	jobs, err := d.tracker.ListWorkflowJobs(ctx, issue_tracker.ListWorkflowJobsParams{
		RunID:         runID,
		AttemptNumber: int64(attempt),
	})
	if err != nil {
		return "", fmt.Errorf("listing jobs of run %d attempt %d: %w", runID, attempt, err)
	}
	return RenderFailedJobs(jobs), nil
}

// RenderFailedJobs returns one link line per failed job, each followed by a
// fenced excerpt around the job's first failed or cancelled step when there is one.
// The result starts with a newline so it can be appended to a headline.
func RenderFailedJobs(jobs []model.Job) string {
	var b strings.Builder
	for _, job := range jobs {
		if job.Conclusion != model.ConclusionFailure {
			continue
		}

		fmt.Fprintf(&b, "\n  ↳ [%s](%s)", job.Name, job.HTMLURL)

		excerpt := failedStepExcerpt(job.Steps)
		if len(excerpt) == 0 {
			continue
		}

		lines := make([]string, len(excerpt))
		for i, step := range excerpt {
			lines[i] = formatStep(step)
		}
		fmt.Fprintf(&b, "\n\n```bash\n%s\n```", strings.Join(lines, "\n"))
	}
	return b.String()
}

// failedStepExcerpt returns the first failed or cancelled step together with its
// neighbours. Later failures in the same job are not reported.
func failedStepExcerpt(steps []model.Step) []model.Step {
	for i, step := range steps {
		if step.Conclusion != model.ConclusionFailure && step.Conclusion != model.ConclusionCancelled {
			continue
		}
		from := max(i-1, 0)
		to := min(i+2, len(steps))
		return steps[from:to]
	}
	return nil
}

func formatStep(step model.Step) string {
	line := stepGlyph(step.Conclusion) + " " + step.Name
	if elapsed := step.Elapsed(); elapsed != 0 {
		line += " " + strconv.FormatFloat(elapsed.Seconds(), 'f', -1, 64) + "s"
	}
	return line
}

func stepGlyph(conclusion string) string {
	switch conclusion {
	case model.ConclusionSuccess:
		return "👌"
	case model.ConclusionSkipped:
		return "🔘"
	case model.ConclusionFailure:
		return "❌"
	case model.ConclusionCancelled:
		return "🚫"
	}
	return conclusion
}
