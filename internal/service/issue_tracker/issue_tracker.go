package issue_tracker

import (
	"context"

	"github.com/pachca/review-bot/internal/model"
)

type CreateCommentParams struct {
	Number int
	Body   string
}

type ListWorkflowJobsParams struct {
	RunID         int64
	AttemptNumber int64
}

// IssueTrackerService is the subset of the GitHub API the relay reads and writes.
// Owner and repository are fixed at construction.
type IssueTrackerService interface {
	GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error)
	ListComments(ctx context.Context, number int) ([]model.Comment, error)
	CreateComment(ctx context.Context, params CreateCommentParams) (*model.Comment, error)
	// ListReviews returns reviews in the order GitHub submitted them (oldest first).
	ListReviews(ctx context.Context, number int) ([]model.Review, error)
	ListRequestedReviewers(ctx context.Context, number int) ([]string, error)
	ListWorkflowJobs(ctx context.Context, params ListWorkflowJobsParams) ([]model.Job, error)
}
