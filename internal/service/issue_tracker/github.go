package issue_tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v71/github"

	"github.com/pachca/review-bot/internal/model"
)

const perPage = 100

type GitHubConfig struct {
	AccessToken string
	Owner       string
	Repo        string
	BaseURL     string // Optional: GitHub Enterprise API URL
	HTTPClient  *http.Client
}

type gitHubIssueTrackerService struct {
	client *github.Client
	owner  string
	repo   string
}

func NewGitHubIssueTrackerService(cfg GitHubConfig) (IssueTrackerService, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating github client: %w", err)
	}

	return &gitHubIssueTrackerService{
		client: client,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
	}, nil
}

func newClient(cfg GitHubConfig) (*github.Client, error) {
	client := github.NewClient(cfg.HTTPClient).WithAuthToken(cfg.AccessToken)
	if cfg.BaseURL == "" {
		return client, nil
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/") + "/"
	return client.WithEnterpriseURLs(baseURL, baseURL)
}

func (s *gitHubIssueTrackerService) GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error) {
	pr, _, err := s.client.PullRequests.Get(ctx, s.owner, s.repo, number)
	if err != nil {
		return nil, wrapError("get pull request", err)
	}
	return mapPullRequest(pr), nil
}

func (s *gitHubIssueTrackerService) ListComments(ctx context.Context, number int) ([]model.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var comments []model.Comment
	for {
		page, resp, err := s.client.Issues.ListComments(ctx, s.owner, s.repo, number, opts)
		if err != nil {
			return nil, wrapError("list comments", err)
		}
		for _, c := range page {
			if c == nil {
				continue
			}
			comments = append(comments, mapComment(c))
		}
		if resp.NextPage == 0 {
			return comments, nil
		}
		opts.Page = resp.NextPage
	}
}

func (s *gitHubIssueTrackerService) CreateComment(ctx context.Context, params CreateCommentParams) (*model.Comment, error) {
	comment, _, err := s.client.Issues.CreateComment(ctx, s.owner, s.repo, params.Number, &github.IssueComment{
		Body: github.Ptr(params.Body),
	})
	if err != nil {
		return nil, wrapError("create comment", err)
	}
	c := mapComment(comment)
	return &c, nil
}

func (s *gitHubIssueTrackerService) ListReviews(ctx context.Context, number int) ([]model.Review, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var reviews []model.Review
	for {
		page, resp, err := s.client.PullRequests.ListReviews(ctx, s.owner, s.repo, number, opts)
		if err != nil {
			return nil, wrapError("list reviews", err)
		}
		for _, r := range page {
			if r == nil {
				continue
			}
			reviews = append(reviews, model.Review{
				Reviewer: r.GetUser().GetLogin(),
				State:    model.ReviewState(r.GetState()),
			})
		}
		if resp.NextPage == 0 {
			return reviews, nil
		}
		opts.Page = resp.NextPage
	}
}

func (s *gitHubIssueTrackerService) ListRequestedReviewers(ctx context.Context, number int) ([]string, error) {
	reviewers, _, err := s.client.PullRequests.ListReviewers(ctx, s.owner, s.repo, number, &github.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, wrapError("list requested reviewers", err)
	}

	var logins []string
	for _, u := range reviewers.Users {
		if u == nil || u.GetLogin() == "" {
			continue
		}
		logins = append(logins, u.GetLogin())
	}
	return logins, nil
}

func (s *gitHubIssueTrackerService) ListWorkflowJobs(ctx context.Context, params ListWorkflowJobsParams) ([]model.Job, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var jobs []model.Job
	for {
		page, resp, err := s.client.Actions.ListWorkflowJobsAttempt(ctx, s.owner, s.repo, params.RunID, params.AttemptNumber, opts)
		if err != nil {
			return nil, wrapError("list workflow jobs", err)
		}
		for _, j := range page.Jobs {
			if j == nil {
				continue
			}
			jobs = append(jobs, mapJob(j))
		}
		if resp.NextPage == 0 {
			return jobs, nil
		}
		opts.Page = resp.NextPage
	}
}

func mapPullRequest(pr *github.PullRequest) *model.PullRequest {
	result := &model.PullRequest{
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		Author:   pr.GetUser().GetLogin(),
		State:    model.PullRequestState(pr.GetState()),
		Draft:    pr.GetDraft(),
		Merged:   pr.GetMerged(),
		MergedBy: pr.GetMergedBy().GetLogin(),
	}
	if pr.ClosedAt != nil {
		closedAt := pr.ClosedAt.Time
		result.ClosedAt = &closedAt
	}
	return result
}

func mapComment(c *github.IssueComment) model.Comment {
	return model.Comment{
		ID:     c.GetID(),
		Author: c.GetUser().GetLogin(),
		Body:   c.GetBody(),
	}
}

func mapJob(j *github.WorkflowJob) model.Job {
	job := model.Job{
		Name:       j.GetName(),
		HTMLURL:    j.GetHTMLURL(),
		Conclusion: j.GetConclusion(),
	}
	for _, s := range j.Steps {
		if s == nil {
			continue
		}
		step := model.Step{
			Name:       s.GetName(),
			Conclusion: s.GetConclusion(),
		}
		if s.StartedAt != nil {
			t := s.StartedAt.Time
			step.StartedAt = &t
		}
		if s.CompletedAt != nil {
			t := s.CompletedAt.Time
			step.CompletedAt = &t
		}
		job.Steps = append(job.Steps, step)
	}
	return job
}

// wrapError converts go-github failures that carry an HTTP response into
// model.HTTPError so the webhook response can mirror the upstream status.
func wrapError(op string, err error) error {
	var resp *http.Response
	var message string

	var errResp *github.ErrorResponse
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr):
		resp, message = rateErr.Response, rateErr.Message
	case errors.As(err, &abuseErr):
		resp, message = abuseErr.Response, abuseErr.Message
	case errors.As(err, &errResp):
		resp, message = errResp.Response, errResp.Message
	}

	if resp == nil {
		return fmt.Errorf("github: %s: %w", op, err)
	}
	return &model.HTTPError{
		Op:         "github: " + op,
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Message:    message,
	}
}
