package service

import (
	"fmt"
	"strings"

	"github.com/pachca/review-bot/internal/model"
)

// AggregateReviews folds reviews into one verdict per reviewer. Reviews must be in
// the order GitHub returns them (oldest first): a later APPROVED or
// CHANGES_REQUESTED from the same login overwrites the earlier one. Other states
// (COMMENTED, DISMISSED, PENDING) never replace a verdict. Logins keep the order
// of their first verdict.
func AggregateReviews(reviews []model.Review) model.ReviewSet {
	var order []string
	verdicts := make(map[string]model.ReviewState)

	for _, r := range reviews {
		if r.Reviewer == "" {
			continue
		}
		if r.State != model.ReviewStateChangesRequested && r.State != model.ReviewStateApproved {
			continue
		}
		if _, seen := verdicts[r.Reviewer]; !seen {
			order = append(order, r.Reviewer)
		}
		verdicts[r.Reviewer] = r.State
	}

	var set model.ReviewSet
	for _, login := range order {
		switch verdicts[login] {
		case model.ReviewStateChangesRequested:
			set.ChangesRequested = append(set.ChangesRequested, login)
		case model.ReviewStateApproved:
			set.Approved = append(set.Approved, login)
		}
	}
	return set
}

// RenderStatus computes the status line of a pull request. The first matching
// rule wins; reviews and requestedReviewers are only consulted for open pull requests.
func RenderStatus(pr model.PullRequest, reviews []model.Review, requestedReviewers []string) string {
	if pr.Merged {
		return "🎉 merged by " + mention(pr.MergedBy)
	}
	if pr.ClosedAt != nil {
		return "❌ closed"
	}
	if pr.State == model.PullRequestStateClosed {
		return "🤔 closed?"
	}
	if pr.Draft {
		return "🏗️ in progress"
	}
	if len(requestedReviewers) > 0 {
		return "👀 awaiting review from " + mentions(requestedReviewers)
	}

	if !hasVerdict(reviews) {
		return "🧑‍🍼 awaiting first review"
	}

	// a verdict without an author survives the check above but not the fold,
	// which leaves the unknown state
	set := AggregateReviews(reviews)
	if len(set.ChangesRequested) > 0 {
		return fmt.Sprintf("✏️ %s %s requested changes", mentions(set.ChangesRequested), hasOrHave(len(set.ChangesRequested)))
	}
	if len(set.Approved) > 0 {
		return fmt.Sprintf("👌 %s %s approved", mentions(set.Approved), hasOrHave(len(set.Approved)))
	}

	return "🔴 unknown state"
}

func hasVerdict(reviews []model.Review) bool {
	for _, r := range reviews {
		if r.State == model.ReviewStateChangesRequested || r.State == model.ReviewStateApproved {
			return true
		}
	}
	return false
}

// RenderStatusMessage builds the body of the status message kept in the chat.
func RenderStatusMessage(pr model.PullRequest, status string, pullRequestURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [(#%d)](%s)\n", pr.Title, pr.Number, pullRequestLink(pullRequestURL, pr.Number))
	fmt.Fprintf(&b, "  ↳ **Author:** %s\n", mention(pr.Author))
	fmt.Fprintf(&b, "  ↳ **Status:** %s", status)
	return b.String()
}

func pullRequestLink(base string, number int) string {
	return fmt.Sprintf("%s/%d", strings.TrimSuffix(base, "/"), number)
}

func mention(login string) string {
	return "@" + login
}

func mentions(logins []string) string {
	parts := make([]string, len(logins))
	for i, login := range logins {
		parts[i] = mention(login)
	}
	return strings.Join(parts, " ")
}

func hasOrHave(n int) string {
	if n == 1 {
		return "has"
	}
	return "have"
}
