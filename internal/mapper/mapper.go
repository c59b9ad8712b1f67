package mapper

import (
	"context"
	"errors"

	"github.com/pachca/review-bot/internal/domain"
)

// ErrInvalidPayload is returned when the delivery body is not a JSON object.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// GitHub event names handled by the relay.
const (
	EventPullRequest       = "pull_request"
	EventPullRequestReview = "pull_request_review"
	EventWorkflowRun       = "workflow_run"
)

const (
	HeaderEvent    = "X-Github-Event"
	HeaderDelivery = "X-Github-Delivery"
)

// EventMapper converts a raw webhook delivery into a domain event.
type EventMapper interface {
	Map(ctx context.Context, body []byte, headers map[string]string) (domain.Event, error)
}
