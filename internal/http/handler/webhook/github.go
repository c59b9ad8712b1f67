package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pachca/review-bot/common/id"
	"github.com/pachca/review-bot/common/logger"
	"github.com/pachca/review-bot/internal/domain"
	"github.com/pachca/review-bot/internal/mapper"
	"github.com/pachca/review-bot/internal/service"
)

type GitHubWebhookHandler struct {
	mapper     mapper.EventMapper
	dispatcher service.Dispatcher
}

func NewGitHubWebhookHandler(mapper mapper.EventMapper, dispatcher service.Dispatcher) *GitHubWebhookHandler {
	return &GitHubWebhookHandler{
		mapper:     mapper,
		dispatcher: dispatcher,
	}
}

func (h *GitHubWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		InvocationID: logger.Ptr(id.New()),
		Component:    "relay.http.webhook",
	})
	if delivery := c.GetHeader(mapper.HeaderDelivery); delivery != "" {
		ctx = logger.WithLogFields(ctx, logger.LogFields{DeliveryID: logger.Ptr(delivery)})
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	event, err := h.mapper.Map(ctx, body, headers)
	if err != nil {
		slog.WarnContext(ctx, "invalid github webhook payload", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, mapper.ErrInvalidPayload) {
			status = http.StatusBadRequest
		}
		c.String(status, err.Error())
		return
	}

	fields := logger.LogFields{EventType: logger.Ptr(event.Name())}
	if action := eventAction(event); action != "" {
		fields.Action = logger.Ptr(action)
	}
	ctx = logger.WithLogFields(ctx, fields)

	slog.InfoContext(ctx, "received github webhook")

	outcome := h.dispatcher.Dispatch(ctx, event)

	slog.InfoContext(ctx, "github webhook processed",
		"status", outcome.StatusCode,
		"outcome", logger.Truncate(outcome.Body, 200),
	)

	c.String(outcome.StatusCode, outcome.Body)
}

func eventAction(event domain.Event) string {
	switch e := event.(type) {
	case *domain.PullRequestEvent:
		return string(e.Action)
	case *domain.WorkflowRunEvent:
		return e.Action
	}
	return ""
}
