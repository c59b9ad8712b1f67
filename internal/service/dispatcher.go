package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pachca/review-bot/common/logger"
	"github.com/pachca/review-bot/internal/domain"
	"github.com/pachca/review-bot/internal/mapper"
	"github.com/pachca/review-bot/internal/model"
	"github.com/pachca/review-bot/internal/service/chat"
)

// Response bodies of the handled outcomes.
const (
	BodyNothingToDo      = "nothing to do"
	BodyNoThreadMessage  = "no message for thread"
	BodyThreadMessageSet = "updated status + sent thread message"
	BodyInternalError    = "internal server error"
)

// Outcome is the webhook response for one delivery.
type Outcome struct {
	StatusCode int
	Body       string
}

// Dispatcher runs one delivery through classification, status message and thread
// upkeep, and the thread notification. It is the only place errors become responses.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) Outcome
}

type dispatcher struct {
	threads       ThreadService
	notifications NotificationService
	chat          chat.ChatService
}

func NewDispatcher(threads ThreadService, notifications NotificationService, chat chat.ChatService) Dispatcher {
	return &dispatcher{
		threads:       threads,
		notifications: notifications,
		chat:          chat,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, event domain.Event) (outcome Outcome) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "relay.service.dispatcher"})

	sc := logger.StartSpan(ctx, "relay.dispatch")
	defer sc.End()
	ctx = sc.Context()

	defer func() {
		if r := recover(); r != nil {
			sc.RecordError(fmt.Errorf("panic: %v", r))
			slog.ErrorContext(ctx, "dispatch panicked", "panic", r)
			outcome = Outcome{StatusCode: http.StatusInternalServerError, Body: BodyInternalError}
		}
	}()

	if !mapper.ShouldCreateThread(event) {
		return Outcome{StatusCode: http.StatusOK, Body: BodyNothingToDo}
	}

	number, ok := mapper.PullRequestNumber(event)
	if !ok {
		slog.DebugContext(ctx, "event is not associated with a pull request")
		return Outcome{StatusCode: http.StatusOK, Body: BodyNothingToDo}
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{PullRequestNumber: logger.Ptr(number)})

	thread, err := d.threads.EnsureThread(ctx, number)
	if err != nil {
		sc.RecordError(err)
		return errorOutcome(ctx, err)
	}

	text, err := d.notifications.RenderNotification(ctx, event)
	if err != nil {
		sc.RecordError(err)
		return errorOutcome(ctx, err)
	}
	if text == "" {
		return Outcome{StatusCode: http.StatusOK, Body: BodyNoThreadMessage}
	}

	if _, err := d.chat.SendThreadMessage(ctx, thread.ID, text); err != nil {
		sc.RecordError(err)
		return errorOutcome(ctx, fmt.Errorf("sending thread message: %w", err))
	}

	slog.InfoContext(ctx, "thread message sent", "thread_id", thread.ID, "text", logger.Truncate(text, 200))
	return Outcome{StatusCode: http.StatusOK, Body: BodyThreadMessageSet}
}

// errorOutcome mirrors upstream HTTP failures and answers 400 with the message
// for everything else.
func errorOutcome(ctx context.Context, err error) Outcome {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		slog.ErrorContext(ctx, "upstream request failed", "error", err, "status", httpErr.StatusCode)
		return Outcome{StatusCode: httpErr.StatusCode, Body: httpErr.Status}
	}

	slog.ErrorContext(ctx, "failed to dispatch event", "error", err)
	return Outcome{StatusCode: http.StatusBadRequest, Body: err.Error()}
}
