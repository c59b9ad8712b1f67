package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pachca/review-bot/common/logger"
	"github.com/pachca/review-bot/internal/model"
	"github.com/pachca/review-bot/internal/service/chat"
	"github.com/pachca/review-bot/internal/service/issue_tracker"
)

// ThreadService keeps one status message per pull request in the chat and
// returns the thread under it.
type ThreadService interface {
	EnsureThread(ctx context.Context, number int) (*model.Thread, error)
}

type ThreadServiceConfig struct {
	BotLogin       string // author of the sentinel comment
	PullRequestURL string
}

type threadService struct {
	tracker issue_tracker.IssueTrackerService
	chat    chat.ChatService
	cfg     ThreadServiceConfig
}

func NewThreadService(tracker issue_tracker.IssueTrackerService, chat chat.ChatService, cfg ThreadServiceConfig) ThreadService {
	return &threadService{
		tracker: tracker,
		chat:    chat,
		cfg:     cfg,
	}
}

// EnsureThread renders the current status, creates or overwrites the status
// message and makes sure it has a thread. The bot-authored sentinel comment is the
// only record of an existing message, so repeated calls converge on the same
// message and thread. Two concurrent first deliveries for one pull request can
// both miss the comment and create a duplicate pair; that race is accepted.
func (s *threadService) EnsureThread(ctx context.Context, number int) (*model.Thread, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "relay.service.thread"})

	pr, err := s.tracker.GetPullRequest(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request: %w", err)
	}

	var (
		sentinel  *model.Comment
		reviews   []model.Review
		requested []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comments, err := s.tracker.ListComments(gctx, number)
		if err != nil {
			return fmt.Errorf("listing comments: %w", err)
		}
		sentinel = findSentinel(comments, s.cfg.BotLogin)
		return nil
	})
	if pr.IsOpen() {
		g.Go(func() error {
			var err error
			if reviews, err = s.tracker.ListReviews(gctx, number); err != nil {
				return fmt.Errorf("listing reviews: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if requested, err = s.tracker.ListRequestedReviewers(gctx, number); err != nil {
				return fmt.Errorf("listing requested reviewers: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := RenderStatus(*pr, reviews, requested)
	content := RenderStatusMessage(*pr, status, s.cfg.PullRequestURL)

	msg, err := s.upsertStatusMessage(ctx, number, sentinel, content)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ChatMessageID: logger.Ptr(msg.ID)})

	slog.InfoContext(ctx, "status message updated", "status", status, "created", sentinel == nil)

	if msg.HasThread() {
		return &model.Thread{ID: msg.ThreadID}, nil
	}

	thread, err := s.chat.CreateThread(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	slog.InfoContext(ctx, "thread created", "thread_id", thread.ID, "chat_id", thread.ChatID)

	return thread, nil
}

func (s *threadService) upsertStatusMessage(ctx context.Context, number int, sentinel *model.Comment, content string) (*model.ChatMessage, error) {
	if sentinel != nil {
		messageID, err := ParseSentinel(sentinel.Body)
		if err != nil {
			return nil, fmt.Errorf("comment %d: %w", sentinel.ID, err)
		}

		msg, err := s.chat.UpdateMessage(ctx, messageID, content)
		if err != nil {
			return nil, fmt.Errorf("updating status message: %w", err)
		}
		return msg, nil
	}

	msg, err := s.chat.CreateMessage(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("creating status message: %w", err)
	}

	_, err = s.tracker.CreateComment(ctx, issue_tracker.CreateCommentParams{
		Number: number,
		Body:   SentinelComment(s.chat.MessageLink(), msg.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("creating sentinel comment: %w", err)
	}

	return msg, nil
}

// findSentinel returns the first comment authored by the bot. Duplicates can only
// come from the accepted creation race; the oldest one wins.
func findSentinel(comments []model.Comment, botLogin string) *model.Comment {
	for i := range comments {
		if comments[i].Author == botLogin {
			return &comments[i]
		}
	}
	return nil
}
