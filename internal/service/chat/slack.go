package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/slack-go/slack"

	"github.com/pachca/review-bot/internal/model"
)

type SlackConfig struct {
	BotToken     string
	ChannelID    string
	WorkspaceURL string
	APIURL       string // Optional: overrides https://slack.com/api/
	HTTPClient   *http.Client
}

// slackService maps the relay's message/thread model onto Slack, where every
// message can be a thread parent and the thread id is the parent's timestamp.
type slackService struct {
	client       *slack.Client
	channelID    string
	workspaceURL string
}

func NewSlackService(cfg SlackConfig) (ChatService, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("slack channel id is required")
	}

	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(strings.TrimSuffix(cfg.APIURL, "/")+"/"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, slack.OptionHTTPClient(cfg.HTTPClient))
	}

	return &slackService{
		client:       slack.New(cfg.BotToken, opts...),
		channelID:    cfg.ChannelID,
		workspaceURL: strings.TrimSuffix(cfg.WorkspaceURL, "/"),
	}, nil
}

func (s *slackService) CreateMessage(ctx context.Context, content string) (*model.ChatMessage, error) {
	_, ts, err := s.client.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(toSlackMarkdown(content), false),
	)
	if err != nil {
		return nil, wrapSlackError("create message", err)
	}
	return &model.ChatMessage{ID: ts, ThreadID: ts}, nil
}

func (s *slackService) UpdateMessage(ctx context.Context, messageID string, content string) (*model.ChatMessage, error) {
	_, ts, _, err := s.client.UpdateMessageContext(ctx, s.channelID, messageID,
		slack.MsgOptionText(toSlackMarkdown(content), false),
	)
	if err != nil {
		return nil, wrapSlackError("update message", err)
	}
	return &model.ChatMessage{ID: ts, ThreadID: ts}, nil
}

// CreateThread needs no API call: replying with thread_ts starts the thread.
func (s *slackService) CreateThread(ctx context.Context, messageID string) (*model.Thread, error) {
	return &model.Thread{ID: messageID, ChatID: s.channelID}, nil
}

func (s *slackService) SendThreadMessage(ctx context.Context, threadID string, content string) (*model.ChatMessage, error) {
	_, ts, err := s.client.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(toSlackMarkdown(content), false),
		slack.MsgOptionTS(threadID),
	)
	if err != nil {
		return nil, wrapSlackError("send thread message", err)
	}
	return &model.ChatMessage{ID: ts, ThreadID: threadID}, nil
}

func (s *slackService) MessageLink() string {
	return s.workspaceURL + "/archives/" + s.channelID
}

var (
	markdownLink   = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	markdownBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	markdownStrike = regexp.MustCompile(`~~([^~]+)~~`)
)

// toSlackMarkdown rewrites the Markdown subset the relay emits into Slack mrkdwn.
func toSlackMarkdown(s string) string {
	s = markdownLink.ReplaceAllString(s, "<$2|$1>")
	s = markdownBold.ReplaceAllString(s, "*$1*")
	return markdownStrike.ReplaceAllString(s, "~$1~")
}

func wrapSlackError(op string, err error) error {
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return &model.HTTPError{
			Op:         "slack: " + op,
			StatusCode: statusErr.Code,
			Status:     http.StatusText(statusErr.Code),
		}
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return &model.HTTPError{
			Op:         "slack: " + op,
			StatusCode: http.StatusTooManyRequests,
			Status:     http.StatusText(http.StatusTooManyRequests),
			Message:    rateErr.Error(),
		}
	}

	return fmt.Errorf("slack: %s: %w", op, err)
}
