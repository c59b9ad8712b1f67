package service

import (
	"github.com/pachca/review-bot/internal/service/chat"
	"github.com/pachca/review-bot/internal/service/issue_tracker"
)

type ServicesConfig struct {
	Tracker        issue_tracker.IssueTrackerService
	Chat           chat.ChatService
	BotLogin       string
	PullRequestURL string
}

// Services wires the relay's services around one GitHub client and one chat client.
type Services struct {
	tracker        issue_tracker.IssueTrackerService
	chat           chat.ChatService
	botLogin       string
	pullRequestURL string
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		tracker:        cfg.Tracker,
		chat:           cfg.Chat,
		botLogin:       cfg.BotLogin,
		pullRequestURL: cfg.PullRequestURL,
	}
}

func (s *Services) Threads() ThreadService {
	return NewThreadService(s.tracker, s.chat, ThreadServiceConfig{
		BotLogin:       s.botLogin,
		PullRequestURL: s.pullRequestURL,
	})
}

func (s *Services) Notifications() NotificationService {
	return NewNotificationService(NewJobDigester(s.tracker), s.pullRequestURL)
}

func (s *Services) Dispatcher() Dispatcher {
	return NewDispatcher(s.Threads(), s.Notifications(), s.chat)
}
