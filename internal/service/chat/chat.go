package chat

import (
	"context"

	"github.com/pachca/review-bot/internal/model"
)

// ChatService posts into the single configured chat destination.
type ChatService interface {
	// CreateMessage posts a new top-level message into the destination chat.
	CreateMessage(ctx context.Context, content string) (*model.ChatMessage, error)
	// UpdateMessage replaces the message content and drops any attachments.
	UpdateMessage(ctx context.Context, messageID string, content string) (*model.ChatMessage, error)
	CreateThread(ctx context.Context, messageID string) (*model.Thread, error)
	SendThreadMessage(ctx context.Context, threadID string, content string) (*model.ChatMessage, error)
	// MessageLink is the browser link to the destination chat; the sentinel
	// comment appends the message id to it as a query parameter.
	MessageLink() string
}
