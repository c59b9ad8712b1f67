package logger

import (
	"context"
	"unicode/utf8"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The webhook handler sets the delivery fields once; deeper layers only add what they learn
// (pull request number, component) and every log line below picks them up.
type LogFields struct {
	DeliveryID        *string // X-GitHub-Delivery header
	InvocationID      *int64  // snowflake id assigned per webhook request
	EventType         *string // GitHub event name (e.g., "pull_request", "workflow_run")
	Action            *string // event action (e.g., "opened", "completed")
	PullRequestNumber *int
	ChatMessageID     *string
	Component         string // Component name (e.g., "relay.service.dispatcher")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.DeliveryID != nil {
		result.DeliveryID = new.DeliveryID
	}
	if new.InvocationID != nil {
		result.InvocationID = new.InvocationID
	}
	if new.EventType != nil {
		result.EventType = new.EventType
	}
	if new.Action != nil {
		result.Action = new.Action
	}
	if new.PullRequestNumber != nil {
		result.PullRequestNumber = new.PullRequestNumber
	}
	if new.ChatMessageID != nil {
		result.ChatMessageID = new.ChatMessageID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{PullRequestNumber: logger.Ptr(n)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate cuts s to at most maxLen bytes, appending "..." if truncated.
// The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
