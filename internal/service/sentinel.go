package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedSentinel means the bot's comment exists but carries no chat message id.
var ErrMalformedSentinel = errors.New("chat message id not found in sentinel comment")

const sentinelParam = "message="

// SentinelComment is the body of the pull request comment that links the pull
// request to its status message. messageLink is the chat's browser link.
func SentinelComment(messageLink, messageID string) string {
	sep := "?"
	if strings.Contains(messageLink, "?") {
		sep = "&"
	}
	id := url.QueryEscape(messageID)
	return fmt.Sprintf("[Discussion in chat](%s%smessage=%s&thread_message_id=%s)", messageLink, sep, id, id)
}

// ParseSentinel extracts the value of the "message" query parameter from a
// sentinel comment body. Parameters that merely end in "message" (such as
// thread_message_id) are not matched.
func ParseSentinel(body string) (string, error) {
	for offset := 0; offset < len(body); {
		idx := strings.Index(body[offset:], sentinelParam)
		if idx < 0 {
			break
		}
		start := offset + idx
		valueStart := start + len(sentinelParam)
		offset = valueStart

		if start == 0 || (body[start-1] != '?' && body[start-1] != '&') {
			continue
		}

		value := body[valueStart:]
		if end := strings.IndexAny(value, "&#) \t\r\n"); end >= 0 {
			value = value[:end]
		}
		if value == "" {
			continue
		}

		id, err := url.QueryUnescape(value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedSentinel, err)
		}
		return id, nil
	}
	return "", ErrMalformedSentinel
}
