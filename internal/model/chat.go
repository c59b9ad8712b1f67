package model

// ChatMessage is a message in the chat system. ThreadID is empty until a
// thread has been attached to the message.
type ChatMessage struct {
	ID       string
	ThreadID string
}

func (m ChatMessage) HasThread() bool {
	return m.ThreadID != ""
}

// Thread is a sub-conversation anchored to one top-level message.
type Thread struct {
	ID     string
	ChatID string
}
