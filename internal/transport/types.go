// Package transport defines the chat delivery contract used by the notifier.
package transport

import "context"

// ChatTarget is a destination chat. ChatID is a numeric id or a channel @username.
type ChatTarget struct {
	ChatID   string
	ThreadID int // telegram forum topic thread id (0 if none)
}

// MessageRef identifies a delivered message. ChatID is the numeric id Telegram resolved.
type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers a text message to a chat.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
