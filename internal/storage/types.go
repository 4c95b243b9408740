package storage

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

// Config configures storage.
//
// Driver values:
//   - "file": JSON state snapshot + JSON Lines delivery journal
//   - "sqlite": SQLite database file (modernc.org/sqlite, no cgo)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

const (
	DeliverySent      = "sent"
	DeliveryDuplicate = "duplicate"
	DeliveryFailed    = "failed"
)

// Delivery records one notification attempt.
type Delivery struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	ChatID   string    `json:"chat_id"`
	ThreadID int       `json:"thread_id,omitempty"`
	Text     string    `json:"text"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// Store is the persistence API used by the poller and the notifier.
type Store interface {
	// LoadCursor returns the saved cursor; ok is false if none was saved yet.
	LoadCursor(ctx context.Context) (cursor int64, ok bool, err error)
	SaveCursor(ctx context.Context, cursor int64) error
	AppendDelivery(ctx context.Context, d Delivery) error
	Close() error
}
