// Package poller runs the fetch → validate → notify → sleep loop.
package poller

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/tooMike/homework-bot/internal/homework"
	"github.com/tooMike/homework-bot/internal/notifier"
	"github.com/tooMike/homework-bot/internal/schedule"
	"github.com/tooMike/homework-bot/internal/storage"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

const (
	RecordsFirst = "first"
	RecordsAll   = "all"
)

// Fetcher asks the homework API for updates since a cursor.
type Fetcher interface {
	HomeworkStatuses(ctx context.Context, fromDate int64) (any, error)
}

// Messenger delivers a text. It never fails loudly.
type Messenger interface {
	Notify(ctx context.Context, msg string) notifier.Outcome
}

type Config struct {
	Schedule schedule.Schedule
	// Records is RecordsFirst (default) or RecordsAll.
	Records string
	// Cursor is the starting watermark (unix seconds).
	Cursor int64
}

type Option func(*Poller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(p *Poller) { p.now = now } }

// WithSleep overrides the wait between iterations. It must return early when ctx is done.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(p *Poller) { p.sleep = sleep }
}

// WithAfterIteration registers a hook called after every iteration with its error (nil on success).
func WithAfterIteration(fn func(err error)) Option { return func(p *Poller) { p.after = fn } }

// Poller owns the cursor and drives one iteration at a time.
// It is not safe for concurrent Run calls.
type Poller struct {
	cfg    Config
	api    Fetcher
	notify Messenger
	store  storage.Store
	log    logx.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
	after func(err error)

	cursor int64
}

// New builds a poller. store may be nil.
func New(cfg Config, api Fetcher, notify Messenger, store storage.Store, log logx.Logger, opts ...Option) *Poller {
	if cfg.Schedule == nil {
		cfg.Schedule = schedule.Interval(600 * time.Second)
	}
	if cfg.Records == "" {
		cfg.Records = RecordsFirst
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Poller{
		cfg:    cfg,
		api:    api,
		notify: notify,
		store:  store,
		log:    log,
		now:    time.Now,
		sleep:  sleepCtx,
		cursor: cfg.Cursor,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Cursor returns the current watermark.
func (p *Poller) Cursor() int64 { return p.cursor }

// Run polls until ctx is cancelled. Iteration failures are reported and absorbed;
// the wait after an iteration happens whatever its outcome.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poll loop started",
		logx.Int64("cursor", p.cursor),
		logx.String("schedule", p.cfg.Schedule.String()),
		logx.String("records", p.cfg.Records),
	)
	for ctx.Err() == nil {
		p.cycle(ctx)
	}
	p.log.Info("poll loop stopped", logx.Int64("cursor", p.cursor))
	return nil
}

func (p *Poller) cycle(ctx context.Context) {
	defer func() {
		d := schedule.Delay(p.cfg.Schedule, p.now())
		p.log.Debug("sleeping until next poll", logx.Duration("delay", d))
		p.sleep(ctx, d)
	}()
	p.RunOnce(ctx)
}

// RunOnce performs one iteration and turns any failure into a chat message.
// The returned error is informational; callers need not act on it.
func (p *Poller) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("poll iteration panicked", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil && ctx.Err() == nil {
			p.reportFailure(ctx, err)
		}
		if p.after != nil {
			p.after(err)
		}
	}()
	return p.Iterate(ctx)
}

// FailureMessage is the chat text for a failed iteration.
func FailureMessage(err error) string {
	return fmt.Sprintf("Сбой в работе программы: %v", err)
}

func (p *Poller) reportFailure(ctx context.Context, err error) {
	msg := FailureMessage(err)
	p.log.Error(msg, logx.Int64("cursor", p.cursor))
	p.notify.Notify(ctx, msg)
}

// Iterate fetches, validates, notifies and advances the cursor. Nothing here
// is retried: an error leaves the cursor where it was, so the next iteration
// asks for the same window again.
func (p *Poller) Iterate(ctx context.Context) error {
	raw, err := p.api.HomeworkStatuses(ctx, p.cursor)
	if err != nil {
		return err
	}
	resp, err := homework.Validate(raw)
	if err != nil {
		return err
	}

	messages, err := p.messages(resp)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		p.log.Debug("homework list is empty")
	}
	for _, msg := range messages {
		p.notify.Notify(ctx, msg)
	}

	if next, ok := resp.CurrentDate(); ok {
		p.advance(ctx, next)
	}
	return nil
}

// messages parses the selected records. All of them are parsed before anything
// is sent, so a bad record never produces a partial batch. Entries outside the
// selection are not inspected.
func (p *Poller) messages(resp homework.Response) ([]string, error) {
	n := resp.Len()
	if n == 0 {
		return nil, nil
	}
	if p.cfg.Records != RecordsAll {
		n = 1
	}
	out := make([]string, 0, n)
	for i := range n {
		rec, err := resp.Record(i)
		if err != nil {
			return nil, err
		}
		msg, err := homework.ParseStatus(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (p *Poller) advance(ctx context.Context, next int64) {
	if next < p.cursor {
		p.log.Warn("api watermark is behind the cursor; keeping cursor", logx.Int64("cursor", p.cursor), logx.Int64("current_date", next))
		return
	}
	if next == p.cursor {
		return
	}
	p.cursor = next
	p.log.Debug("cursor advanced", logx.Int64("cursor", next))
	if p.store == nil {
		return
	}
	if err := p.store.SaveCursor(ctx, next); err != nil {
		p.log.Warn("cursor persist failed", logx.Err(err))
	}
}

// InitialCursor picks the starting watermark: a saved cursor wins, then an
// explicit override, then the current time.
func InitialCursor(ctx context.Context, store storage.Store, override int64, now time.Time, log logx.Logger) int64 {
	if store != nil {
		c, ok, err := store.LoadCursor(ctx)
		switch {
		case err != nil:
			log.Warn("saved cursor unreadable; starting fresh", logx.Err(err))
		case ok:
			log.Info("resuming from saved cursor", logx.Int64("cursor", c))
			return c
		}
	}
	if override > 0 {
		return override
	}
	return now.Unix()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
