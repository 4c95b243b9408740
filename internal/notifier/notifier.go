package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tooMike/homework-bot/internal/storage"
	kit "github.com/tooMike/homework-bot/internal/transport"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

var ErrNotifyFailed = errors.New("notify failed")

// Outcome is what happened to one Notify call.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return storage.DeliverySent
	case OutcomeDuplicate:
		return storage.DeliveryDuplicate
	default:
		return storage.DeliveryFailed
	}
}

type Config struct {
	Target kit.ChatTarget
	// RatePerSec bounds sends per second. 0 means 1.
	RatePerSec int
	// SendTimeout bounds one send call. 0 means 30s.
	SendTimeout time.Duration
}

type Notifier struct {
	mu sync.Mutex

	cfg     Config
	sender  kit.Sender
	store   storage.Store
	log     logx.Logger
	limiter *rate.Limiter

	lastSent string
}

// New builds a notifier. store may be nil (no delivery journal).
func New(cfg Config, sender kit.Sender, store storage.Store, log logx.Logger) *Notifier {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		cfg:     cfg,
		sender:  sender,
		store:   store,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// LastSent returns the most recently delivered message ("" if none).
func (n *Notifier) LastSent() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastSent
}

// Notify delivers msg unless it equals the last delivered message.
// The last message only advances after a successful send, so a failed
// delivery is attempted again the next time the same text comes up.
func (n *Notifier) Notify(ctx context.Context, msg string) Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()

	if msg == n.lastSent {
		n.log.Debug("message not sent: same as the previous one")
		n.journal(ctx, msg, OutcomeDuplicate, nil)
		return OutcomeDuplicate
	}

	err := n.send(ctx, msg)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrNotifyFailed, err)
		n.log.Error("telegram send failed", logx.String("text", msg), logx.Err(err))
		n.journal(ctx, msg, OutcomeFailed, err)
		return OutcomeFailed
	}

	n.lastSent = msg
	n.log.Debug("telegram message delivered", logx.String("text", msg))
	n.journal(ctx, msg, OutcomeSent, nil)
	return OutcomeSent
}

func (n *Notifier) send(ctx context.Context, msg string) (err error) {
	if n.sender == nil {
		return errors.New("no sender configured")
	}
	// A misbehaving transport must not take the loop down.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()

	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
	defer cancel()
	n.log.Debug("sending telegram message")
	_, err = n.sender.SendText(callCtx, n.cfg.Target, msg, &kit.SendOptions{DisablePreview: true})
	return err
}

func (n *Notifier) journal(ctx context.Context, msg string, o Outcome, sendErr error) {
	if n.store == nil {
		return
	}
	d := storage.Delivery{
		ID:       uuid.NewString(),
		At:       time.Now(),
		ChatID:   n.cfg.Target.ChatID,
		ThreadID: n.cfg.Target.ThreadID,
		Text:     msg,
		Status:   o.String(),
	}
	if sendErr != nil {
		d.Error = sendErr.Error()
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := n.store.AppendDelivery(cctx, d); err != nil {
		n.log.Warn("delivery journal write failed", logx.Err(err))
	}
}
