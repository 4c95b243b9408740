// Package app wires configuration, storage, the Practicum client, the Telegram
// sender and the poll loop into one runnable unit.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tooMike/homework-bot/internal/config"
	"github.com/tooMike/homework-bot/internal/notifier"
	"github.com/tooMike/homework-bot/internal/poller"
	"github.com/tooMike/homework-bot/internal/practicum"
	"github.com/tooMike/homework-bot/internal/runtime/supervisor"
	"github.com/tooMike/homework-bot/internal/storage"
	kit "github.com/tooMike/homework-bot/internal/transport"
	telegram "github.com/tooMike/homework-bot/internal/transport/telegram/adapter"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	cfg  *config.Config

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	sender  kit.Sender
	fetcher poller.Fetcher
	notif   *notifier.Notifier
	poll    *poller.Poller
	pollOps []poller.Option

	sd  *systemdNotifier
	sup *supervisor.Supervisor
}

type Option func(*App)

// WithSender replaces the Telegram adapter.
func WithSender(s kit.Sender) Option { return func(a *App) { a.sender = s } }

// WithFetcher replaces the Practicum client.
func WithFetcher(f poller.Fetcher) Option { return func(a *App) { a.fetcher = f } }

// WithPollerOptions forwards options to the poll loop.
func WithPollerOptions(opts ...poller.Option) Option {
	return func(a *App) { a.pollOps = append(a.pollOps, opts...) }
}

func withSystemd(sd *systemdNotifier) Option { return func(a *App) { a.sd = sd } }

// New builds the app from the manager's committed config (loading it if needed).
// Tokens are expected to have passed config.CheckTokens already.
func New(cfgm *config.Manager, opts ...Option) (*App, error) {
	cfg := cfgm.Get()
	if cfg == nil {
		var err error
		if cfg, err = cfgm.Load(); err != nil {
			return nil, err
		}
	}

	logSvc, log := logx.NewService(cfg.LogConfig())
	a := &App{cfgm: cfgm, cfg: cfg, logs: logSvc, log: log.With(logx.String("comp", "app"))}
	for _, o := range opts {
		o(a)
	}
	if a.sd == nil {
		a.sd = defaultSystemd(log.With(logx.String("comp", "systemd")))
	}

	if err := a.build(log); err != nil {
		if a.store != nil {
			_ = a.store.Close()
		}
		logSvc.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(log logx.Logger) error {
	cfg := a.cfg
	sch, err := cfg.PollSchedule()
	if err != nil {
		return err
	}
	timeout, err := cfg.PracticumTimeout()
	if err != nil {
		return err
	}

	if sc := cfg.Storage; sc != nil {
		busy, err := config.ParseDurationField("storage.busy_timeout", sc.BusyTimeout)
		if err != nil {
			return err
		}
		st, err := storage.Open(storage.Config{
			Driver:      strings.ToLower(strings.TrimSpace(sc.Driver)),
			Path:        sc.Path,
			BusyTimeout: busy,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		if st != nil {
			a.store = st
			a.log.Info("storage enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
		}
	}

	if a.sender == nil {
		ad, err := telegram.New(telegram.Config{Token: cfg.Secrets.TelegramToken}, log.With(logx.String("comp", "telegram")))
		if err != nil {
			return err
		}
		a.sender = ad
	}
	if a.fetcher == nil {
		a.fetcher = practicum.New(practicum.Config{
			Endpoint: cfg.Practicum.Endpoint,
			Token:    cfg.Secrets.PracticumToken,
			Timeout:  timeout,
		}, log.With(logx.String("comp", "practicum")))
	}

	a.notif = notifier.New(notifier.Config{
		Target:     kit.ChatTarget{ChatID: cfg.Secrets.TelegramChatID, ThreadID: cfg.Telegram.ThreadID},
		RatePerSec: cfg.Telegram.RatePerSec,
	}, a.sender, a.store, log.With(logx.String("comp", "notifier")))

	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cursor := poller.InitialCursor(initCtx, a.store, cfg.Poll.FromDate, time.Now(), a.log)

	a.poll = poller.New(poller.Config{
		Schedule: sch,
		Records:  cfg.Poll.Records,
		Cursor:   cursor,
	}, a.fetcher, a.notif, a.store, log.With(logx.String("comp", "poller")), a.pollOps...)
	return nil
}

// Poller exposes the poll loop (cursor inspection).
func (a *App) Poller() *poller.Poller { return a.poll }

// Done is closed when the app context is cancelled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))), supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	sub := a.cfgm.Subscribe(4)

	a.sup.GoRestart("poller", a.poll.Run, supervisor.WithRestartBackoff(time.Second, time.Minute))

	a.sup.Go("config.watch", a.cfgm.Watch)
	a.sup.Go("config.apply", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				a.logs.Apply(newCfg.LogConfig())
				a.log.Info("logging config applied", logx.String("level", newCfg.Logging.Level))
			}
		}
	})

	if iv := a.sd.WatchdogInterval(); iv > 0 {
		a.log.Info("systemd watchdog enabled", logx.Duration("interval", iv))
		a.sup.Go("systemd.watchdog", func(c context.Context) error { return a.sd.RunWatchdog(c, iv) })
	}

	a.sd.Ready()
	a.log.Info("app started",
		logx.String("chat_id", a.cfg.Secrets.TelegramChatID),
		logx.String("endpoint", a.cfg.Practicum.Endpoint),
		logx.Int64("cursor", a.poll.Cursor()),
	)
	return nil
}

// Stop cancels every task, waits for them until ctx expires and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("stopping")
	var err error
	if a.sup != nil {
		a.sd.Stopping()
		err = a.sup.Stop(ctx)
		for _, t := range a.sup.Snapshot() {
			a.log.Debug("task summary",
				logx.String("name", t.Name),
				logx.Int("starts", t.Starts),
				logx.Int("restarts", t.Restarts),
				logx.Int("panics", t.Panics),
				logx.String("last_err", t.LastErr),
			)
		}
	}
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			a.log.Warn("storage close failed", logx.Err(cerr))
		}
	}
	a.log.Info("stopped", logx.Int64("cursor", a.poll.Cursor()))
	_ = a.logs.Close()
	return err
}
