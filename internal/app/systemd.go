package app

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "github.com/tooMike/homework-bot/pkg/logx"
)

// systemdNotifier talks to the service manager through $NOTIFY_SOCKET.
// Outside systemd every call is a no-op.
type systemdNotifier struct {
	notify   func(state string) (bool, error)
	watchdog func() (time.Duration, error)
	log      logx.Logger
}

func defaultSystemd(log logx.Logger) *systemdNotifier {
	return &systemdNotifier{
		notify:   func(state string) (bool, error) { return daemon.SdNotify(false, state) },
		watchdog: func() (time.Duration, error) { return daemon.SdWatchdogEnabled(false) },
		log:      log,
	}
}

func (s *systemdNotifier) send(state string) {
	ok, err := s.notify(state)
	switch {
	case err != nil:
		s.log.Warn("systemd notify failed", logx.String("state", state), logx.Err(err))
	case ok:
		s.log.Debug("systemd notified", logx.String("state", state))
	}
}

func (s *systemdNotifier) Ready()    { s.send(daemon.SdNotifyReady) }
func (s *systemdNotifier) Stopping() { s.send(daemon.SdNotifyStopping) }

// WatchdogInterval returns half of WATCHDOG_USEC, or 0 when the watchdog is off.
func (s *systemdNotifier) WatchdogInterval() time.Duration {
	d, err := s.watchdog()
	if err != nil {
		s.log.Warn("systemd watchdog lookup failed", logx.Err(err))
		return 0
	}
	return d / 2
}

// RunWatchdog pings the watchdog every interval until ctx is done.
func (s *systemdNotifier) RunWatchdog(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.send(daemon.SdNotifyWatchdog)
		}
	}
}
