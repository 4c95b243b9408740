package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestGoRecordsFirstError(t *testing.T) {
	s := New(context.Background())
	boom := errors.New("boom")
	s.Go("a", func(context.Context) error { return boom })
	if err := s.Wait(waitCtx(t)); !errors.Is(err, boom) {
		t.Fatalf("Wait = %v, want %v", err, boom)
	}
}

func TestGoRecoversPanic(t *testing.T) {
	s := New(context.Background(), WithCancelOnError(true))
	s.Go("p", func(context.Context) error { panic("kaboom") })
	if err := s.Wait(waitCtx(t)); err == nil {
		t.Fatalf("want panic error")
	}
	if s.Context().Err() == nil {
		t.Fatalf("context should be cancelled on error")
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].Panics != 1 || snap[0].Running {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCancellationIsClean(t *testing.T) {
	s := New(context.Background())
	s.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if err := s.Stop(waitCtx(t)); err != nil {
		t.Fatalf("Stop = %v", err)
	}
}

func TestGoRestartRestartsAfterPanic(t *testing.T) {
	s := New(context.Background())
	var runs atomic.Int32
	s.GoRestart("poller", func(ctx context.Context) error {
		if runs.Add(1) < 3 {
			panic("flaky")
		}
		<-ctx.Done()
		return nil
	}, WithRestartBackoff(time.Millisecond, 2*time.Millisecond))

	deadline := time.Now().Add(3 * time.Second)
	for runs.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("task was not restarted, runs=%d", runs.Load())
		}
		time.Sleep(time.Millisecond)
	}
	if err := s.Stop(waitCtx(t)); err != nil {
		t.Fatalf("Stop = %v", err)
	}
	snap := s.Snapshot()
	if snap[0].Restarts != 2 || snap[0].Panics != 2 {
		t.Fatalf("unexpected stats %+v", snap[0])
	}
}

func TestGoRestartGivesUp(t *testing.T) {
	s := New(context.Background())
	boom := errors.New("always")
	var runs atomic.Int32
	s.GoRestart("w", func(context.Context) error {
		runs.Add(1)
		return boom
	}, WithRestartBackoff(time.Millisecond, time.Millisecond), WithMaxRestarts(2))

	if err := s.Wait(waitCtx(t)); !errors.Is(err, boom) {
		t.Fatalf("Wait = %v, want %v", err, boom)
	}
	if runs.Load() != 3 {
		t.Fatalf("runs = %d, want 3", runs.Load())
	}
}
