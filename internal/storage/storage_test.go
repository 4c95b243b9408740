package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "github.com/tooMike/homework-bot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestStoresCursorRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", "bot.db")

			st, err := Open(Config{Driver: driver, Path: path}, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if _, ok, err := st.LoadCursor(ctx); err != nil || ok {
				t.Fatalf("fresh store LoadCursor ok=%v err=%v", ok, err)
			}
			if err := st.SaveCursor(ctx, 1000); err != nil {
				t.Fatalf("SaveCursor: %v", err)
			}
			if err := st.SaveCursor(ctx, 2000); err != nil {
				t.Fatalf("SaveCursor: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			// Reopen: the cursor survives a restart.
			st, err = Open(Config{Driver: driver, Path: path}, logx.Nop())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			t.Cleanup(func() { _ = st.Close() })
			got, ok, err := st.LoadCursor(ctx)
			if err != nil || !ok || got != 2000 {
				t.Fatalf("LoadCursor = %d, %v, %v; want 2000", got, ok, err)
			}
		})
	}
}

func TestFileStoreDeliveryJournal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "bot.json")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	for i, status := range []string{DeliverySent, DeliveryDuplicate, DeliveryFailed} {
		d := Delivery{ID: string(rune('a' + i)), At: time.Now(), ChatID: "42", Text: "hw", Status: status}
		if err := st.AppendDelivery(ctx, d); err != nil {
			t.Fatalf("AppendDelivery: %v", err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if err := st.AppendDelivery(ctx, Delivery{}); err != ErrClosed {
		t.Fatalf("append after close err = %v, want ErrClosed", err)
	}

	f, err := os.Open(filepath.Join(dir, "bot.deliveries.jsonl"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()
	var statuses []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var d Delivery
		if err := json.Unmarshal(sc.Bytes(), &d); err != nil {
			t.Fatalf("bad journal line %q: %v", sc.Text(), err)
		}
		statuses = append(statuses, d.Status)
	}
	if len(statuses) != 3 || statuses[2] != DeliveryFailed {
		t.Fatalf("statuses = %v", statuses)
	}
}

func TestFileStoreIgnoresTornSnapshot(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bot.state.json"), []byte(`{"cursor":`), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "bot")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if _, ok, _ := st.LoadCursor(context.Background()); ok {
		t.Fatal("torn snapshot should read as no cursor")
	}
}

func TestSQLiteDeliveries(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bot.db"), BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()

	if err := st.AppendDelivery(ctx, Delivery{ID: "1", ChatID: "42", Text: "ok", Status: DeliverySent}); err != nil {
		t.Fatalf("AppendDelivery: %v", err)
	}
	if err := st.AppendDelivery(ctx, Delivery{ID: "2", ChatID: "42", Text: "bad", Status: DeliveryFailed, Error: "boom"}); err != nil {
		t.Fatalf("AppendDelivery: %v", err)
	}

	db := st.(*sqliteStore).db
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries WHERE err IS NOT NULL`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("rows with error = %d, want 1", n)
	}
}
