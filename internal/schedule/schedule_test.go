package schedule

import (
	"testing"
	"time"
)

func TestParseVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		raw   string
		every time.Duration
	}{
		{name: "seconds", raw: "600s", every: 10 * time.Minute},
		{name: "minutes", raw: "10m", every: 10 * time.Minute},
		{name: "hhmm", raw: "01:30", every: 90 * time.Minute},
		{name: "cron", raw: "*/10 * * * *"},
		{name: "prefixed cron", raw: "cron:0 9 * * *"},
		{name: "descriptor", raw: "@hourly"},
		{name: "every", raw: "@every 5m"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got.Every() != tt.every {
				t.Fatalf("Every = %v, want %v", got.Every(), tt.every)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "soon", "0s", "-5m", "00:75", "cron:", "61 * * * *", "0 0 30 2 *"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) expected error", raw)
		}
	}
}

func TestDelay(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 12, 3, 0, 0, time.UTC)

	iv, _ := Parse("10m")
	if d := Delay(iv, now); d != 10*time.Minute {
		t.Fatalf("interval delay = %v, want 10m", d)
	}

	cr, err := Parse("CRON_TZ=UTC */10 * * * *")
	if err != nil {
		t.Fatalf("Parse cron: %v", err)
	}
	if d := Delay(cr, now); d != 7*time.Minute {
		t.Fatalf("cron delay = %v, want 7m", d)
	}
}
