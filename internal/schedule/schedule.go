// Package schedule turns a poll interval setting into wake-up times.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule yields the next time the poll loop should wake up.
type Schedule interface {
	Next(now time.Time) time.Time
	// Every is the fixed interval, or 0 for cron schedules.
	Every() time.Duration
	String() string
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse accepts:
//   - Go duration: "600s", "10m"
//   - HH:MM interval: "00:10" (10 minutes)
//   - cron (robfig/cron): "*/10 * * * *", "@hourly", "@every 10m"
//
// A "cron:" prefix forces cron parsing.
func Parse(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("schedule required")
	}

	if strings.HasPrefix(strings.ToLower(s), "cron:") {
		return parseCron(strings.TrimSpace(s[len("cron:"):]))
	}
	// any whitespace or leading '@' => cron
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return parseCron(s)
	}
	if m := reHHMM.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return nil, fmt.Errorf("invalid minutes in %q", raw)
		}
		return interval(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid schedule %q (use a duration like '10m', HH:MM like '00:10', or cron like '*/10 * * * *')",
			raw,
		)
	}
	return interval(d)
}

func interval(d time.Duration) (Schedule, error) {
	if d <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	return Interval(d), nil
}

func parseCron(expr string) (Schedule, error) {
	if expr == "" {
		return nil, fmt.Errorf("cron expression required")
	}
	sch, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	if sch.Next(time.Now()).IsZero() {
		return nil, fmt.Errorf("cron %q never fires", expr)
	}
	return cronSchedule{expr: expr, sch: sch}, nil
}

// Interval is a fixed delay between two polls.
type Interval time.Duration

func (i Interval) Next(now time.Time) time.Time { return now.Add(time.Duration(i)) }
func (i Interval) Every() time.Duration         { return time.Duration(i) }
func (i Interval) String() string               { return time.Duration(i).String() }

type cronSchedule struct {
	expr string
	sch  cron.Schedule
}

func (c cronSchedule) Next(now time.Time) time.Time { return c.sch.Next(now) }
func (c cronSchedule) Every() time.Duration         { return 0 }
func (c cronSchedule) String() string               { return c.expr }

// Delay returns how long to sleep from now until the next wake-up (never negative).
func Delay(s Schedule, now time.Time) time.Duration {
	d := s.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
