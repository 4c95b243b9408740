package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tooMike/homework-bot/internal/schedule"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

// Defaults returns a config with every optional field filled in.
func Defaults() *Config {
	console := true
	return &Config{
		Practicum: PracticumConfig{Endpoint: DefaultEndpoint},
		Telegram:  TelegramConfig{RatePerSec: 1},
		Poll:      PollConfig{Interval: DefaultPollInterval, Records: RecordsFirst},
		Logging:   LoggingConfig{Level: "debug", Console: &console},
	}
}

// ApplyDefaults fills omitted fields in place.
func (c *Config) ApplyDefaults() {
	def := Defaults()
	if strings.TrimSpace(c.Practicum.Endpoint) == "" {
		c.Practicum.Endpoint = def.Practicum.Endpoint
	}
	if c.Telegram.RatePerSec <= 0 {
		c.Telegram.RatePerSec = def.Telegram.RatePerSec
	}
	if strings.TrimSpace(c.Poll.Interval) == "" {
		c.Poll.Interval = def.Poll.Interval
	}
	c.Poll.Records = strings.ToLower(strings.TrimSpace(c.Poll.Records))
	if c.Poll.Records == "" {
		c.Poll.Records = def.Poll.Records
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Console == nil {
		c.Logging.Console = def.Logging.Console
	}
}

// Validate checks the non-secret settings.
func Validate(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if _, err := schedule.Parse(c.Poll.Interval); err != nil {
		errs = append(errs, fmt.Errorf("poll.interval: %w", err))
	}
	switch c.Poll.Records {
	case "", RecordsFirst, RecordsAll:
	default:
		errs = append(errs, fmt.Errorf("poll.records: must be %q or %q, got %q", RecordsFirst, RecordsAll, c.Poll.Records))
	}
	if c.Poll.FromDate < 0 {
		errs = append(errs, errors.New("poll.from_date: must be >= 0"))
	}
	if _, err := ParseDurationField("practicum.timeout", c.Practicum.Timeout); err != nil {
		errs = append(errs, err)
	}
	if !logx.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	if s := c.Storage; s != nil {
		switch strings.ToLower(strings.TrimSpace(s.Driver)) {
		case "", "none":
		case "file", "sqlite", "sqlite3":
			if strings.TrimSpace(s.Path) == "" {
				errs = append(errs, errors.New("storage.path: required for driver "+s.Driver))
			}
		default:
			errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", s.Driver))
		}
		if _, err := ParseDurationField("storage.busy_timeout", s.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PollSchedule returns the parsed poll interval.
func (c *Config) PollSchedule() (schedule.Schedule, error) {
	return schedule.Parse(c.Poll.Interval)
}

// PracticumTimeout is the bounded API request timeout. It defaults to the poll
// interval, or to DefaultPollInterval when the interval is a cron expression.
func (c *Config) PracticumTimeout() (time.Duration, error) {
	def, _ := time.ParseDuration(DefaultPollInterval)
	if sch, err := c.PollSchedule(); err == nil && sch.Every() > 0 {
		def = sch.Every()
	}
	return ParseDurationOrDefault("practicum.timeout", c.Practicum.Timeout, def)
}

// LogConfig maps the logging section onto logx.
func (c *Config) LogConfig() logx.Config {
	console := true
	if c.Logging.Console != nil {
		console = *c.Logging.Console
	}
	return logx.Config{
		Level:   c.Logging.Level,
		Console: console,
		File:    logx.FileConfig{Enabled: c.Logging.File.Enabled, Path: c.Logging.File.Path},
	}
}
