package config

const (
	// DefaultEndpoint is the Practicum homework-status API.
	DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	// DefaultPollInterval is the retry period between two polls.
	DefaultPollInterval = "600s"

	RecordsFirst = "first"
	RecordsAll   = "all"
)

// Config is the full runtime configuration.
//
// Everything except Secrets may come from an optional settings file (JSON or YAML).
// Secrets are read from the environment only and never serialized.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poll      PollConfig      `json:"poll"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`

	Secrets Credentials `json:"-"`
}

type PracticumConfig struct {
	Endpoint string `json:"endpoint,omitempty"`
	// Timeout is a Go duration string. Defaults to the poll interval.
	Timeout string `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	// ThreadID targets a forum topic inside TELEGRAM_CHAT_ID (0 = none).
	ThreadID   int `json:"thread_id,omitempty"`
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// PollConfig controls the polling loop.
//
// Interval accepts a Go duration ("10m"), HH:MM ("00:10") or a cron expression
// ("*/10 * * * *", "@every 10m").
//
// Records selects which homework records of a non-empty response are reported:
//   - "first": only the most recent one (default)
//   - "all": every record in response order
//
// FromDate overrides the initial cursor (unix seconds). 0 means "now".
type PollConfig struct {
	Interval string `json:"interval,omitempty"`
	Records  string `json:"records,omitempty"`
	FromDate int64  `json:"from_date,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"`
	// Console is a pointer so an omitted key keeps the default (enabled).
	Console *bool       `json:"console,omitempty"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig controls the optional persistence layer.
//
// Example:
//
//	storage: { driver: sqlite, path: ./data/homework-bot.db }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}
