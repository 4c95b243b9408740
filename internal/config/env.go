package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

// RequiredEnv lists the required variables in reporting order.
var RequiredEnv = []string{EnvPracticumToken, EnvTelegramToken, EnvTelegramChatID}

var ErrConfigMissing = errors.New("missing configuration")

// MissingError names every required variable that is absent or blank.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "Отсутствуют переменные окружения: " + strings.Join(e.Names, ", ")
}

func (e *MissingError) Is(target error) bool { return target == ErrConfigMissing }

// Credentials are the three secrets the bot needs to run.
// TelegramChatID is passed to Telegram as is: a numeric id or an @username.
type Credentials struct {
	PracticumToken string
	TelegramToken  string
	TelegramChatID string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv reads the credentials. A nil lookup means os.LookupEnv.
func FromEnv(lookup LookupFunc) Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(k string) string {
		v, _ := lookup(k)
		return strings.TrimSpace(v)
	}
	return Credentials{
		PracticumToken: get(EnvPracticumToken),
		TelegramToken:  get(EnvTelegramToken),
		TelegramChatID: get(EnvTelegramChatID),
	}
}

// CheckTokens returns a *MissingError if any credential is empty.
func CheckTokens(c Credentials) error {
	values := map[string]string{
		EnvPracticumToken: c.PracticumToken,
		EnvTelegramToken:  c.TelegramToken,
		EnvTelegramChatID: c.TelegramChatID,
	}
	var missing []string
	for _, name := range RequiredEnv {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default "./.env").
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
