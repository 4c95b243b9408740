package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tooMike/homework-bot/internal/config"
)

func envOf(vars map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestBootstrapChecksTokensFirst(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(bad, []byte("poll: [not, a, mapping"), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	_, err := bootstrap(bad, envOf(map[string]string{config.EnvTelegramToken: "t"}))
	var me *config.MissingError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want *config.MissingError", err)
	}
	if len(me.Names) != 2 || me.Names[0] != config.EnvPracticumToken || me.Names[1] != config.EnvTelegramChatID {
		t.Fatalf("missing = %v", me.Names)
	}
}

func TestBootstrapReportsBadSettings(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(bad, []byte("poll:\n  records: newest\n"), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	env := envOf(map[string]string{
		config.EnvPracticumToken: "p",
		config.EnvTelegramToken:  "t",
		config.EnvTelegramChatID: "@my_channel",
	})

	_, err := bootstrap(bad, env)
	if err == nil || errors.Is(err, config.ErrConfigMissing) {
		t.Fatalf("err = %v, want a settings error", err)
	}

	cfgm, err := bootstrap("", env)
	if err != nil {
		t.Fatalf("bootstrap without settings file: %v", err)
	}
	if got := cfgm.Get().Secrets.TelegramChatID; got != "@my_channel" {
		t.Fatalf("chat id = %q", got)
	}
}
