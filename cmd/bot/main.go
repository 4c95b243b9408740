package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tooMike/homework-bot/internal/app"
	"github.com/tooMike/homework-bot/internal/config"
	logx "github.com/tooMike/homework-bot/pkg/logx"
)

func main() {
	var cfgPath, envFile string
	flag.StringVar(&cfgPath, "config", "", "path to optional settings file (json/yaml)")
	flag.StringVar(&envFile, "env", ".env", "path to optional .env file")
	flag.Parse()

	boot := logx.NewConsole("debug").With(logx.String("comp", "main"))

	if err := config.LoadDotEnv(envFile); err != nil {
		boot.Warn("dotenv load failed", logx.String("file", envFile), logx.Err(err))
	}

	cfgm, err := bootstrap(cfgPath, nil)
	if err != nil {
		boot.Critical(err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgm)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "stop:", err)
		os.Exit(1)
	}
}

// bootstrap checks the required variables before reading the settings file,
// so missing tokens are reported even when the file is broken too.
func bootstrap(cfgPath string, lookup config.LookupFunc) (*config.Manager, error) {
	if err := config.CheckTokens(config.FromEnv(lookup)); err != nil {
		return nil, err
	}
	cfgm := config.NewManager(cfgPath, lookup)
	if _, err := cfgm.Load(); err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfgm, nil
}
