// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/vellum-notes/vellum/lib/config"
	"github.com/vellum-notes/vellum/lib/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		logLevel    string
		vaultRoot   string
		suggestions int
		showVersion bool
	)

	flags := pflag.NewFlagSet("vellum-check", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to vellum.yaml (default: $VELLUM_CONFIG)")
	flags.StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	flags.StringVar(&vaultRoot, "vault", "", "override the configured vault root")
	flags.IntVar(&suggestions, "suggestions", 3, "fuzzy suggestions per unresolved reference (0 disables)")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if showVersion {
		fmt.Printf("vellum-check %s\n", version.Info())
		return 0
	}
	if arguments := flags.Args(); len(arguments) > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected argument: %s\n", arguments[0])
		return 2
	}

	cfg, err := loadConfig(configPath, vaultRoot, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runCheck(ctx, cfg, logger, suggestions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	report.print(os.Stdout)
	if len(report.findings) > 0 {
		return 1
	}
	return 0
}

// loadConfig resolves the effective configuration: config file first,
// then the settings.json overlay, then flag overrides.
func loadConfig(configPath, vaultRoot, logLevel string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if cfg.Settings != "" {
		settings, err := config.LoadSettings(cfg.Settings)
		if err != nil {
			return nil, err
		}
		cfg.ApplySettings(settings)
	}
	if vaultRoot != "" {
		cfg.Vault.Root = vaultRoot
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
