// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/vellum-notes/vellum/lib/config"
	"github.com/vellum-notes/vellum/lib/version"
	"github.com/vellum-notes/vellum/store"
)

// passphraseEnv names the environment variable consulted before
// prompting for a passphrase.
const passphraseEnv = "VELLUM_ARCHIVE_PASSPHRASE"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch os.Args[1] {
	case "export":
		return runExport(os.Args[2:])
	case "import":
		return runImport(os.Args[2:])
	case "version", "--version":
		fmt.Printf("vellum-archive %s\n", version.Info())
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: vellum-archive <subcommand> [flags] [FILE]

Subcommands:
  export [flags] [FILE]   Write conversations to an archive file
                          (default FILE: vellum-YYYYMMDD.vla)
  import [flags] FILE     Read an archive file into the store
  version                 Print version information

Export flags:
  --compression ALGO   payload compression: none, lz4, or zstd (default zstd)
  --encrypt            seal the archive with a passphrase
  --conversation ID    export only this conversation (repeatable)

Common flags:
  --config PATH        path to vellum.yaml (default: $VELLUM_CONFIG)
  --log-level LEVEL    override the configured log level

Environment:
  VELLUM_ARCHIVE_PASSPHRASE  passphrase for --encrypt and encrypted imports
  VELLUM_CONFIG              config file path when --config is not given
`)
}

func runExport(arguments []string) error {
	var (
		configPath      string
		logLevel        string
		compressionName string
		encrypt         bool
		conversations   []string
	)

	flags := pflag.NewFlagSet("vellum-archive export", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to vellum.yaml (default: $VELLUM_CONFIG)")
	flags.StringVar(&logLevel, "log-level", "", "override the configured log level")
	flags.StringVar(&compressionName, "compression", "zstd", "payload compression: none, lz4, or zstd")
	flags.BoolVar(&encrypt, "encrypt", false, "seal the archive with a passphrase")
	flags.StringArrayVar(&conversations, "conversation", nil, "conversation id to export (repeatable; default: all)")

	if err := flags.Parse(arguments); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	compression, err := store.ParseCompression(compressionName)
	if err != nil {
		return err
	}

	output := ""
	switch rest := flags.Args(); len(rest) {
	case 0:
		output = fmt.Sprintf("vellum-%s.vla", time.Now().Format("20060102"))
	case 1:
		output = rest[0]
	default:
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}

	// Resolve the passphrase before touching the store so a typo at
	// the prompt aborts without side effects.
	passphrase := ""
	if encrypt {
		passphrase, err = resolvePassphrase(true)
		if err != nil {
			return err
		}
	}

	s, cleanup, err := openStore(configPath, logLevel)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	if err := s.Export(ctx, file, store.ExportOptions{
		ConversationIDs: conversations,
		Compression:     compression,
		Passphrase:      passphrase,
	}); err != nil {
		file.Close()
		os.Remove(output)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, err)
	}

	fmt.Printf("wrote %s\n", output)
	return nil
}

func runImport(arguments []string) error {
	var (
		configPath string
		logLevel   string
	)

	flags := pflag.NewFlagSet("vellum-archive import", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to vellum.yaml (default: $VELLUM_CONFIG)")
	flags.StringVar(&logLevel, "log-level", "", "override the configured log level")

	if err := flags.Parse(arguments); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flags.Args()
	if len(rest) != 1 {
		return fmt.Errorf("import requires exactly one archive file argument")
	}
	input := rest[0]

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	passphrase := ""
	if store.EncryptedArchive(data) {
		passphrase, err = resolvePassphrase(false)
		if err != nil {
			return err
		}
	}

	s, cleanup, err := openStore(configPath, logLevel)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := s.Import(ctx, bytes.NewReader(data), store.ImportOptions{Passphrase: passphrase})
	if err != nil {
		return err
	}

	fmt.Printf("imported %d conversations and %d messages", stats.Conversations, stats.Messages)
	if stats.Skipped > 0 {
		fmt.Printf(" (%d records skipped)", stats.Skipped)
	}
	fmt.Println()
	return nil
}

// openStore loads configuration and opens the conversation store. The
// returned cleanup closes it.
func openStore(configPath, logLevel string) (*store.Store, func(), error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cfg.Store.Path == "" {
		return nil, nil, fmt.Errorf("store.path is required")
	}
	if err := cfg.EnsureDataDirs(); err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	s, err := store.Open(store.Config{
		Path:     cfg.Store.Path,
		PoolSize: cfg.Store.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}
	return s, cleanup, nil
}

// resolvePassphrase returns the archive passphrase: the environment
// variable when set, an interactive prompt otherwise. confirm asks
// twice, for export, where a typo would seal the archive forever.
func resolvePassphrase(confirm bool) (string, error) {
	if passphrase := os.Getenv(passphraseEnv); passphrase != "" {
		return passphrase, nil
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s for non-interactive use", passphraseEnv)
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(first) == 0 {
		return "", fmt.Errorf("passphrase is empty")
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase confirmation: %w", err)
	}
	if !bytes.Equal(first, second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}
