// Package main is the entry point for the autopop demo editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/autopop/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(context.Background()); err != nil {
		// Shutdown racing ahead of Run is a normal quit.
		if errors.Is(err, app.ErrShutdown) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.FileType, "filetype", "", "Override the detected file type")
	flag.StringVar(&opts.FileType, "t", "", "Override the detected file type (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogPath, "log", "", "Append log lines to a file")
	flag.BoolVar(&opts.Watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&opts.Watch, "W", false, "Reload the configuration file when it changes (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Autopop - popup completion demo editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: autopop [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  autopop                     Open with an empty buffer\n")
		fmt.Fprintf(os.Stderr, "  autopop main.go             Open a file\n")
		fmt.Fprintf(os.Stderr, "  autopop -t python notes     Open with an explicit file type\n")
		fmt.Fprintf(os.Stderr, "  autopop -W -c acp.toml x.go Reload the config file on change\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Autopop %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level; empty defers to the configured level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one file, got %d\n", len(args))
		os.Exit(1)
	}
	if len(args) == 1 {
		opts.File = args[0]
	}

	// Without an explicit config path, pick up the user config if present
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath()
	}

	return opts
}

// defaultConfigPath returns the user config file when one exists, so a
// plain `autopop` run picks it up without a flag.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "autopop", "autopop.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
