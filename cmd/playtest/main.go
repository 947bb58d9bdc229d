package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/pelota/internal/playtest"
)

// runTimeout bounds a whole run so a hung service cannot wedge the tool.
const runTimeout = 10 * time.Minute

func main() {
	var cfg playtest.Config
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	flag.IntVar(&cfg.Players, "players", 200, "number of synthetic players")
	flag.IntVar(&cfg.SessionsPerPlayer, "sessions", 5, "sessions submitted per player")
	flag.IntVar(&cfg.TopN, "top", 50, "board entries to fetch")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent workers")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	flag.DurationVar(&cfg.Settle, "settle", playtest.DefaultSettle, "wait between submit and verify")
	flag.StringVar(&cfg.OutputFile, "output", "", "archive file for generated sessions (default generated_sessions_TIMESTAMP.json)")
	flag.StringVar(&cfg.LogFile, "log", "", "log file for test output (default playtest_TIMESTAMP.log)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log every mismatch and failed request")
	flag.Usage = usage
	flag.Parse()

	if err := playtest.SetupLogging(cfg.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "setup logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := playtest.Run(ctx, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "play test failed:", err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprint(out, `playtest drives a running instance with synthetic players and
verifies the tiers, tuning, and rankings it serves back.

Usage:
  playtest [options]

Options:
`)
	flag.PrintDefaults()
	fmt.Fprint(out, `
Examples:
  playtest
  playtest -players 2000 -sessions 8 -workers 16 -url http://game.example.com:9080
  playtest -verbose -players 500 -log my_run.log
`)
}
