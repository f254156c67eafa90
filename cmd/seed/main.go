// Package main provides a CLI for seeding the local development database
// with demo claims through the engine.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/claimledger/internal/platform/config"
	"github.com/louisbranch/claimledger/internal/seed"
)

func main() {
	cfg := seed.DefaultConfig()
	flag.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	flag.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seed.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("seed database: %v", err)
	}
}
