package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	claimledgerd "github.com/louisbranch/claimledger/internal/cmd/claimledgerd"
)

func main() {
	cfg, err := claimledgerd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CLAIMLEDGER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := claimledgerd.Run(ctx, cfg); err != nil {
		log.Fatalf("run claim engine: %v", err)
	}
}
