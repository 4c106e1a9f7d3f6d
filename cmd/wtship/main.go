package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hive-corporation/watchtower-shippers/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	if err == nil {
		return
	}

	// An interrupted run exits with the conventional 128+SIGINT status.
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "ingestion interrupted by user")
		os.Exit(130)
	}
	os.Exit(1)
}
