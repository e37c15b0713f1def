package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"git.fractalqb.de/fractalqb/gomkw/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.NewRoot().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gomkw:", err)
		stop()
		os.Exit(1)
	}
}
