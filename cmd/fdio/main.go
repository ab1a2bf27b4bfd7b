package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/database64128/fdio-go"
	"github.com/database64128/fdio-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(fdio.Default).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
