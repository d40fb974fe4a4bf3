package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/debugpanel/internal/delivery/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewApp(), os.Args[1:])
	stop()
	os.Exit(code)
}
