package main

import (
	"context"
	"os"
	"os/signal"

	"wpscaffold.dev/wpscaffold/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, cli.NewRepoManagementCmd(cli.Options{Version: version + " (" + commit + ", " + date + ")"}))
	stop()
	os.Exit(code)
}
