// Package main provides the morphsheet CLI for building Power Rangers
// characters and exporting their sheets.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/morphsheet/internal/app"
	"github.com/louisbranch/morphsheet/internal/platform/config"
	"github.com/louisbranch/morphsheet/internal/platform/errors/usermsg"
)

func main() {
	cfg, err := app.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %s", usermsg.Format(err))
	}
}
