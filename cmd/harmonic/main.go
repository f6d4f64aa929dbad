package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	harmoniccmd "github.com/louisbranch/harmonictook/internal/cmd/harmonic"
	"github.com/louisbranch/harmonictook/internal/platform/config"
)

func main() {
	cfg, err := harmoniccmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := harmoniccmd.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("harmonic: %v", err)
	}
}
