package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tournamentcmd "github.com/louisbranch/harmonictook/internal/cmd/tournament"
	"github.com/louisbranch/harmonictook/internal/platform/config"
)

func main() {
	cfg, err := tournamentcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(exit(err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tournamentcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(exit(err))
	}
}

func exit(err error) int {
	code := config.ExitCode(err)
	if code != 0 {
		os.Stderr.WriteString("tournament: " + err.Error() + "\n")
	}
	return code
}
