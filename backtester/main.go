package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ledger"
	app.Version = version
	app.EnableBashCompletion = true
	app.Usage = "replay buy and sell signals over a price file and report the resulting ledger"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "the run config file (json, yaml or toml)",
			EnvVars:     []string{"LEDGER_CONFIG"},
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "log every execution and skipped signal",
			Destination: &verbose,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		pnlCommand,
		journalCommand,
		strategiesCommand,
	}
	return app
}

func main() {
	app := newApp()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
