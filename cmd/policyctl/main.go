package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/policysignoff/internal/client/cli"
	"github.com/dmitrijs2005/policysignoff/internal/client/config"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, fs, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stderr, fs.FlagUsages())
			return nil
		}
		return err
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	args := fs.Args()
	if help, _ := fs.GetBool("help"); help {
		args = nil
	}
	return app.Run(ctx, args)
}
