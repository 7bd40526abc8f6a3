// Command subsync is the terminal and browser front end of the subscription
// client, plus a development backend to run it against.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/subsync"
	"github.com/dmitrymomot/subsync/pkg/config"
	"github.com/dmitrymomot/subsync/pkg/logger"
)

const usage = `Usage: subsync [-env-file FILE] <command> [flags]

Commands:
  status      show the subscription of the signed-in user
  subscribe   start a checkout and print where to continue it
  serve       run the browser front end
  devbackend  run an in-memory backend for local development
  token       mint a development id token
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "subsync:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("subsync", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := fs.String("env-file", "", "load variables from `FILE` before reading the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	var opts []config.Option
	if *envFile != "" {
		opts = append(opts, config.WithEnvFiles(*envFile))
	}
	cfg, err := subsync.LoadConfig(opts...)
	if err != nil {
		return err
	}
	log, err := cfg.Logger(logger.WithOutput(stderr))
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	cmd := command{cfg: cfg, log: log, stdout: stdout, stderr: stderr}
	name, rest := fs.Arg(0), fs.Args()[1:]
	switch name {
	case "status":
		return cmd.status(ctx, rest)
	case "subscribe":
		return cmd.subscribe(ctx, rest)
	case "serve":
		return cmd.serve(ctx, rest)
	case "devbackend":
		return cmd.devbackend(ctx, rest)
	case "token":
		return cmd.token(rest)
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}
