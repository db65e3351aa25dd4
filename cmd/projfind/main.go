package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/indaco/projfind/internal/cli"
	"github.com/indaco/projfind/internal/config"
	"github.com/indaco/projfind/internal/printer"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		printer.FprintError(os.Stderr, fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// runCLI loads the config file and runs the root command with args.
func runCLI(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfigFn(configPath(args))
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	return cli.New(cfg).Run(ctx, args)
}

// configPath returns the value of --config, which must be known before the
// flags that default from the config file are built.
func configPath(args []string) string {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
