package cli

import (
	"context"
	"strings"

	"github.com/indaco/projfind/internal/commands/find"
	"github.com/indaco/projfind/internal/config"
	"github.com/indaco/projfind/internal/printer"
	"github.com/indaco/projfind/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

var noColorFlag bool

func init() {
	// -v is taken by --verbose.
	urfavecli.VersionFlag = &urfavecli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

// New builds and returns the root CLI command for projfind.
// Flag defaults come from cfg; a nil cfg uses config.Default.
func New(cfg *config.Config) *urfavecli.Command {
	if cfg == nil {
		cfg = config.Default()
	}

	flags := append(find.Flags(cfg), &urfavecli.BoolFlag{
		Name:        "no-color",
		Usage:       "Disable colored output",
		Value:       cfg.NoColor,
		Destination: &noColorFlag,
	})

	return &urfavecli.Command{
		Name:      "projfind",
		Version:   "v" + strings.TrimPrefix(version.GetVersion(), "v"),
		Usage:     "Find software projects below one or more directories",
		ArgsUsage: "[paths...]",
		UsageText: `projfind [options] [paths...]

Searches each path (default: the current directory) for project markers such
as package.json, Cargo.toml, go.mod or .git, and prints one project per line.
Members of a declared workspace are folded into the workspace root.`,
		EnableShellCompletion: true,
		Flags:                 flags,
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColorFlag)
			return ctx, nil
		},
		Action: find.Action(cfg),
	}
}
