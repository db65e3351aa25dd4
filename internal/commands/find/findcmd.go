package find

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/indaco/projfind/internal/config"
	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/discovery"
	"github.com/indaco/projfind/internal/enumerate"
	"github.com/indaco/projfind/internal/logging"
	"github.com/indaco/projfind/internal/printer"
	"github.com/indaco/projfind/internal/tui"
	"github.com/urfave/cli/v3"
)

// newPrompter is replaced in tests.
var newPrompter = NewPrompter

// canPrompt is replaced in tests.
var canPrompt = tui.CanPrompt

// ErrNoTerminal is returned by --select when stdin or stderr is not a terminal.
var ErrNoTerminal = errors.New("interactive selection requires a terminal")

// Flags returns the discovery flags. Defaults are taken from cfg.
func Flags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "depth",
			Aliases: []string{"d"},
			Usage:   "Maximum depth below each start path",
			Value:   cfg.GetMaxDepth(),
		},
		&cli.IntFlag{
			Name:    "max-results",
			Aliases: []string{"n"},
			Usage:   "Stop after this many projects (0 = unlimited)",
			Value:   cfg.GetMaxResults(),
		},
		&cli.IntFlag{
			Name:        "jobs",
			Aliases:     []string{"j"},
			Usage:       "Number of directories inspected concurrently",
			Value:       cfg.GetJobs(),
			DefaultText: "number of CPUs",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, table, json",
			Value:   formatOrDefault(cfg.Format),
		},
		&cli.StringFlag{
			Name:  "enumerator",
			Usage: "Directory enumerator: auto, fd, walk",
			Value: string(cfg.GetEnumerator()),
		},
		&cli.StringSliceFlag{
			Name:        "exclude",
			Aliases:     []string{"e"},
			Usage:       "Directory name or glob to skip (repeatable, replaces the defaults)",
			DefaultText: "node_modules, .git, __pycache__, target, vendor",
		},
		&cli.StringSliceFlag{
			Name:        "always-surface",
			Usage:       "Project kind never hidden by workspace membership (repeatable)",
			DefaultText: "vcs-generic",
		},
		&cli.BoolFlag{
			Name:  "show-suppressed",
			Usage: "Also list workspace members hidden by their workspace root",
		},
		&cli.BoolFlag{
			Name:    "select",
			Aliases: []string{"s"},
			Usage:   "Pick one project interactively and print its path",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log progress and list skipped paths",
			Value:   cfg.Verbose,
		},
		&cli.StringFlag{
			Name:  "theme",
			Usage: "Prompt theme: " + strings.Join(tui.ValidThemes, ", "),
			Value: cfg.Theme,
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a config file",
		},
	}
}

// Action returns the root command action.
func Action(cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return runFindCmd(ctx, cmd, mergeFlags(cmd, cfg))
	}
}

// mergeFlags returns a copy of cfg with every explicitly set flag applied.
func mergeFlags(cmd *cli.Command, base *config.Config) *config.Config {
	var cfg config.Config
	if base != nil {
		cfg = *base
	}

	if args := cmd.Args().Slice(); len(args) > 0 {
		cfg.Paths = args
	}
	if cmd.IsSet("depth") {
		d := cmd.Int("depth")
		cfg.MaxDepth = &d
	}
	if cmd.IsSet("max-results") {
		n := cmd.Int("max-results")
		cfg.MaxResults = &n
	}
	if cmd.IsSet("jobs") {
		j := cmd.Int("jobs")
		cfg.Jobs = &j
	}
	if cmd.IsSet("format") {
		cfg.Format = cmd.String("format")
	}
	if cmd.IsSet("enumerator") {
		cfg.Enumerator = cmd.String("enumerator")
	}
	if cmd.IsSet("exclude") {
		cfg.Exclude = cmd.StringSlice("exclude")
	}
	if cmd.IsSet("always-surface") {
		cfg.AlwaysSurface = cmd.StringSlice("always-surface")
	}
	if cmd.IsSet("verbose") {
		cfg.Verbose = cmd.Bool("verbose")
	}
	if cmd.IsSet("theme") {
		cfg.Theme = cmd.String("theme")
	}
	return &cfg
}

// runFindCmd validates the settings, runs discovery and prints the result.
func runFindCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	logger := logging.New(cmd.ErrWriter, cfg.Verbose)
	fs := core.NewOSFileSystem()

	results, err := config.NewValidator(fs, cfg).Validate(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		switch {
		case r.Warning:
			logger.Warn(r.Message, "field", r.Field)
		case r.Passed:
			logger.Debug(r.Message, "field", r.Field)
		}
	}
	if err := config.FirstError(results); err != nil {
		return err
	}
	tui.SetTheme(cfg.Theme)

	paths, err := config.CanonicalPaths(cfg.GetPaths())
	if err != nil {
		return err
	}

	enumerator, err := newEnumerator(cfg.GetEnumerator(), fs, logger)
	if err != nil {
		return err
	}
	logger.Debug("discovery starting", "paths", paths, "enumerator", enumerator.Name())

	svc := discovery.NewService(fs, enumerator, logger)
	opts := discovery.Options{
		StartPaths:    paths,
		MaxDepth:      cfg.GetMaxDepth(),
		MaxResults:    cfg.GetMaxResults(),
		Jobs:          cfg.GetJobs(),
		Exclude:       cfg.GetExclude(),
		AlwaysSurface: cfg.GetAlwaysSurface(),
	}

	format := ParseOutputFormat(cfg.Format)
	selectMode := cmd.Bool("select")

	var result *discovery.Result
	discover := func(ctx context.Context) error {
		var err error
		result, err = svc.Discover(ctx, opts)
		return err
	}

	if format == FormatText && !cfg.Verbose && !selectMode && tui.CanAnimate() {
		err = tui.RunWithSpinner(ctx, "Searching for projects...", discover)
	} else {
		err = discover(ctx)
	}
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if selectMode {
		return selectProject(cmd, result)
	}

	formatter := NewFormatter(format, cmd.Bool("show-suppressed"))
	out, err := formatter.FormatResult(result)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(cmd.Writer, out); err != nil {
		return err
	}

	if format == FormatText {
		printSummary(cmd.ErrWriter, result, cfg.Verbose)
	}
	return nil
}

// newEnumerator resolves mode and builds the matching enumerator.
func newEnumerator(mode enumerate.Mode, fs core.FileSystem, logger *log.Logger) (enumerate.Enumerator, error) {
	resolved, bin, err := enumerate.Resolve(mode)
	if err != nil {
		return nil, &config.ConfigError{Field: "enumerator", Value: string(mode), Err: err}
	}
	if resolved == enumerate.ModeFd {
		return enumerate.NewFdEnumerator(bin, fs, logger), nil
	}
	return enumerate.NewWalkEnumerator(fs), nil
}

// selectProject prompts for one project and prints its path to stdout.
func selectProject(cmd *cli.Command, result *discovery.Result) error {
	if len(result.Projects) == 0 {
		printSummary(cmd.ErrWriter, result, false)
		return nil
	}
	if !canPrompt() {
		return ErrNoTerminal
	}

	options := make([]huh.Option[string], 0, len(result.Projects))
	for _, p := range result.Projects {
		detail := p.Kinds.String()
		if len(p.Markers) > 0 {
			detail = strings.Join(p.Markers, ", ")
		}
		label := fmt.Sprintf("%s %s", p.Path, printer.Faint("["+detail+"]"))
		options = append(options, huh.NewOption(label, p.Path))
	}

	chosen, err := newPrompter().Select("Select a project", result.Summary(), options, cmd.ErrWriter)
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		return err
	}

	_, err = fmt.Fprintln(cmd.Writer, chosen)
	return err
}

// printSummary writes the one-line summary, and the skipped paths when verbose.
func printSummary(w io.Writer, result *discovery.Result, verbose bool) {
	if verbose && len(result.Errors) > 0 {
		printer.FprintWarning(w, "Skipped paths:")
		writeErrors(w, result.Errors)
	}
	summary := result.Summary()
	if result.Capped {
		summary += " (stopped at max results)"
	}
	printer.FprintFaint(w, summary)
}

func formatOrDefault(format string) string {
	if format == "" {
		return string(FormatText)
	}
	return format
}
