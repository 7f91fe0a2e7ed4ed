// cmd/touban/main.go
//
// Entry point for the touban CLI. It reads a roster of students and draws
// two different ones: the primary on duty and a backup.
//
// Flow:
// 1. Load .touban.yaml (optional) for the default roster, labels and log file
// 2. Resolve the roster path and load it
// 3. Draw the pair, either directly or in the interactive picker
// 4. Print two lines on stdout, or one Error: line on stderr with exit 1

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kingrea/touban/internal/config"
	"github.com/kingrea/touban/internal/draw"
	"github.com/kingrea/touban/internal/logbook"
	"github.com/kingrea/touban/internal/report"
	"github.com/kingrea/touban/internal/roster"
	"github.com/kingrea/touban/internal/tui"
)

// isTerminal reports whether both stdin and stdout are attached to a terminal.
var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// sampleRoster seeds the file written by `touban init`.
var sampleRoster = roster.Roster{
	{ID: "1", Name: "Alice"},
	{ID: "2", Name: "Bob"},
	{ID: "3", Name: "Charlie"},
	{ID: "4", Name: "David"},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, report.Failure(err))
		return 1
	}
	return 0
}

type options struct {
	file        string
	configPath  string
	seed        uint64
	interactive bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "touban [path]",
		Short: "Pick a primary and a backup student from a CSV roster",
		Long: `touban reads a roster with an id,name header and prints two different
students: the one on duty and a backup. Without a path it uses the roster
named in .touban.yaml, then ./students.csv.

A roster file named like a subcommand (check, init, help) must be passed
with --file, e.g. touban --file check.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *uint64
			if cmd.Flags().Changed("seed") {
				seed = &opts.seed
			}
			return runDraw(stdout, opts, args, seed)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Roster CSV (a positional path takes precedence)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Project file (default ./"+config.FileName+", or $"+config.EnvConfigPath+")")
	root.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed the draw for a reproducible result")
	root.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Open the interactive picker")

	root.AddCommand(newCheckCmd(stdout, opts), newInitCmd(stdout))
	return root
}

func newCheckCmd(stdout io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a roster without drawing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			lb, err := logbook.Open(cfg.LogPath())
			if err != nil {
				return err
			}
			path := resolveRosterPath(args, opts.file, cfg)
			r, err := roster.Load(path)
			if err != nil {
				lb.Error("check %s failed: %s", path, roster.KindOf(err))
				return err
			}
			lb.Info("check %s: %d entries", path, r.Len())
			_, err = fmt.Fprintf(stdout, "OK: %s (%d entries)\n", path, r.Len())
			return err
		},
	}
}

func newInitCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a sample students.csv and " + config.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			rosterPath := filepath.Join(dir, filepath.Base(config.DefaultRosterPath))
			created, err := ensureRoster(rosterPath)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			reportScaffold(stdout, rosterPath, created)

			configPath, created, err := config.EnsureProjectConfig(dir)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			reportScaffold(stdout, configPath, created)
			return nil
		},
	}
}

func runDraw(stdout io.Writer, opts *options, args []string, seed *uint64) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	lb, err := logbook.Open(cfg.LogPath())
	if err != nil {
		return err
	}

	path := resolveRosterPath(args, opts.file, cfg)
	r, err := roster.Load(path)
	if err != nil {
		lb.Error("load %s failed: %s", path, roster.KindOf(err))
		return err
	}

	src, err := draw.NewSource(seed)
	if err != nil {
		return err
	}
	labels := reportLabels(cfg)

	var sel draw.Selection
	if opts.interactive {
		if !isTerminal() {
			return fmt.Errorf("--interactive requires a terminal")
		}
		sel, err = tui.Run(tui.NewApp(path, r, src, labels, lb), tea.WithAltScreen())
		if err != nil {
			lb.Warn("interactive draw on %s ended: %v", path, err)
			return err
		}
	} else {
		sel = draw.Select(r, src)
	}

	lb.Info("draw %s: %d entries, %s, primary=%d backup=%d",
		path, r.Len(), seedMode(seed), sel.Primary.Index, sel.Backup.Index)
	return report.Write(stdout, sel, labels)
}

func loadConfig(explicit string) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(cwd, explicit)
}

// resolveRosterPath applies the precedence positional, --file, the project
// file's roster, then ./students.csv.
func resolveRosterPath(args []string, file string, cfg *config.Config) string {
	path := config.DefaultRosterPath
	switch {
	case len(args) > 0 && args[0] != "":
		path = args[0]
	case file != "":
		path = file
	case cfg != nil && cfg.RosterPath() != "":
		path = cfg.RosterPath()
	}
	return canonicalize(path)
}

// canonicalize returns the absolute, symlink-free form of path, or path
// unchanged when it cannot be resolved (for example because it is missing).
func canonicalize(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return path
	}
	return abs
}

func reportLabels(cfg *config.Config) report.Labels {
	l := cfg.Labels()
	return report.Labels{Primary: l.Primary, Backup: l.Backup}
}

func seedMode(seed *uint64) string {
	if seed == nil {
		return "entropy"
	}
	return fmt.Sprintf("seed=%d", *seed)
}

func ensureRoster(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := roster.Save(path, sampleRoster); err != nil {
		return false, err
	}
	return true, nil
}

func reportScaffold(w io.Writer, path string, created bool) {
	if created {
		fmt.Fprintf(w, "created %s\n", path)
		return
	}
	fmt.Fprintf(w, "kept existing %s\n", path)
}
