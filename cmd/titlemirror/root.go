package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/titlemirror/titlemirror/internal/config"
	"github.com/titlemirror/titlemirror/pkg/detector"
)

// app carries the configuration resolved for the invoked command
type app struct {
	cfg *config.Config

	envFile  string
	class    string
	output   string
	interval time.Duration
	backend  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Mirror an X11 window's title into a text file",
		Long: `titlemirror polls the title of the first window with a given WM_CLASS
instance name and rewrites a text file whenever the title changes. The file is
empty while no such window exists.

Environment Variables:
  TITLEMIRROR_CLASS_NAME     Window class name (default cloudmusic.exe)
  TITLEMIRROR_OUTPUT_FILE    Output file path (default title.txt)
  TITLEMIRROR_POLL_INTERVAL  Poll interval, e.g. 500ms or 2 (100ms-60s)
  TITLEMIRROR_QUERY_TIMEOUT  Timeout for each window query
  TITLEMIRROR_BACKEND        xprop or xgb
  TITLEMIRROR_PID_FILE       PID file path
  TITLEMIRROR_LOG_FILE       Log file used by start
  TITLEMIRROR_ERROR_LOG      Persist diagnostics to SQLite (true/false)
  TITLEMIRROR_DB_PATH        Database file path
  TITLEMIRROR_METRICS_FILE   Prometheus textfile output path`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runForeground(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Load variables from this .env file if it exists")
	flags.StringVar(&a.class, "class", "", "Window class name to monitor")
	flags.StringVar(&a.output, "output", "", "Output file path")
	flags.DurationVar(&a.interval, "interval", 0, "Poll interval")
	flags.StringVar(&a.backend, "backend", "", "Window backend: xprop or xgb")

	rootCmd.AddCommand(
		newRunCmd(a),
		newStartCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newErrorsCmd(a),
		newClearErrorsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// loadConfig resolves defaults, then .env, then the environment, then flags
func (a *app) loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", a.envFile, err)
	}

	cfg := config.Default()
	config.LoadFromEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("class") {
		cfg.Monitor.ClassName = a.class
	}
	if flags.Changed("output") {
		cfg.Monitor.OutputFile = a.output
	}
	if flags.Changed("interval") {
		if err := cfg.SetPollInterval(a.interval); err != nil {
			return err
		}
	}
	if flags.Changed("backend") {
		if !detector.IsValidBackend(a.backend) {
			return fmt.Errorf("unknown backend %q (valid: %s)", a.backend, strings.Join(detector.Backends, ", "))
		}
		cfg.Monitor.Backend = a.backend
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", appName, version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text {
				fmt.Fprintln(cmd.OutOrStdout(), a.cfg.String())
				return nil
			}

			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&text, "text", false, "Print a human readable summary instead of YAML")
	return cmd
}
