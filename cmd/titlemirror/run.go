package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/titlemirror/titlemirror/internal/daemon"
	"github.com/titlemirror/titlemirror/internal/database"
	"github.com/titlemirror/titlemirror/internal/logger"
	"github.com/titlemirror/titlemirror/internal/metrics"
	"github.com/titlemirror/titlemirror/internal/monitor"
	"github.com/titlemirror/titlemirror/pkg/detector"
	"github.com/titlemirror/titlemirror/pkg/window"
)

const (
	stopTimeout   = 10 * time.Second
	statusTimeout = 5 * time.Second
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Monitor the window in the foreground (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runForeground(cmd)
		},
	}
}

func newStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start monitoring in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.startDaemon(cmd)
		},
	}
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stopDaemon(cmd)
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the monitored window's current title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showStatus(cmd)
		},
	}
}

func (a *app) runForeground(cmd *cobra.Command) error {
	dm := daemon.New(a.cfg.Daemon.PIDFile)
	if running, pid, err := dm.IsRunning(); err == nil && running {
		log.Printf("Warning: a background monitor is running (PID: %d) and may write the same file", pid)
	}

	return a.runMonitor(cmd.Context(), cmd.OutOrStdout())
}

func (a *app) startDaemon(cmd *cobra.Command) error {
	dm := daemon.New(a.cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	if !daemon.IsChild() {
		// Parent process - fork and exit
		pid, err := daemon.Daemonize(os.Args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Daemon started successfully (PID: %d)\n", pid)
		fmt.Fprintf(cmd.OutOrStdout(), "Logs: %s\n", a.cfg.Daemon.LogFile)
		return nil
	}

	// Child process - run the monitor
	logWriter, err := logger.Config{Path: a.cfg.Daemon.LogFile}.Redirect()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logWriter.Close()

	if err := dm.WritePID(); err != nil {
		log.Printf("Failed to write PID file: %v", err)
		return err
	}
	defer dm.RemovePID()

	return a.runMonitor(cmd.Context(), logWriter)
}

// runMonitor wires the configured backend, error log and metrics into the poll loop
// and runs it until SIGINT, SIGTERM or the end of ctx
func (a *app) runMonitor(ctx context.Context, out io.Writer) error {
	cfg := a.cfg

	if ds := detector.DetectDisplayServer(); ds != "x11" {
		log.Printf("Warning: display server is %s, only X11 (or XWayland) windows can be found", ds)
	}

	source, err := detector.New(cfg.Monitor.Backend, cfg.Monitor.QueryTimeout)
	if err != nil {
		log.Printf("Failed to initialize window source: %v", err)
		return err
	}
	defer source.Close()

	if !source.IsAvailable() {
		log.Printf("Warning: %s backend is not fully available (xdotool and xprop must be in PATH), the output stays empty until it is", source.Name())
	}

	svc := monitor.NewService(cfg, source, out, log.Default())

	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		svc.SetErrorRecorder(database.NewRepository(db))
	}

	if cfg.Metrics.TextfilePath != "" {
		svc.SetObserver(metrics.New(cfg.Metrics.TextfilePath))
	}

	fmt.Fprintf(out, "Monitoring window class: %s\n", cfg.Monitor.ClassName)
	fmt.Fprintf(out, "Writing titles to: %s\n", cfg.Monitor.OutputFile)
	fmt.Fprintf(out, "Poll interval: %v\n", cfg.Monitor.PollInterval)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("monitor error: %w", err)
	}

	log.Println("Monitor stopped")
	return nil
}

func (a *app) stopDaemon(cmd *cobra.Command) error {
	dm := daemon.New(a.cfg.Daemon.PIDFile)
	out := cmd.OutOrStdout()

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	fmt.Fprintf(out, "Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(stopTimeout); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	fmt.Fprintln(out, "Daemon stopped successfully")
	return nil
}

func (a *app) showStatus(cmd *cobra.Command) error {
	cfg := a.cfg
	out := cmd.OutOrStdout()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
	} else {
		fmt.Fprintln(out, "Status: Not running")
	}
	fmt.Fprintf(out, "Class Name: %s\n", cfg.Monitor.ClassName)
	fmt.Fprintf(out, "Output File: %s\n", cfg.Monitor.OutputFile)
	fmt.Fprintf(out, "Display Server: %s\n", detector.DetectDisplayServer())

	// Still show the current window even when not running
	source, err := detector.New(cfg.Monitor.Backend, cfg.Monitor.QueryTimeout)
	if err != nil {
		fmt.Fprintf(out, "\nCould not query windows: %v\n", err)
		return nil
	}
	defer source.Close()

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	svc := monitor.NewService(cfg, source, io.Discard, log.Default())
	lookup, title, err := svc.CurrentTitle(ctx)
	if err != nil {
		fmt.Fprintf(out, "\nCould not read current window: %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "\nCurrent Window (%s backend):\n", source.Name())
	switch lookup.Status {
	case window.Found:
		fmt.Fprintf(out, "  ID: %s\n", lookup.ID)
		fmt.Fprintf(out, "  Title: %s\n", title)
	case window.QueryError:
		fmt.Fprintf(out, "  Lookup failed: %v\n", lookup.Err)
	default:
		fmt.Fprintln(out, "  No matching window")
	}

	return nil
}
