package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/titlemirror/titlemirror/internal/database"
	"github.com/titlemirror/titlemirror/pkg/utils"
)

const errorMessageWidth = 80

func (a *app) openRepository() (*database.Repository, func(), error) {
	db, err := database.Connect(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return database.NewRepository(db), func() { db.Close() }, nil
}

func newErrorsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List recent diagnostics from the error log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			logs, err := repo.RecentErrors(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No errors recorded")
				if !a.cfg.Database.Enabled {
					fmt.Fprintln(out, "Error logging is disabled, set TITLEMIRROR_ERROR_LOG=true to enable it")
				}
				return nil
			}

			total, err := repo.CountErrors()
			if err != nil {
				return err
			}

			now := time.Now()
			fmt.Fprintf(out, "%-19s  %-8s  %-7s  %s\n", "TIME", "AGO", "SOURCE", "ERROR")
			for _, l := range logs {
				fmt.Fprintf(out, "%-19s  %-8s  %-7s  %s\n",
					l.Timestamp.Local().Format("2006-01-02 15:04:05"),
					utils.FormatAgo(l.Timestamp, now),
					l.Source,
					utils.Truncate(l.ErrorMsg, errorMessageWidth),
				)
			}
			fmt.Fprintf(out, "\nShowing %d of %d\n", len(logs), total)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of errors to show (0 for all)")
	return cmd
}

func newClearErrorsCmd(a *app) *cobra.Command {
	var (
		yes       bool
		olderThan time.Duration
	)

	cmd := &cobra.Command{
		Use:   "clear-errors",
		Short: "Delete diagnostics from the error log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if !yes {
				// Prompt for confirmation
				fmt.Fprint(out, "This will delete recorded errors. Are you sure? (yes/no): ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(response)
				if response != "yes" && response != "y" {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
			}

			repo, closeDB, err := a.openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			var deleted int64
			if olderThan > 0 {
				deleted, err = repo.DeleteErrorsBefore(time.Now().Add(-olderThan))
			} else {
				deleted, err = repo.ClearErrors()
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Deleted %d error(s)\n", deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only delete errors older than this age, e.g. 72h")
	return cmd
}
