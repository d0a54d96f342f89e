package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recommendation run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initRunLog(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATE\tQUERY\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				shortID(r.ID),
				r.State,
				truncateQuery(r.Query, 40),
				r.CreatedAt.Local().Format(time.DateTime),
			)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its stage results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initRunLog(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		run, err := findRun(ctx, store, args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return eris.Errorf("run %s not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// findRun accepts a full run id or the 8-char prefix shown by list.
func findRun(ctx context.Context, store runlog.Store, id string) (*model.Run, error) {
	run, err := store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}

	runs, err := store.ListRuns(ctx, 100)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if strings.HasPrefix(runs[i].ID, id) {
			return &runs[i], nil
		}
	}
	return nil, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateQuery(q string, n int) string {
	r := []rune(q)
	if len(r) <= n {
		return q
	}
	return string(r[:n]) + "…"
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
