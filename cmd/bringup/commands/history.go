package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bringup/bringup/pkg/driver"
	"github.com/bringup/bringup/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List the most recent runs recorded with "bringup run --history".

The database path comes from --history, the config file or
BRINGUP_HISTORY, in that order of precedence.`,
		Example: `  # Show the last 20 runs
  bringup history --history bringup.db

  # Machine-readable output
  bringup history --history bringup.db --limit 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("history") {
				cfg.History.Path = dbPath
			}
			if cfg.History.Path == "" {
				return driver.NewConfigError("no history database configured", errUsage)
			}
			if limit <= 0 {
				return usageError("limit must be positive, got %d", limit)
			}

			ctx := cmd.Context()
			store, err := stores.Open(ctx, cfg.History.Path)
			if err != nil {
				return driver.NewHistoryError("failed to open history", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(ctx, limit, 0)
			if err != nil {
				return driver.NewHistoryError("failed to list runs", err)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), runs)
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().StringVar(&dbPath, "history", "", "SQLite history database")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

func printRuns(w io.Writer, runs []*stores.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tN\tCYCLES\tPRIMES\tLARGEST\tELAPSED")
	for _, r := range runs {
		cycles := fmt.Sprintf("%d/%d", r.CyclesCompleted, r.CycleLimit)
		if r.CycleLimit == 0 {
			cycles = fmt.Sprintf("%d/inf", r.CyclesCompleted)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%d\t%dms\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.UpperBound,
			cycles,
			r.PrimeCount,
			r.LargestPrime,
			r.ElapsedMS,
		)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
