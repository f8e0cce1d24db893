package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optionometer/journal"
)

var errJournalDisabled = errors.New("journal is disabled (journal.type is none)")

func newRunsCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Query the screen run journal",
		Long: `Query screen runs recorded in the journal.

Subcommands:
  list  - List recent runs
  show  - Show a run and its top trades as Org

Examples:
  optionometer runs list --ticker QQQ --limit 5
  optionometer runs show 01K5BQ3R4Z...`,
	}

	cmd.AddCommand(newRunsListCmd(rc), newRunsShowCmd(rc))
	return cmd
}

func newRunsListCmd(rc *RootConfig) *cobra.Command {
	var f journal.RunFilter

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List recent runs, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd.Context(), rc)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.ListRuns(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatRunsOrg(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Ticker, "ticker", "", "Only runs of this ticker")
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func newRunsShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:          "show <run-id>",
		Short:        "Show a run and its recorded trades",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := openJournal(ctx, rc)
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.GetRun(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			trades, err := j.ListTrades(ctx, run.RunID)
			if err != nil {
				return fmt.Errorf("list trades: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatRunOrg(run, trades))
			return nil
		},
	}
}

func openJournal(ctx context.Context, rc *RootConfig) (journal.Journal, error) {
	cfg, err := loadConfig(rc)
	if err != nil {
		return nil, err
	}
	j, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if j == nil {
		return nil, errJournalDisabled
	}
	return j, nil
}
