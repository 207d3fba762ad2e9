package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sireval/internal/format"
	"sireval/internal/history"
)

var runsFlags struct {
	historyDB string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted evaluation runs, newest first",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.historyDB, "history", "runs.db", "SQLite run-history path")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	store, err := history.Open(runsFlags.historyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded in %s\n", runsFlags.historyDB)
		return nil
	}

	t := format.NewTable(format.ASCII)
	t.Header("ID", "When", "Policy", "Pairs", "Accuracy", "Macro F1", "Kappa", "Top-2")
	for _, r := range runs {
		top2 := "-"
		if r.Top2Accuracy != nil {
			top2 = format.Metric(*r.Top2Accuracy)
		}
		t.Row(r.ID, r.CreatedAt.Format("2006-01-02 15:04"), string(r.Policy), r.Counts.Matched,
			format.Metric(r.Accuracy), format.Metric(r.MacroF1), format.Metric(r.CohenKappa), top2)
	}
	t.RightAlign(1, 4, 5, 6, 7, 8)
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}
