package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sireval/internal/format"
	"sireval/internal/report"
	"sireval/internal/resist"
	"sireval/internal/sierra"
)

var flattenFlags struct {
	mapping string
}

var flattenCmd = &cobra.Command{
	Use:   "flatten <input.json> <output.csv>",
	Short: "Flatten sierra-local JSON into a reference CSV",
	Long: `Flatten converts raw sierra-local output (one sequence analysis or a
batch array) into the flat per-(patient, gene, drug) CSV that eval
accepts as a reference source.`,
	Args: cobra.ExactArgs(2),
	RunE: runFlatten,
}

func init() {
	flattenCmd.Flags().StringVar(&flattenFlags.mapping, "mapping", "default",
		"Level-to-label policy: default, conservative or strict")
}

func runFlatten(cmd *cobra.Command, args []string) error {
	policy, err := resist.ParsePolicy(flattenFlags.mapping)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	seqs, err := sierra.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	records := sierra.Flatten(seqs, policy)
	if len(records) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no drug resistance data found in input")
	}

	if err := report.WriteReferenceCSV(args[1], records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d entries to %s\n", len(records), args[1])
	if rootFlags.verbose {
		fmt.Fprint(cmd.OutOrStdout(), labelDistribution(records))
	}
	return nil
}

func labelDistribution(records []resist.ReferenceRecord) string {
	var counts [3]int
	for _, r := range records {
		if i, ok := resist.Index(r.WebsiteLabel); ok {
			counts[i]++
		}
	}
	t := format.NewTable(format.ASCII)
	t.Header("Label", "Entries")
	for i, label := range resist.Labels {
		t.Row(string(label), counts[i])
	}
	t.RightAlign(2)
	return t.String() + "\n"
}
