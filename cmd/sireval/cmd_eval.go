package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sireval/internal/config"
	"sireval/internal/evalrun"
	"sireval/internal/report"
	"sireval/internal/resist"
)

var evalFlags struct {
	output     string
	mapping    string
	configPath string
	historyDB  string
	noWrite    bool
}

var evalCmd = &cobra.Command{
	Use:   "eval <predictions.csv> <reference.{csv,json}>",
	Short: "Run the full evaluation pipeline and write result artifacts",
	Long: `Eval loads model predictions and HIVdb reference calls, joins them on
(patient_id, drug), computes the metric suite, prints a summary, and
writes the run artifacts (merged rows, confusion matrix, per-class
report, scalar summary) to the output directory.

A raw sierra-local JSON reference is flattened automatically under the
selected mapping policy.`,
	Args: cobra.ExactArgs(2),
	RunE: runEval,
}

func init() {
	f := evalCmd.Flags()
	f.StringVarP(&evalFlags.output, "output", "o", "", "Output directory for artifacts (default from config, else results/)")
	f.StringVar(&evalFlags.mapping, "mapping", "", "Level-to-label policy: default, conservative or strict")
	f.StringVarP(&evalFlags.configPath, "config", "c", "", "Path to sireval YAML config")
	f.StringVar(&evalFlags.historyDB, "history", "", "SQLite run-history path (empty = no history)")
	f.BoolVar(&evalFlags.noWrite, "no-write", false, "Print the summary only, write no artifacts")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(evalFlags.configPath)
	if err != nil {
		return err
	}
	if evalFlags.mapping != "" {
		cfg.Mapping = evalFlags.mapping
	}
	if evalFlags.output != "" {
		cfg.OutputDir = evalFlags.output
	}
	if evalFlags.historyDB != "" {
		cfg.HistoryDB = evalFlags.historyDB
	}

	policy, err := resist.ParsePolicy(cfg.Mapping)
	if err != nil {
		return err
	}

	opts := evalrun.Options{
		PredictionsPath: args[0],
		ReferencePath:   args[1],
		Policy:          policy,
		OutputDir:       cfg.OutputDir,
		HistoryDB:       cfg.HistoryDB,
	}
	if evalFlags.noWrite {
		opts.OutputDir = ""
		opts.HistoryDB = ""
	}

	res, err := evalrun.Run(opts)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Summary(res.Report, res.Merged, res.Counts))

	if len(res.Artifacts) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Artifacts written to %s:\n", opts.OutputDir)
		for _, p := range res.Artifacts {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
		}
	}
	return nil
}

// resolveConfig loads the YAML config when given, else the defaults.
func resolveConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
