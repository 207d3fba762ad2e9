package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sireval/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	verbose   bool
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "sireval",
	Short: "Evaluate S/I/R drug-resistance predictions against HIVdb calls",
	Long: "sireval compares machine-learning predictions of HIV drug-resistance\ncategory (Susceptible/Intermediate/Resistant) against Stanford HIVdb\nreference calls and reports a multi-metric performance summary.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(logging.Level(rootFlags.verbose), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
