// Package evalrun orchestrates one complete evaluation: load both
// sources, merge, compute metrics, and optionally persist artifacts and
// the run history row. The CLI and the MCP server share this path.
package evalrun

import (
	"fmt"

	"sireval/internal/dataset"
	"sireval/internal/evalmerge"
	"sireval/internal/history"
	"sireval/internal/logging"
	"sireval/internal/metrics"
	"sireval/internal/report"
	"sireval/internal/resist"
)

// Options selects the inputs and side outputs of a run.
type Options struct {
	PredictionsPath string
	ReferencePath   string
	Policy          resist.Policy
	// OutputDir receives artifacts; empty skips artifact writing.
	OutputDir string
	// HistoryDB appends the run to a SQLite history; empty skips it.
	HistoryDB string
}

// Result is one completed evaluation.
type Result struct {
	Merged    []resist.MergedRecord
	Counts    evalmerge.Counts
	Report    *metrics.Report
	Artifacts []string
	// RunID is the history row ID, 0 when history is disabled.
	RunID int64
}

// Run executes the pipeline. Any stage failure aborts the run; no
// partial output is produced.
func Run(opts Options) (*Result, error) {
	log := logging.New("eval")

	preds, err := dataset.LoadPredictions(opts.PredictionsPath)
	if err != nil {
		return nil, err
	}
	log.Info("loaded predictions", "path", opts.PredictionsPath, "records", len(preds))

	refs, err := dataset.LoadReference(opts.ReferencePath, opts.Policy)
	if err != nil {
		return nil, err
	}
	log.Info("loaded reference calls", "path", opts.ReferencePath, "records", len(refs))

	merged, counts, err := evalmerge.Merge(preds, refs)
	if err != nil {
		return nil, err
	}
	log.Info("merged datasets",
		"predictions", counts.Predictions,
		"reference", counts.Reference,
		"matched", counts.Matched)

	rep := metrics.Compute(merged, haveProbabilities(preds))

	res := &Result{Merged: merged, Counts: counts, Report: rep}

	if opts.OutputDir != "" {
		paths, err := report.WriteArtifacts(opts.OutputDir, merged, rep, counts, opts.Policy)
		if err != nil {
			return nil, err
		}
		res.Artifacts = paths
		for _, p := range paths {
			log.Debug("wrote artifact", "path", p)
		}
	}

	if opts.HistoryDB != "" {
		store, err := history.Open(opts.HistoryDB)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		id, err := store.SaveRun(opts.PredictionsPath, opts.ReferencePath, opts.Policy, counts, rep)
		if err != nil {
			return nil, fmt.Errorf("record run history: %w", err)
		}
		res.RunID = id
		log.Info("recorded run history", "db", opts.HistoryDB, "run_id", id)
	}

	return res, nil
}

// haveProbabilities reports whether every prediction carries a full
// probability vector, the precondition for top-2 accuracy.
func haveProbabilities(preds []resist.PredictionRecord) bool {
	for _, p := range preds {
		if p.Probs == nil {
			return false
		}
	}
	return len(preds) > 0
}
