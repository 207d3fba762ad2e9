package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sireval/internal/evalmerge"
	"sireval/internal/metrics"
	"sireval/internal/resist"
)

// Artifact filenames, stable across runs so downstream notebooks can glob
// for them.
const (
	MergedRowsFile      = "merged_eval_rows.csv"
	ConfusionMatrixFile = "confusion_matrix_SIR.csv"
	ClassReportFile     = "classification_report.json"
	SummaryFile         = "summary.json"
)

// WriteArtifacts persists the four run artifacts under dir, creating it
// if needed. Returns the written paths in a fixed order.
func WriteArtifacts(dir string, merged []resist.MergedRecord, rep *metrics.Report, counts evalmerge.Counts, policy resist.Policy) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := []string{
		filepath.Join(dir, MergedRowsFile),
		filepath.Join(dir, ConfusionMatrixFile),
		filepath.Join(dir, ClassReportFile),
		filepath.Join(dir, SummaryFile),
	}

	if err := writeMergedCSV(paths[0], merged); err != nil {
		return nil, err
	}
	if err := writeConfusionCSV(paths[1], rep); err != nil {
		return nil, err
	}
	if err := writeJSON(paths[2], classReportDoc(rep)); err != nil {
		return nil, err
	}
	if err := writeJSON(paths[3], summaryDoc(rep, counts, policy)); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeMergedCSV(path string, merged []resist.MergedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"patient_id", "drug", "pred_label", "prob_S", "prob_I", "prob_R",
		"model_version", "hivdb_label", "gene", "hivdb_level", "hivdb_score", "hivdb_version",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for _, m := range merged {
		var pS, pI, pR string
		if m.Probs != nil {
			pS = strconv.FormatFloat(m.Probs.S, 'g', -1, 64)
			pI = strconv.FormatFloat(m.Probs.I, 'g', -1, 64)
			pR = strconv.FormatFloat(m.Probs.R, 'g', -1, 64)
		}
		row := []string{
			m.PatientID, m.Drug, string(m.PredLabel), pS, pI, pR,
			m.ModelVersion, string(m.HIVDBLabel), m.Gene,
			strconv.Itoa(m.HIVDBLevel), strconv.Itoa(m.HIVDBScore), m.HIVDBVersion,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeConfusionCSV(path string, rep *metrics.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{"", "Pred_S", "Pred_I", "Pred_R"}}
	for i, label := range resist.Labels {
		rows = append(rows, []string{
			"True_" + string(label),
			strconv.Itoa(rep.Confusion[i][0]),
			strconv.Itoa(rep.Confusion[i][1]),
			strconv.Itoa(rep.Confusion[i][2]),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Error()
}

// classReportDoc mirrors the per-class report layout evaluation notebooks
// expect: one entry per label plus accuracy and the two average rows.
func classReportDoc(rep *metrics.Report) map[string]any {
	doc := map[string]any{
		"accuracy":     rep.Accuracy,
		"macro avg":    rep.MacroAvg,
		"weighted avg": rep.WeightedAvg,
	}
	for i, label := range resist.Labels {
		doc[string(label)] = rep.Classes[i]
	}
	return doc
}

func summaryDoc(rep *metrics.Report, counts evalmerge.Counts, policy resist.Policy) map[string]any {
	doc := map[string]any{
		"accuracy":        rep.Accuracy,
		"macro_f1":        rep.MacroF1,
		"micro_f1":        rep.MicroF1,
		"weighted_f1":     rep.WeightedF1,
		"cohen_kappa":     rep.CohenKappa,
		"f1_susceptible":  rep.PerClassF1[0],
		"f1_intermediate": rep.PerClassF1[1],
		"f1_resistant":    rep.PerClassF1[2],
		"n_predictions":   counts.Predictions,
		"n_reference":     counts.Reference,
		"n_matched":       counts.Matched,
		"mapping_policy":  string(policy),
	}
	if rep.Top2Accuracy != nil {
		doc["top_2_accuracy"] = *rep.Top2Accuracy
	}
	return doc
}

func writeJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
