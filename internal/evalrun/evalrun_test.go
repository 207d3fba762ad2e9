package evalrun

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sireval/internal/dataset"
	"sireval/internal/evalmerge"
	"sireval/internal/resist"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	preds := writeFile(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,S\np1,AZT,R\n")
	refs := writeFile(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\np1,AZT,I\n")

	res, err := Run(Options{
		PredictionsPath: preds,
		ReferencePath:   refs,
		Policy:          resist.PolicyDefault,
		OutputDir:       filepath.Join(dir, "out"),
		HistoryDB:       filepath.Join(dir, "runs.db"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Counts.Matched != 2 {
		t.Errorf("Matched = %d, want 2", res.Counts.Matched)
	}
	if res.Report.Accuracy != 0.5 {
		t.Errorf("Accuracy = %f, want 0.5", res.Report.Accuracy)
	}
	if res.Report.Top2Accuracy != nil {
		t.Error("top-2 should be absent without probability columns")
	}
	if len(res.Artifacts) != 4 {
		t.Errorf("expected 4 artifacts, got %d", len(res.Artifacts))
	}
	for _, p := range res.Artifacts {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}
	if res.RunID == 0 {
		t.Error("expected a history run ID")
	}
}

func TestRun_InvalidLabelAbortsBeforeMerge(t *testing.T) {
	dir := t.TempDir()
	preds := writeFile(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,X\n")
	refs := writeFile(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\n")
	out := filepath.Join(dir, "out")

	_, err := Run(Options{
		PredictionsPath: preds,
		ReferencePath:   refs,
		Policy:          resist.PolicyDefault,
		OutputDir:       out,
	})
	if !dataset.IsLabelDomainError(err) {
		t.Fatalf("expected LabelDomainError, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no artifacts should be written on failure")
	}
}

func TestRun_NoMatchingKeys(t *testing.T) {
	dir := t.TempDir()
	preds := writeFile(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,AZT,S\n")
	refs := writeFile(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\n")

	_, err := Run(Options{
		PredictionsPath: preds,
		ReferencePath:   refs,
		Policy:          resist.PolicyDefault,
	})
	if !errors.Is(err, evalmerge.ErrEmptyMerge) {
		t.Fatalf("expected ErrEmptyMerge, got %v", err)
	}
}

func TestRun_SierraReferenceWithProbabilities(t *testing.T) {
	dir := t.TempDir()
	preds := writeFile(t, dir, "preds.csv",
		"patient_id,drug,pred_label,prob_S,prob_I,prob_R\n"+
			"p1,3TC,R,0.1,0.2,0.7\n")
	refs := writeFile(t, dir, "ref.json", `{
		"inputSequence": {"header": ">p1"},
		"algorithmVersion": "HIVDB_9.4",
		"drugResistance": [
			{"gene": {"name": "RT"}, "drugScores": [{"drug": {"name": "3TC"}, "score": 75}]}
		]
	}`)

	res, err := Run(Options{
		PredictionsPath: preds,
		ReferencePath:   refs,
		Policy:          resist.PolicyDefault,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.Accuracy != 1.0 {
		t.Errorf("Accuracy = %f, want 1.0", res.Report.Accuracy)
	}
	if res.Report.Top2Accuracy == nil || *res.Report.Top2Accuracy != 1.0 {
		t.Errorf("Top2Accuracy = %v, want 1.0", res.Report.Top2Accuracy)
	}
}
