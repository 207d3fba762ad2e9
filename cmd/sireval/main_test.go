package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "./cmd/sireval"}, args...)...)
	cmd.Dir = filepath.Join("..", "..")
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestEval_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	preds := writeInput(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,S\np1,AZT,R\n")
	refs := writeInput(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\np1,AZT,I\n")
	outDir := filepath.Join(dir, "results")

	out, err := runCLI(t, "eval", preds, refs, "-o", outDir)
	if err != nil {
		t.Fatalf("eval: %v\n%s", err, out)
	}

	for _, name := range []string{
		"merged_eval_rows.csv", "confusion_matrix_SIR.csv",
		"classification_report.json", "summary.json",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("artifact %s not created: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var summary map[string]any
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary["accuracy"].(float64) != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", summary["accuracy"])
	}
}

func TestEval_InvalidLabelFails(t *testing.T) {
	dir := t.TempDir()
	preds := writeInput(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,X\n")
	refs := writeInput(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\n")

	out, err := runCLI(t, "eval", preds, refs, "--no-write")
	if err == nil {
		t.Fatalf("expected failure for invalid label, got:\n%s", out)
	}
	if !strings.Contains(out, "X") {
		t.Errorf("error output should name the offending label:\n%s", out)
	}
}

func TestEval_NoMatchFails(t *testing.T) {
	dir := t.TempDir()
	preds := writeInput(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,AZT,S\n")
	refs := writeInput(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\n")

	out, err := runCLI(t, "eval", preds, refs, "--no-write")
	if err == nil {
		t.Fatalf("expected failure for empty merge, got:\n%s", out)
	}
}

func TestFlatten_RoundTripsIntoEval(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "sierra.json", `{
		"inputSequence": {"header": ">p1"},
		"algorithmVersion": "HIVDB_9.4",
		"drugResistance": [
			{"gene": {"name": "RT"}, "drugScores": [
				{"drug": {"name": "3TC"}, "score": 60},
				{"drug": {"name": "AZT"}, "score": 5}
			]}
		]
	}`)
	flat := filepath.Join(dir, "ref.csv")

	out, err := runCLI(t, "flatten", input, flat, "--mapping", "default")
	if err != nil {
		t.Fatalf("flatten: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Converted 2 entries") {
		t.Errorf("unexpected flatten output:\n%s", out)
	}

	preds := writeInput(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,R\np1,AZT,S\n")
	out, err = runCLI(t, "eval", preds, flat, "--no-write")
	if err != nil {
		t.Fatalf("eval on flattened reference: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Accuracy:      1.0000") {
		t.Errorf("expected perfect accuracy in summary:\n%s", out)
	}
}
