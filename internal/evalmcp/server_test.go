package evalmcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHandleRunEvaluation(t *testing.T) {
	s := NewServer("test")
	dir := t.TempDir()
	preds := writeFile(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,S\np1,AZT,R\n")
	refs := writeFile(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\np1,AZT,I\n")

	_, out, err := s.handleRunEvaluation(context.Background(), nil, runEvaluationInput{
		PredictionsPath: preds,
		ReferencePath:   refs,
		HistoryDB:       filepath.Join(dir, "runs.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.NMatched != 2 {
		t.Errorf("NMatched = %d, want 2", out.NMatched)
	}
	if out.Report == nil || out.Report.Accuracy != 0.5 {
		t.Errorf("unexpected report: %+v", out.Report)
	}
	if out.RunID == 0 {
		t.Error("expected a history run ID")
	}
}

func TestHandleRunEvaluation_BadMapping(t *testing.T) {
	s := NewServer("test")
	_, _, err := s.handleRunEvaluation(context.Background(), nil, runEvaluationInput{
		PredictionsPath: "p.csv", ReferencePath: "r.csv", Mapping: "lenient",
	})
	if err == nil {
		t.Error("expected error for unknown mapping policy")
	}
}

func TestHandleFlattenReference(t *testing.T) {
	s := NewServer("test")
	dir := t.TempDir()
	path := writeFile(t, dir, "ref.json", `{
		"inputSequence": {"header": ">p1"},
		"drugResistance": [
			{"gene": {"name": "RT"}, "drugScores": [
				{"drug": {"name": "3TC"}, "score": 60},
				{"drug": {"name": "AZT"}, "score": 0}
			]}
		]
	}`)

	_, out, err := s.handleFlattenReference(context.Background(), nil, flattenReferenceInput{
		Path: path, Mapping: "strict",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Total != 2 || len(out.Records) != 2 {
		t.Fatalf("Total = %d, want 2", out.Total)
	}
	if out.Records[0].WebsiteLabel != "R" || out.Records[1].WebsiteLabel != "S" {
		t.Errorf("unexpected labels: %+v", out.Records)
	}
}

func TestHandleListRuns(t *testing.T) {
	s := NewServer("test")
	dir := t.TempDir()
	preds := writeFile(t, dir, "preds.csv",
		"patient_id,drug,pred_label\np1,3TC,S\n")
	refs := writeFile(t, dir, "ref.csv",
		"patient_id,drug,website_label\np1,3TC,S\n")
	db := filepath.Join(dir, "runs.db")

	if _, _, err := s.handleRunEvaluation(context.Background(), nil, runEvaluationInput{
		PredictionsPath: preds, ReferencePath: refs, HistoryDB: db,
	}); err != nil {
		t.Fatal(err)
	}

	_, out, err := s.handleListRuns(context.Background(), nil, listRunsInput{HistoryDB: db})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(out.Runs))
	}
	if out.Runs[0].Accuracy != 1.0 {
		t.Errorf("Accuracy = %f, want 1.0", out.Runs[0].Accuracy)
	}
}
