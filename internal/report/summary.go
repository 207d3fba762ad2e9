// Package report renders the evaluation summary for the console and
// persists the run artifacts: the merged evaluation rows, the confusion
// matrix, the per-class classification report, and the scalar summary.
package report

import (
	"fmt"
	"strings"

	"sireval/internal/evalmerge"
	"sireval/internal/format"
	"sireval/internal/metrics"
	"sireval/internal/resist"
)

// Summary produces the human-readable evaluation report.
func Summary(rep *metrics.Report, merged []resist.MergedRecord, counts evalmerge.Counts) string {
	var b strings.Builder

	b.WriteString("=== HIV Drug Resistance Model Evaluation ===\n")
	b.WriteString(fmt.Sprintf("Evaluation pairs: %d (%d predictions, %d reference calls)\n",
		counts.Matched, counts.Predictions, counts.Reference))
	b.WriteString(fmt.Sprintf("Unique patients:  %d\n", uniquePatients(merged)))
	b.WriteString(fmt.Sprintf("Unique drugs:     %d\n\n", uniqueDrugs(merged)))

	b.WriteString("--- Overall Performance ---\n")
	b.WriteString(fmt.Sprintf("Accuracy:      %s\n", format.Metric(rep.Accuracy)))
	b.WriteString(fmt.Sprintf("Macro F1:      %s\n", format.Metric(rep.MacroF1)))
	b.WriteString(fmt.Sprintf("Weighted F1:   %s\n", format.Metric(rep.WeightedF1)))
	b.WriteString(fmt.Sprintf("Cohen's Kappa: %s\n", format.Metric(rep.CohenKappa)))
	if rep.Top2Accuracy != nil {
		b.WriteString(fmt.Sprintf("Top-2 Acc.:    %s\n", format.Metric(*rep.Top2Accuracy)))
	}
	b.WriteString("\n")

	b.WriteString("--- Per-Class Metrics ---\n")
	b.WriteString(classTable(rep))
	b.WriteString("\n\n")

	b.WriteString("--- Confusion Matrix (rows = HIVdb, columns = model) ---\n")
	b.WriteString(confusionTable(rep))
	b.WriteString("\n\n")

	b.WriteString("--- Label Distribution ---\n")
	b.WriteString(distributionTable(merged))
	b.WriteString("\n")

	return b.String()
}

func classTable(rep *metrics.Report) string {
	t := format.NewTable(format.ASCII)
	t.Header("Class", "Precision", "Recall", "F1", "Support")
	for i, label := range resist.Labels {
		c := rep.Classes[i]
		t.Row(string(label), format.Metric(c.Precision), format.Metric(c.Recall),
			format.Metric(c.F1), c.Support)
	}
	t.Footer("macro avg", format.Metric(rep.MacroAvg.Precision), format.Metric(rep.MacroAvg.Recall),
		format.Metric(rep.MacroAvg.F1), rep.MacroAvg.Support)
	t.RightAlign(2, 3, 4, 5)
	return t.String()
}

func confusionTable(rep *metrics.Report) string {
	t := format.NewTable(format.ASCII)
	t.Header("", "Pred_S", "Pred_I", "Pred_R")
	for i, label := range resist.Labels {
		t.Row("True_"+string(label), rep.Confusion[i][0], rep.Confusion[i][1], rep.Confusion[i][2])
	}
	t.RightAlign(2, 3, 4)
	return t.String()
}

func distributionTable(merged []resist.MergedRecord) string {
	var hivdb, pred [3]int
	for _, m := range merged {
		if i, ok := resist.Index(m.HIVDBLabel); ok {
			hivdb[i]++
		}
		if i, ok := resist.Index(m.PredLabel); ok {
			pred[i]++
		}
	}

	t := format.NewTable(format.ASCII)
	t.Header("Label", "HIVdb", "Model")
	for i, label := range resist.Labels {
		t.Row(string(label), hivdb[i], pred[i])
	}
	t.RightAlign(2, 3)
	return t.String()
}

func uniquePatients(merged []resist.MergedRecord) int {
	seen := map[string]bool{}
	for _, m := range merged {
		seen[m.PatientID] = true
	}
	return len(seen)
}

func uniqueDrugs(merged []resist.MergedRecord) int {
	seen := map[string]bool{}
	for _, m := range merged {
		seen[m.Drug] = true
	}
	return len(seen)
}
