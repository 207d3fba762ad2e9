// Package metrics computes the multi-class evaluation suite over merged
// prediction/reference records: accuracy, the F1 family, Cohen's kappa,
// a fixed-order confusion matrix, per-class tables, and optional top-2
// accuracy.
//
// Label order is [S, I, R] everywhere an order matters. Ratios with a
// zero denominator score 0, matching the usual classification-report
// convention (a class with no support or no predictions contributes a
// zero F1, it does not blow up the run).
package metrics

import (
	"sireval/internal/resist"
)

// ClassMetrics is one row of the per-class report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Report is the complete metric suite for one evaluation run.
type Report struct {
	Accuracy   float64 `json:"accuracy"`
	MacroF1    float64 `json:"macro_f1"`
	MicroF1    float64 `json:"micro_f1"`
	WeightedF1 float64 `json:"weighted_f1"`
	CohenKappa float64 `json:"cohen_kappa"`

	// PerClassF1 holds the independent one-vs-rest F1 for S, I, R in the
	// fixed label order.
	PerClassF1 [3]float64 `json:"per_class_f1"`

	// Confusion[i][j] counts records with true label Labels[i] predicted
	// as Labels[j].
	Confusion [3][3]int `json:"confusion_matrix"`

	// Classes is the per-class precision/recall/F1/support table in the
	// fixed label order; MacroAvg and WeightedAvg are its aggregate rows.
	Classes     [3]ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics    `json:"macro_avg"`
	WeightedAvg ClassMetrics    `json:"weighted_avg"`

	// Top2Accuracy is present only when every merged record carried a
	// full probability vector.
	Top2Accuracy *float64 `json:"top_2_accuracy,omitempty"`
}

// Compute builds the full report from merged records. hasProbabilities
// asks for top-2 accuracy; it is still omitted when any record lacks a
// probability vector.
func Compute(merged []resist.MergedRecord, hasProbabilities bool) *Report {
	r := &Report{}
	total := len(merged)

	for _, m := range merged {
		ti, tok := resist.Index(m.HIVDBLabel)
		pi, pok := resist.Index(m.PredLabel)
		if !tok || !pok {
			// Loaders enforce the label domain; an out-of-domain label
			// here is a programming error, but skipping keeps the matrix
			// sum honest rather than miscounting into a wrong cell.
			continue
		}
		r.Confusion[ti][pi]++
	}

	var rowSum, colSum [3]int
	correct := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rowSum[i] += r.Confusion[i][j]
			colSum[j] += r.Confusion[i][j]
		}
		correct += r.Confusion[i][i]
	}

	r.Accuracy = ratio(correct, total)
	r.MicroF1 = r.Accuracy // single-label multiclass: pooled F1 equals accuracy

	for i := range resist.Labels {
		tp := r.Confusion[i][i]
		precision := ratio(tp, colSum[i])
		recall := ratio(tp, rowSum[i])
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		r.Classes[i] = ClassMetrics{Precision: precision, Recall: recall, F1: f1, Support: rowSum[i]}
		r.PerClassF1[i] = f1
	}

	for _, c := range r.Classes {
		r.MacroAvg.Precision += c.Precision / 3
		r.MacroAvg.Recall += c.Recall / 3
		r.MacroAvg.F1 += c.F1 / 3
		if total > 0 {
			w := float64(c.Support) / float64(total)
			r.WeightedAvg.Precision += w * c.Precision
			r.WeightedAvg.Recall += w * c.Recall
			r.WeightedAvg.F1 += w * c.F1
		}
	}
	r.MacroAvg.Support = total
	r.WeightedAvg.Support = total
	r.MacroF1 = r.MacroAvg.F1
	r.WeightedF1 = r.WeightedAvg.F1

	r.CohenKappa = kappa(r.Accuracy, rowSum, colSum, total)

	if hasProbabilities {
		if top2, ok := top2Accuracy(merged); ok {
			r.Top2Accuracy = &top2
		}
	}

	return r
}

// kappa is chance-corrected agreement. When expected agreement is 1
// (every record in a single class on both sides) the correction is
// undefined; 0 is reported since no agreement beyond chance is shown.
func kappa(observed float64, rowSum, colSum [3]int, total int) float64 {
	if total == 0 {
		return 0
	}
	expected := 0.0
	for i := 0; i < 3; i++ {
		expected += float64(rowSum[i]) * float64(colSum[i]) / float64(total) / float64(total)
	}
	if expected >= 1 {
		return 0
	}
	return (observed - expected) / (1 - expected)
}

// top2Accuracy checks, per record, whether the true class is among the
// two highest-probability classes. A class ties into the top 2 unless
// two others are strictly more probable. Returns ok=false when any
// record lacks a probability vector.
func top2Accuracy(merged []resist.MergedRecord) (float64, bool) {
	hits := 0
	for _, m := range merged {
		if m.Probs == nil {
			return 0, false
		}
		ti, ok := resist.Index(m.HIVDBLabel)
		if !ok {
			continue
		}
		probs := m.Probs.Vector()
		higher := 0
		for j, p := range probs {
			if j != ti && p > probs[ti] {
				higher++
			}
		}
		if higher < 2 {
			hits++
		}
	}
	return ratio(hits, len(merged)), true
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
