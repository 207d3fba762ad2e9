// Package dataset ingests prediction and reference sources into validated
// record sets. Validation is eager: schema and label-domain violations are
// reported in full at load time, before any downstream stage runs.
package dataset

import (
	"fmt"
	"strconv"

	"sireval/internal/resist"
)

var probColumns = [3]string{"prob_S", "prob_I", "prob_R"}

// LoadPredictions reads classifier predictions from a CSV file.
// Required columns: patient_id, drug, pred_label. Probability columns are
// attached only when all three are present in the header; rows with any
// blank probability cell get no probability vector at all, so downstream
// top-2 accuracy is either computed over complete vectors or omitted.
func LoadPredictions(path string) ([]resist.PredictionRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	if missing := t.missing("patient_id", "drug", "pred_label"); len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	hasProbs := t.has(probColumns[0]) && t.has(probColumns[1]) && t.has(probColumns[2])

	records := make([]resist.PredictionRecord, 0, t.len())
	invalid := map[string]bool{}

	for row := 0; row < t.len(); row++ {
		rec := resist.PredictionRecord{
			PatientID:    t.cell(row, "patient_id"),
			Drug:         t.cell(row, "drug"),
			PredLabel:    resist.Label(t.cell(row, "pred_label")),
			ModelVersion: t.cell(row, "model_version"),
		}
		if !resist.Valid(rec.PredLabel) {
			invalid[string(rec.PredLabel)] = true
		}

		if hasProbs {
			probs, err := parseProbs(t, row)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", path, row+1, err)
			}
			rec.Probs = probs
		}

		records = append(records, rec)
	}

	if len(invalid) > 0 {
		return nil, &LabelDomainError{Path: path, Column: "pred_label", Invalid: sortedKeys(invalid)}
	}
	return records, nil
}

// parseProbs reads the three probability cells on a row. All-blank cells
// yield nil; a partially blank or unparsable vector is an error.
func parseProbs(t *table, row int) (*resist.Probabilities, error) {
	cells := [3]string{
		t.cell(row, probColumns[0]),
		t.cell(row, probColumns[1]),
		t.cell(row, probColumns[2]),
	}
	if cells[0] == "" && cells[1] == "" && cells[2] == "" {
		return nil, nil
	}

	var vals [3]float64
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: bad probability %q", probColumns[i], c)
		}
		vals[i] = v
	}
	return &resist.Probabilities{S: vals[0], I: vals[1], R: vals[2]}, nil
}
