// Package evalmerge joins prediction records against reference records on
// the (patient_id, drug) composite key.
package evalmerge

import (
	"errors"

	"sireval/internal/resist"
)

// ErrEmptyMerge is returned when no (patient_id, drug) key matches.
// Fatal for an evaluation run: no metric is computable over zero pairs.
var ErrEmptyMerge = errors.New("no matching (patient_id, drug) pairs between predictions and reference")

// Counts reports join sizes. They are informational: duplicate keys and
// unmatched rows legitimately make the three numbers disagree.
type Counts struct {
	Predictions int `json:"n_predictions"`
	Reference   int `json:"n_reference"`
	Matched     int `json:"n_matched"`
}

type key struct {
	patientID string
	drug      string
}

// Merge inner-joins predictions with reference calls. Each prediction is
// paired with every reference record sharing its key, in prediction order
// then reference order; duplicate reference keys multiply the join and
// are not deduplicated.
func Merge(preds []resist.PredictionRecord, refs []resist.ReferenceRecord) ([]resist.MergedRecord, Counts, error) {
	counts := Counts{Predictions: len(preds), Reference: len(refs)}

	byKey := make(map[key][]resist.ReferenceRecord, len(refs))
	for _, r := range refs {
		k := key{r.PatientID, r.Drug}
		byKey[k] = append(byKey[k], r)
	}

	var merged []resist.MergedRecord
	for _, p := range preds {
		for _, r := range byKey[key{p.PatientID, p.Drug}] {
			merged = append(merged, resist.MergedRecord{
				PatientID:    p.PatientID,
				Drug:         p.Drug,
				PredLabel:    p.PredLabel,
				Probs:        p.Probs,
				ModelVersion: p.ModelVersion,
				HIVDBLabel:   r.WebsiteLabel,
				Gene:         r.Gene,
				HIVDBLevel:   r.HIVDBLevel,
				HIVDBScore:   r.HIVDBScore,
				HIVDBVersion: r.HIVDBVersion,
			})
		}
	}

	if len(merged) == 0 {
		return nil, counts, ErrEmptyMerge
	}
	counts.Matched = len(merged)
	return merged, counts, nil
}
