package resist

// Probabilities is a per-class probability vector in the fixed label order.
// Values are taken as-is from the prediction source; summing to 1 is not
// enforced.
type Probabilities struct {
	S float64 `json:"prob_S"`
	I float64 `json:"prob_I"`
	R float64 `json:"prob_R"`
}

// Vector returns the probabilities in the fixed label order.
func (p Probabilities) Vector() [3]float64 {
	return [3]float64{p.S, p.I, p.R}
}

// PredictionRecord is one classifier call for a (patient, drug) pair.
// Immutable after loading.
type PredictionRecord struct {
	PatientID    string         `json:"patient_id"`
	Drug         string         `json:"drug"`
	PredLabel    Label          `json:"pred_label"`
	Probs        *Probabilities `json:"probs,omitempty"`
	ModelVersion string         `json:"model_version,omitempty"`
}

// ReferenceRecord is one HIVdb reference call, either read from a
// flattened table or synthesized from sierra-local output.
type ReferenceRecord struct {
	PatientID    string `json:"patient_id"`
	Gene         string `json:"gene,omitempty"`
	Drug         string `json:"drug"`
	HIVDBLevel   int    `json:"hivdb_level,omitempty"`
	HIVDBScore   int    `json:"hivdb_score,omitempty"`
	WebsiteLabel Label  `json:"website_label"`
	HIVDBVersion string `json:"hivdb_version,omitempty"`
}

// MergedRecord is the natural join of one prediction and one reference
// record sharing (patient_id, drug). The reference label is renamed
// hivdb_label to disambiguate from the prediction's own label.
type MergedRecord struct {
	PatientID    string         `json:"patient_id"`
	Drug         string         `json:"drug"`
	PredLabel    Label          `json:"pred_label"`
	Probs        *Probabilities `json:"probs,omitempty"`
	ModelVersion string         `json:"model_version,omitempty"`
	HIVDBLabel   Label          `json:"hivdb_label"`
	Gene         string         `json:"gene,omitempty"`
	HIVDBLevel   int            `json:"hivdb_level,omitempty"`
	HIVDBScore   int            `json:"hivdb_score,omitempty"`
	HIVDBVersion string         `json:"hivdb_version,omitempty"`
}
