// Package sierra parses sierra-local JSON output and flattens it into
// per-(sequence, gene, drug) reference records.
//
// sierra-local emits either a single sequence analysis object or an array
// of them. Every field may be absent; absent fields get a documented
// default instead of failing, because partial analyses are common and a
// missing gene name must not abort a whole batch.
package sierra

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sireval/internal/resist"
)

// SequenceResult is one sequence's resistance analysis.
type SequenceResult struct {
	InputSequence    InputSequence `json:"inputSequence"`
	AlgorithmVersion string        `json:"algorithmVersion"`
	DrugResistance   []GeneResult  `json:"drugResistance"`
}

// InputSequence carries the FASTA header the analysis was run on.
type InputSequence struct {
	Header string `json:"header"`
}

// GeneResult is the per-gene block of drug scores.
type GeneResult struct {
	Gene       NamedEntity `json:"gene"`
	DrugScores []DrugScore `json:"drugScores"`
}

// DrugScore is one drug's resistance score within a gene.
type DrugScore struct {
	Drug  NamedEntity `json:"drug"`
	Score float64     `json:"score"`
}

// NamedEntity is the {"name": ...} wrapper sierra-local uses for genes
// and drugs.
type NamedEntity struct {
	Name string `json:"name"`
}

// ParseError reports a malformed sierra-local document.
type ParseError struct {
	detail string
	err    error
}

func (e *ParseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("parse sierra-local JSON: %s: %v", e.detail, e.err)
	}
	return fmt.Sprintf("parse sierra-local JSON: %s", e.detail)
}

func (e *ParseError) Unwrap() error { return e.err }

// IsParseError reports whether err is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Parse decodes sierra-local JSON bytes. A single analysis object is
// returned as a one-element slice.
func Parse(data []byte) ([]SequenceResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{detail: "empty document"}
	}

	if trimmed[0] == '[' {
		var seqs []SequenceResult
		if err := json.Unmarshal(trimmed, &seqs); err != nil {
			return nil, &ParseError{detail: "decode sequence array", err: err}
		}
		return seqs, nil
	}

	var seq SequenceResult
	if err := json.Unmarshal(trimmed, &seq); err != nil {
		return nil, &ParseError{detail: "decode sequence object", err: err}
	}
	return []SequenceResult{seq}, nil
}

// Flatten walks sequences in order and emits one reference record per
// (sequence, gene, drug) triple, deriving the label from the score under
// the given policy. Output order follows input order at every level.
func Flatten(seqs []SequenceResult, policy resist.Policy) []resist.ReferenceRecord {
	var rows []resist.ReferenceRecord

	for idx, seq := range seqs {
		patientID := sequenceID(seq.InputSequence.Header, idx)

		version := seq.AlgorithmVersion
		if version == "" {
			version = "unknown"
		}

		for _, gene := range seq.DrugResistance {
			geneName := gene.Gene.Name
			if geneName == "" {
				geneName = "unknown"
			}

			for _, ds := range gene.DrugScores {
				drugName := ds.Drug.Name
				if drugName == "" {
					drugName = "unknown"
				}
				score := int(ds.Score)
				level := resist.ScoreToLevel(score)

				rows = append(rows, resist.ReferenceRecord{
					PatientID:    patientID,
					Gene:         geneName,
					Drug:         drugName,
					HIVDBLevel:   level,
					HIVDBScore:   score,
					WebsiteLabel: resist.LevelToLabel(level, policy),
					HIVDBVersion: version,
				})
			}
		}
	}

	return rows
}

// sequenceID derives a patient identifier from a FASTA header.
// Leading '>' characters are stripped; an absent or empty result falls
// back to seq_<idx> using the sequence's zero-based position.
func sequenceID(header string, idx int) string {
	id := strings.TrimLeft(header, ">")
	if id == "" {
		return fmt.Sprintf("seq_%d", idx)
	}
	return id
}
