package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sireval/internal/resist"
	"sireval/internal/sierra"
)

// LoadReference reads HIVdb reference calls, dispatching on the source
// extension: .csv is a pre-flattened table, .json is raw sierra-local
// output passed through the flattener under the given policy.
func LoadReference(path string, policy resist.Policy) ([]resist.ReferenceRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadReferenceTable(path, policy)
	case ".json":
		return loadReferenceSierra(path, policy)
	default:
		return nil, &FormatError{Path: path, Ext: ext}
	}
}

func loadReferenceSierra(path string, policy resist.Policy) ([]resist.ReferenceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	seqs, err := sierra.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	records := sierra.Flatten(seqs, policy)
	if err := checkLabelDomain(path, records); err != nil {
		return nil, err
	}
	return records, nil
}

func loadReferenceTable(path string, policy resist.Policy) ([]resist.ReferenceRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	if missing := t.missing("patient_id", "drug", "website_label"); len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	hasLevel := t.has("hivdb_level")

	records := make([]resist.ReferenceRecord, 0, t.len())
	for row := 0; row < t.len(); row++ {
		rec := resist.ReferenceRecord{
			PatientID:    t.cell(row, "patient_id"),
			Gene:         t.cell(row, "gene"),
			Drug:         t.cell(row, "drug"),
			HIVDBLevel:   atoiOrZero(t.cell(row, "hivdb_level")),
			HIVDBScore:   atoiOrZero(t.cell(row, "hivdb_score")),
			WebsiteLabel: resist.Label(t.cell(row, "website_label")),
			HIVDBVersion: t.cell(row, "hivdb_version"),
		}
		// Backfill only rows whose label is absent; present labels are
		// taken as-is even when they disagree with the level.
		if rec.WebsiteLabel == "" && hasLevel {
			rec.WebsiteLabel = resist.LevelToLabel(rec.HIVDBLevel, policy)
		}
		records = append(records, rec)
	}

	if err := checkLabelDomain(path, records); err != nil {
		return nil, err
	}
	return records, nil
}

func checkLabelDomain(path string, records []resist.ReferenceRecord) error {
	invalid := map[string]bool{}
	for _, r := range records {
		if !resist.Valid(r.WebsiteLabel) {
			invalid[string(r.WebsiteLabel)] = true
		}
	}
	if len(invalid) > 0 {
		return &LabelDomainError{Path: path, Column: "website_label", Invalid: sortedKeys(invalid)}
	}
	return nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
