package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sireval/internal/resist"
)

// WriteReferenceCSV persists flattened reference records as a table the
// evaluation loader accepts back, in the flattener's column order.
func WriteReferenceCSV(path string, records []resist.ReferenceRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"patient_id", "gene", "drug", "hivdb_level", "hivdb_score", "website_label", "hivdb_version"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, r := range records {
		row := []string{
			r.PatientID, r.Gene, r.Drug,
			strconv.Itoa(r.HIVDBLevel), strconv.Itoa(r.HIVDBScore),
			string(r.WebsiteLabel), r.HIVDBVersion,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
