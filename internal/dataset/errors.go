package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from a tabular source.
// All missing columns are reported at once, not just the first.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// LabelDomainError reports label values outside the {S, I, R} domain.
// Invalid holds every distinct offending value, sorted.
type LabelDomainError struct {
	Path    string
	Column  string
	Invalid []string
}

func (e *LabelDomainError) Error() string {
	return fmt.Sprintf("%s: column %s has labels outside {S, I, R}: %s",
		e.Path, e.Column, strings.Join(e.Invalid, ", "))
}

// FormatError reports an unrecognized source format.
type FormatError struct {
	Path string
	Ext  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: unsupported source format %q (want .csv or .json)", e.Path, e.Ext)
}

// IsSchemaError reports whether err is a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsLabelDomainError reports whether err is a LabelDomainError.
func IsLabelDomainError(err error) bool {
	var le *LabelDomainError
	return errors.As(err, &le)
}

// IsFormatError reports whether err is a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
