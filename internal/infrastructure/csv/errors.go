package csvio

import (
	"errors"
	"fmt"
	"strings"
)

// Common CSV errors
var (
	// ErrEmptyFile is returned when the file has no content
	ErrEmptyFile = errors.New("csv file is empty")

	// ErrInvalidEncoding is returned when the file is neither UTF-8 nor cp932
	ErrInvalidEncoding = errors.New("file encoding is neither UTF-8 nor Shift_JIS")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("csv file missing header row")

	// ErrNoDataRows is returned when the file has a header but no data rows
	ErrNoDataRows = errors.New("csv file contains no data rows")

	// ErrFileTooLarge is returned when the file exceeds the configured size cap
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrNotCSV is returned when the file name does not end in .csv
	ErrNotCSV = errors.New("file must have a .csv extension")
)

// HeaderErrorKind classifies header validation failures
type HeaderErrorKind string

const (
	HeaderDuplicate  HeaderErrorKind = "duplicate"
	HeaderMissing    HeaderErrorKind = "missing"
	HeaderUnexpected HeaderErrorKind = "unexpected"
)

// HeaderError reports invalid header columns. Kind tells whether the named
// columns are duplicated, missing, or unknown.
type HeaderError struct {
	Kind    HeaderErrorKind
	Columns []string
}

// Error implements the error interface
func (e *HeaderError) Error() string {
	switch e.Kind {
	case HeaderDuplicate:
		return fmt.Sprintf("duplicate header columns: %s", strings.Join(e.Columns, ", "))
	case HeaderMissing:
		return fmt.Sprintf("missing header columns: %s", strings.Join(e.Columns, ", "))
	default:
		return fmt.Sprintf("unexpected header columns: %s", strings.Join(e.Columns, ", "))
	}
}

// RowError represents a validation error in a specific data row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// RowErrors collects row validation errors across a whole file. Any
// collected error rejects the entire batch.
type RowErrors struct {
	errors    []RowError
	maxErrors int
	total     int
}

// NewRowErrors creates a RowErrors collector keeping at most maxErrors entries
func NewRowErrors(maxErrors int) *RowErrors {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &RowErrors{maxErrors: maxErrors}
}

// Add records an error
func (ec *RowErrors) Add(row int, column, message string) {
	ec.AddWithValue(row, column, message, "")
}

// AddWithValue records an error together with the offending value
func (ec *RowErrors) AddWithValue(row int, column, message, value string) {
	ec.total++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, RowError{Row: row, Column: column, Message: message, Value: value})
	}
}

// Errors returns the collected errors
func (ec *RowErrors) Errors() []RowError {
	return ec.errors
}

// HasErrors returns true if any error was recorded
func (ec *RowErrors) HasErrors() bool {
	return ec.total > 0
}

// Total returns the total number of errors including dropped ones
func (ec *RowErrors) Total() int {
	return ec.total
}

// Truncated returns true when some errors were dropped by the limit
func (ec *RowErrors) Truncated() bool {
	return ec.total > ec.maxErrors
}

// Error implements the error interface
func (ec *RowErrors) Error() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) found", ec.total)
	if ec.Truncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.maxErrors)
	}
	sb.WriteString(":")
	for _, err := range ec.errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
