package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is a parsed data row keyed by canonical field name. Line is the
// 1-based physical line number, counting the header as line 1.
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the value of a field, empty when absent.
func (r *Row) Get(field string) string {
	return r.Data[field]
}

// IsEmpty reports whether every cell in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Reader parses a decoded CSV file against a HeaderSpec. Construction
// reads and validates the header row.
type Reader struct {
	reader *csv.Reader
	fields []string
	line   int
}

// NewReader decodes raw file bytes (UTF-8 with optional BOM, or cp932)
// and validates the header row against spec.
func NewReader(data []byte, spec HeaderSpec) (*Reader, error) {
	decoded, err := Decode(data)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(decoded))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fields, err := spec.MapHeaders(header)
	if err != nil {
		return nil, err
	}

	return &Reader{reader: cr, fields: fields, line: 1}, nil
}

// Fields returns the canonical field name for each column position.
func (r *Reader) Fields() []string {
	return r.fields
}

// Quoted cells may legally span lines; interior newlines are removed
// so the value reaches validation as a single line.
var newlineStripper = strings.NewReplacer("\r", "", "\n", "")

// ReadRow reads the next data row. Blank cells beyond the record length
// are filled with empty strings. Returns io.EOF at end of file.
func (r *Reader) ReadRow() (*Row, error) {
	record, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", r.line, err)
	}

	row := &Row{
		Line: r.line,
		Data: make(map[string]string, len(r.fields)),
	}
	for i, field := range r.fields {
		if field == "" {
			continue
		}
		if i < len(record) {
			row.Data[field] = strings.TrimSpace(newlineStripper.Replace(record[i]))
		} else {
			row.Data[field] = ""
		}
	}
	return row, nil
}

// ReadAll reads all remaining data rows, skipping fully blank rows.
// It fails with ErrNoDataRows when the file holds nothing but the header.
func (r *Reader) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}
